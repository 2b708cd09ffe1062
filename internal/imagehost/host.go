package imagehost

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/recordroom/vinyl-lister/internal/config"
	"github.com/recordroom/vinyl-lister/internal/models"
)

// DefaultPictureName is used when nothing better is known about the record.
const DefaultPictureName = "Record_Image"

const maxPictureName = 60

// Options describe the picture being hosted.
type Options struct {
	PictureName string
}

// Host turns an image into a durable URL a marketplace listing can use.
type Host interface {
	HostFromBytes(ctx context.Context, data []byte, opts Options) (string, error)
	HostFromURL(ctx context.Context, url string, opts Options) (string, error)
}

// FromConfig builds the host selected by IMAGE_HOST. "none" returns a nil
// Host; callers then publish the image proxy URL as-is.
func FromConfig(ctx context.Context, cfg *config.Config) (Host, error) {
	switch cfg.ImageHost {
	case "", "none":
		return nil, nil
	case "ebay":
		if cfg.EBay.Token == "" {
			return nil, fmt.Errorf("IMAGE_HOST=ebay requires EBAY_USER_TOKEN")
		}
		return NewEBay(cfg.EBay), nil
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported IMAGE_HOST: %s", cfg.ImageHost)
	}
}

// PictureName picks a human-readable picture name for the hosted copy.
func PictureName(ai *models.AnalysisResult, sku string) string {
	name := ""
	if ai != nil {
		switch {
		case strings.TrimSpace(ai.Title) != "":
			name = ai.Title
		case strings.TrimSpace(ai.Artist) != "":
			name = ai.Artist
		case strings.TrimSpace(ai.CatalogNumber) != "":
			name = ai.CatalogNumber
		}
	}
	if strings.TrimSpace(name) == "" {
		name = sku
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultPictureName
	}
	return truncate(strings.TrimSpace(name), maxPictureName)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func pictureName(opts Options) string {
	if opts.PictureName == "" {
		return DefaultPictureName
	}
	return truncate(opts.PictureName, maxPictureName)
}
