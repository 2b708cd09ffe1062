package imagehost

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/images"
)

// Strategy is one way of getting a picture onto the marketplace.
type Strategy string

const (
	// StrategyExternalURL lets the marketplace fetch the picture itself.
	StrategyExternalURL Strategy = "external_url"
	// StrategyAttachment uploads the picture bytes in the request.
	StrategyAttachment Strategy = "attachment"
)

// Probe is what fetching a source URL returned.
type Probe struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsImage reports whether the server labelled the body as an image.
func (p Probe) IsImage() bool {
	return strings.HasPrefix(p.mediaType(), "image/")
}

func (p Probe) mediaType() string {
	mt, _, err := mime.ParseMediaType(p.ContentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(p.ContentType, ";")[0]))
	}
	return mt
}

// Plan decides how to host a picture from what its URL serves.
//
// A response labelled image/* is publicly fetchable, so the marketplace is
// asked to pull it, with the bytes already in hand as the attachment
// fallback. Any other content type means the marketplace would not see an
// image at that URL and only the attachment path is tried. An HTML body is
// an error page or login wall and cannot be hosted at all.
func Plan(p Probe) ([]Strategy, error) {
	if p.StatusCode < 200 || p.StatusCode >= 400 {
		return nil, fmt.Errorf("source returned status %d", p.StatusCode)
	}
	if len(p.Body) == 0 {
		return nil, fmt.Errorf("source returned 0 bytes")
	}
	if p.IsImage() {
		return []Strategy{StrategyExternalURL, StrategyAttachment}, nil
	}
	if images.LooksLikeHTML(p.Body) {
		return nil, fmt.Errorf("source returned HTML instead of an image (content-type=%s); check sharing permissions", p.mediaType())
	}
	return []Strategy{StrategyAttachment}, nil
}

// fetchProbe downloads url, refusing bodies over images.MaxUploadBytes.
func fetchProbe(ctx context.Context, client *http.Client, url string) (Probe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Probe{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Probe{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, images.MaxUploadBytes+1))
	if err != nil {
		return Probe{}, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if len(body) > images.MaxUploadBytes {
		return Probe{}, fmt.Errorf("image at %s exceeds %d bytes", url, images.MaxUploadBytes)
	}
	return Probe{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
