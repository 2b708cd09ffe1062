package imagehost

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/recordroom/vinyl-lister/internal/config"
	"github.com/recordroom/vinyl-lister/internal/images"
	"github.com/recordroom/vinyl-lister/internal/models"
)

// PutObjectAPI is the slice of the S3 client S3 needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 hosts pictures in a public-read bucket. Objects are keyed by content
// hash, so hosting the same photo twice yields the same URL.
type S3 struct {
	client        PutObjectAPI
	bucket        string
	region        string
	publicBaseURL string
	httpClient    *http.Client
}

func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("IMAGE_HOST=s3 requires S3_BUCKET")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = awsCfg.Region
	}
	return NewS3WithClient(s3.NewFromConfig(awsCfg), cfg), nil
}

func NewS3WithClient(client PutObjectAPI, cfg config.S3Config) *S3 {
	return &S3{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: cfg.PublicBaseURL,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (h *S3) HostFromURL(ctx context.Context, url string, opts Options) (string, error) {
	probe, err := fetchProbe(ctx, h.httpClient, DirectLink(url))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrHostingFailed, err)
	}
	if _, err := Plan(probe); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrHostingFailed, err)
	}
	return h.HostFromBytes(ctx, probe.Body, opts)
}

func (h *S3) HostFromBytes(ctx context.Context, data []byte, opts Options) (string, error) {
	if len(data) > images.MaxUploadBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", models.ErrHostingFailed, images.MaxUploadBytes)
	}
	jpeg, err := images.NormalizeJPEG(data, 0)
	if err != nil {
		return "", fmt.Errorf("%w: unreadable image: %v", models.ErrHostingFailed, err)
	}

	sum := sha256.Sum256(jpeg)
	key := "pictures/" + hex.EncodeToString(sum[:16]) + ".jpg"

	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(h.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(jpeg),
		ContentType:  aws.String("image/jpeg"),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
		Metadata:     map[string]string{"picture-name": safeFileName(pictureName(opts))},
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload to S3: %v", models.ErrHostingFailed, err)
	}

	slog.Debug("Uploaded picture to S3", "bucket", h.bucket, "key", key)
	return h.objectURL(key), nil
}

func (h *S3) objectURL(key string) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.bucket, h.region, key)
}
