package providers

import (
	"context"
	"net/http"
)

// Image is one picture attached to a vision request
type Image struct {
	MIMEType string
	Data     []byte
}

// NewImage wraps raw bytes, sniffing the MIME type
func NewImage(data []byte) Image {
	return Image{MIMEType: http.DetectContentType(data), Data: data}
}

// Config represents the configuration for a vision request
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Images      []Image
	// JSONOutput asks the provider to constrain the answer to a JSON object
	JSONOutput bool
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
