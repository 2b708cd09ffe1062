package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recordroom/vinyl-lister/internal/providers"
)

func TestExtractText(t *testing.T) {
	var got struct {
		Model  string   `json:"model"`
		Images []string `json:"images"`
		Format string   `json:"format"`
		Stream bool     `json:"stream"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected /api/generate, got %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"response":"{\"Title\":\"t\"}"}`))
	}))
	defer srv.Close()

	o := &Ollama{BaseURL: srv.URL, HTTPClient: srv.Client()}
	text, err := o.ExtractText(context.Background(), providers.Config{
		Model:      "llava",
		Prompt:     "p",
		Images:     []providers.Image{{Data: []byte("abc")}},
		JSONOutput: true,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != `{"Title":"t"}` {
		t.Errorf("Expected response text, got %q", text)
	}
	if len(got.Images) != 1 || got.Images[0] != "YWJj" {
		t.Errorf("Expected one base64 image, got %v", got.Images)
	}
	if got.Format != "json" || got.Stream {
		t.Errorf("Expected format=json stream=false, got %q %v", got.Format, got.Stream)
	}
}

func TestExtractText_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := &Ollama{BaseURL: srv.URL, HTTPClient: srv.Client()}
	if _, err := o.ExtractText(context.Background(), providers.Config{Model: "x"}); err == nil {
		t.Error("Expected error for non-200 response")
	}
}
