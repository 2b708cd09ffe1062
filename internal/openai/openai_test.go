package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/recordroom/vinyl-lister/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_SendsImagesAsDataURLs(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"Title\":\"x\"}"}}]}`))
	}))
	defer srv.Close()

	o := &OpenAI{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()}
	text, err := o.ExtractText(context.Background(), providers.Config{
		Model:      "gpt-4o-mini",
		Prompt:     "identify",
		Images:     []providers.Image{{MIMEType: "image/jpeg", Data: []byte{1, 2, 3}}},
		JSONOutput: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"Title":"x"}`, text)

	assert.Equal(t, map[string]interface{}{"type": "json_object"}, got["response_format"])
	messages := got["messages"].([]interface{})
	content := messages[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, content, 2)
	imageURL := content[1].(map[string]interface{})["image_url"].(map[string]interface{})["url"].(string)
	assert.True(t, strings.HasPrefix(imageURL, "data:image/jpeg;base64,AQID"))
}

func TestExtractText_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-200", http.StatusTooManyRequests, `{"error":"slow down"}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"bad json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			o := &OpenAI{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()}
			_, err := o.ExtractText(context.Background(), providers.Config{Model: "m"})
			assert.Error(t, err)
		})
	}

	_, err := (&OpenAI{}).ExtractText(context.Background(), providers.Config{})
	assert.Error(t, err)
}
