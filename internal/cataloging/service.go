package cataloging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/gemini"
	"github.com/recordroom/vinyl-lister/internal/jsonutil"
	"github.com/recordroom/vinyl-lister/internal/models"
	"github.com/recordroom/vinyl-lister/internal/ollama"
	"github.com/recordroom/vinyl-lister/internal/openai"
	"github.com/recordroom/vinyl-lister/internal/providers"
)

// Temperature is low so repeated runs over the same photos agree.
const Temperature = 0.1

// Service identifies a vinyl release from photos by asking a vision model.
type Service struct {
	providers   map[string]providers.Provider
	provider    string
	model       string
	temperature float64
}

// NewService wires the built-in providers. Empty provider or model fall back
// to ANALYZER_PROVIDER and the provider's default model.
func NewService(provider, model string) *Service {
	return NewServiceWithProviders(provider, model, map[string]providers.Provider{
		"gemini": gemini.New(),
		"openai": openai.New(),
		"ollama": ollama.New(),
	})
}

func NewServiceWithProviders(provider, model string, ps map[string]providers.Provider) *Service {
	if provider == "" {
		provider = os.Getenv("ANALYZER_PROVIDER")
		if provider == "" {
			provider = "openai"
		}
	}
	if model == "" {
		model = getDefaultModel(provider)
	}
	return &Service{
		providers:   ps,
		provider:    provider,
		model:       model,
		temperature: Temperature,
	}
}

func (s *Service) Provider() string { return s.provider }
func (s *Service) Model() string    { return s.model }

func getDefaultModel(provider string) string {
	switch provider {
	case "openai":
		return envOr("OPENAI_MODEL", "gpt-4o-mini")
	case "gemini":
		return envOr("GEMINI_MODEL", "gemini-2.0-flash")
	case "ollama":
		return envOr("OLLAMA_MODEL", "mistral-small3.2:24b")
	default:
		return ""
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Analyze sends the images to the configured provider and returns the
// structured identification. excludeHint, when set, is an identification
// URL from a rejected earlier answer. All failures wrap models.ErrAnalysisFailed.
func (s *Service) Analyze(ctx context.Context, images [][]byte, excludeHint string) (*models.AnalysisResult, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no images supplied", models.ErrAnalysisFailed)
	}

	p, ok := s.providers[s.provider]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported provider: %s", models.ErrAnalysisFailed, s.provider)
	}

	cfg := providers.Config{
		Model:       s.model,
		Temperature: s.temperature,
		Prompt:      BuildPrompt(excludeHint),
		JSONOutput:  true,
	}
	for _, img := range images {
		cfg.Images = append(cfg.Images, providers.NewImage(img))
	}

	raw, err := p.ExtractText(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrAnalysisFailed, s.provider, err)
	}

	result, err := ParseAnalysis(raw)
	if err != nil {
		return nil, err
	}
	slog.Info("Analyzed record", "provider", s.provider, "model", s.model, "title", result.Title, "discogs_url", result.DiscogsURL)
	return result, nil
}

// ParseAnalysis decodes a model answer and checks the fields a listing
// cannot do without.
func ParseAnalysis(raw string) (*models.AnalysisResult, error) {
	result, err := jsonutil.ParseObject[models.AnalysisResult](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAnalysisFailed, err)
	}

	result.Title = strings.TrimSpace(result.Title)
	result.Artist = strings.TrimSpace(result.Artist)
	var missing []string
	if result.Title == "" {
		missing = append(missing, "Title")
	}
	if result.Artist == "" {
		missing = append(missing, "Artist")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: response missing %s", models.ErrAnalysisFailed, strings.Join(missing, ", "))
	}
	return &result, nil
}
