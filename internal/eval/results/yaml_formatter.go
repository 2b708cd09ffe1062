package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/recordroom/vinyl-lister/internal/eval/metadata"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Timestamp   string  `yaml:"timestamp"`
}

// EvalResult represents a single evaluated folder
type EvalResult struct {
	FolderID     string               `yaml:"folderid"`
	Label        string               `yaml:"label"`
	Error        string               `yaml:"error,omitempty"`
	DurationMS   int64                `yaml:"durationms"`
	Title        string               `yaml:"title,omitempty"`
	Artist       string               `yaml:"artist,omitempty"`
	DiscogsURL   string               `yaml:"discogsurl,omitempty"`
	OverallScore float64              `yaml:"overallscore"`
	Comparison   *metadata.Comparison `yaml:"comparison,omitempty"`
}

// Summary aggregates a run
type Summary struct {
	Total           int                `yaml:"total"`
	Successful      int                `yaml:"successful"`
	Failed          int                `yaml:"failed"`
	AverageScore    float64            `yaml:"averagescore"`
	MedianScore     float64            `yaml:"medianscore"`
	FieldAccuracies map[string]float64 `yaml:"fieldaccuracies"`
}

// EvalSpec represents the complete evaluation file
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary Summary      `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML writes spec into dir as <model>-<timestamp>.yaml and returns
// the path written.
func SaveToYAML(dir string, spec *EvalSpec) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}
	if spec.Config.Timestamp == "" {
		spec.Config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	data, err := yaml.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", sanitize(spec.Config.Model), spec.Config.Timestamp))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}

// LoadFromYAML reads a file written by SaveToYAML.
func LoadFromYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse results %s: %w", path, err)
	}
	return &spec, nil
}

// sanitize keeps model names like "mistral-small3.2:24b" usable as file names.
func sanitize(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', ' ':
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "model"
	}
	return string(out)
}
