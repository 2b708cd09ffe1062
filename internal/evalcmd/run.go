package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/recordroom/vinyl-lister/internal/batch"
	"github.com/recordroom/vinyl-lister/internal/cataloging"
	"github.com/recordroom/vinyl-lister/internal/config"
	"github.com/recordroom/vinyl-lister/internal/drive"
	"github.com/recordroom/vinyl-lister/internal/eval/dataset"
	"github.com/recordroom/vinyl-lister/internal/eval/metadata"
	"github.com/recordroom/vinyl-lister/internal/eval/results"
	"github.com/recordroom/vinyl-lister/internal/models"
	"github.com/recordroom/vinyl-lister/internal/storage"
)

type runOptions struct {
	datasetPath string
	sample      int
	provider    string
	model       string
	outputDir   string
	concurrency int
}

// FolderAnalyzer identifies the record whose photos are in a folder.
type FolderAnalyzer interface {
	AnalyzeFolder(ctx context.Context, folderID, excludeHint string) (*models.AnalysisResult, []models.FileEntry, error)
}

func executeRun(ctx context.Context, opts runOptions) error {
	slog.Info("Starting evaluation run", "dataset", opts.datasetPath, "provider", opts.provider, "model", opts.model)

	items, err := dataset.NewLoader(opts.datasetPath).LoadSample(opts.sample)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "items", len(items))

	cfg := config.FromEnv()
	files, err := drive.New(ctx, cfg.CredentialsFile, cfg.ProcessedMarker)
	if err != nil {
		return err
	}
	svc := cataloging.NewService(opts.provider, opts.model)
	proc := batch.New(storage.New(), files, nil, svc, nil, batch.Options{})

	evalResults := evaluate(ctx, proc, items, opts.concurrency)
	spec := &results.EvalSpec{
		Config: results.EvalConfig{
			Provider:    svc.Provider(),
			Model:       svc.Model(),
			Temperature: cataloging.Temperature,
			DatasetPath: opts.datasetPath,
			SampleSize:  opts.sample,
		},
		Summary: summarize(evalResults),
		Results: evalResults,
	}

	path, err := results.SaveToYAML(opts.outputDir, spec)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	printSummary(os.Stdout, spec.Summary)
	fmt.Printf("\nResults saved to: %s\n", path)
	fmt.Printf("\nGenerate a detailed report with:\n")
	fmt.Printf("  vinyl-lister eval report --results %s\n", path)
	return nil
}

// evaluate analyzes every item, at most concurrency at a time, and returns
// results in dataset order. A failed item is recorded, not returned.
func evaluate(ctx context.Context, analyzer FolderAnalyzer, items []dataset.Item, concurrency int) []results.EvalResult {
	if concurrency < 1 {
		concurrency = 1
	}
	out := make([]results.EvalResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range items {
		g.Go(func() error {
			slog.Info("Processing item", "folder_id", item.FolderID, "progress", fmt.Sprintf("%d/%d", i+1, len(items)))
			out[i] = evaluateItem(gctx, analyzer, item)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func evaluateItem(ctx context.Context, analyzer FolderAnalyzer, item dataset.Item) results.EvalResult {
	result := results.EvalResult{FolderID: item.FolderID, Label: item.Label()}

	start := time.Now()
	ai, _, err := analyzer.AnalyzeFolder(ctx, item.FolderID, "")
	result.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		slog.Warn("Analysis failed", "folder_id", item.FolderID, "error", err)
		result.Error = err.Error()
		return result
	}

	result.Title = ai.Title
	result.Artist = ai.Artist
	result.DiscogsURL = ai.DiscogsURL
	result.Comparison = metadata.Compare(item, ai)
	result.OverallScore = result.Comparison.OverallScore
	return result
}

func summarize(rs []results.EvalResult) results.Summary {
	summary := results.Summary{
		Total:           len(rs),
		FieldAccuracies: make(map[string]float64),
	}

	var scores []float64
	fieldScores := make(map[string][]float64)
	for _, r := range rs {
		if r.Error != "" {
			summary.Failed++
			continue
		}
		summary.Successful++
		scores = append(scores, r.OverallScore)
		if r.Comparison != nil {
			for field, fc := range r.Comparison.Fields {
				fieldScores[field] = append(fieldScores[field], fc.Score)
			}
		}
	}
	if len(scores) == 0 {
		return summary
	}

	summary.AverageScore = mean(scores)
	sort.Float64s(scores)
	mid := len(scores) / 2
	if len(scores)%2 == 0 {
		summary.MedianScore = (scores[mid-1] + scores[mid]) / 2
	} else {
		summary.MedianScore = scores[mid]
	}
	for field, s := range fieldScores {
		summary.FieldAccuracies[field] = mean(s)
	}
	return summary
}

func mean(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}

func printSummary(w io.Writer, summary results.Summary) {
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Evaluation Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Total Folders:      %d\n", summary.Total)
	fmt.Fprintf(w, "Successful Evals:   %d\n", summary.Successful)
	fmt.Fprintf(w, "Failed Evals:       %d\n", summary.Failed)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Average Score:      %.2f%%\n", summary.AverageScore*100)
	fmt.Fprintf(w, "Median Score:       %.2f%%\n", summary.MedianScore*100)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Field Accuracies:")
	for _, field := range metadata.Fields {
		if acc, ok := summary.FieldAccuracies[field]; ok {
			fmt.Fprintf(w, "  %s: %.2f%%\n", field, acc*100)
		}
	}
	fmt.Fprintln(w, "========================================")
}
