package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/recordroom/vinyl-lister/internal/eval/metadata"
	"github.com/recordroom/vinyl-lister/internal/eval/results"
)

func executeReport(w io.Writer, resultsPath, format string) error {
	spec, err := results.LoadFromYAML(resultsPath)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		printTextReport(w, spec)
		return nil
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(spec)
	case "csv":
		return printCSVReport(w, spec)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(w io.Writer, spec *results.EvalSpec) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Record Identification Evaluation Report")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Provider: %s\n", spec.Config.Provider)
	fmt.Fprintf(w, "Model:    %s\n", spec.Config.Model)
	fmt.Fprintf(w, "Dataset:  %s\n", spec.Config.DatasetPath)

	printSummary(w, spec.Summary)

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, "========================================")
	for i, r := range spec.Results {
		fmt.Fprintf(w, "\n[%d] %s (%s)\n", i+1, r.Label, r.FolderID)
		if r.Error != "" {
			fmt.Fprintf(w, "  ❌ Error: %s\n", r.Error)
			continue
		}
		fmt.Fprintf(w, "  Overall Score: %.2f%%\n", r.OverallScore*100)
		if r.Comparison == nil {
			continue
		}
		for _, field := range metadata.Fields {
			fc, ok := r.Comparison.Fields[field]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "    %s: %.2f%% (%s)\n", field, fc.Score*100, fc.Match)
			if fc.Score < 0.8 {
				fmt.Fprintf(w, "      Expected:  %s\n", truncate(fc.Expected, 80))
				fmt.Fprintf(w, "      Got:       %s\n", truncate(fc.Actual, 80))
			}
		}
	}
}

func printCSVReport(w io.Writer, spec *results.EvalSpec) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"FolderID", "Label", "Overall Score", "Error"}
	for _, field := range metadata.Fields {
		header = append(header, "Field_"+field)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range spec.Results {
		row := []string{r.FolderID, r.Label, fmt.Sprintf("%.4f", r.OverallScore), r.Error}
		for _, field := range metadata.Fields {
			score := ""
			if r.Comparison != nil {
				if fc, ok := r.Comparison.Fields[field]; ok {
					score = fmt.Sprintf("%.4f", fc.Score)
				}
			}
			row = append(row, score)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
