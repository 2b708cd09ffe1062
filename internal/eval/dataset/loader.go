package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader handles loading of labeled folder datasets
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads every item from a dataset file (JSONL or Parquet)
func (l *Loader) Load() ([]Item, error) {
	return l.LoadSample(-1)
}

// LoadSample loads at most limit items. A negative limit loads everything.
// Items without a folder id are skipped.
func (l *Loader) LoadSample(limit int) ([]Item, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	var (
		items []Item
		err   error
	)
	switch ext {
	case ".parquet":
		items, err = l.loadParquet(limit)
	case ".jsonl", ".json":
		items, err = l.loadJSONL(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("Dataset loaded", "path", l.datasetPath, "items", len(items))
	return items, nil
}

func (l *Loader) loadJSONL(limit int) ([]Item, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var items []Item
	scanner := bufio.NewScanner(file)

	// Increase buffer size for long JSON lines
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)

	lineNum := 0
	for scanner.Scan() && (limit < 0 || len(items) < limit) {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		if item.FolderID == "" {
			slog.Warn("Skipping dataset line without folder_id", "line", lineNum)
			continue
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}
	return items, nil
}

func (l *Loader) loadParquet(limit int) ([]Item, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Item](pf)
	defer reader.Close()

	var items []Item
	rows := make([]Item, 128)
	for limit < 0 || len(items) < limit {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			if limit >= 0 && len(items) >= limit {
				break
			}
			if row.FolderID == "" {
				continue
			}
			items = append(items, row)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return items, nil
}
