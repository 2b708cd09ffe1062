package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/models"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Source reads categories and shipping options from an operator-maintained
// spreadsheet. The categories range holds (name, code) rows; the shipping
// range holds one option per row in its first column.
type Source struct {
	svc             *sheets.Service
	spreadsheetID   string
	categoriesRange string
	shippingRange   string
}

func New(ctx context.Context, credentialsFile, spreadsheetID, categoriesRange, shippingRange string) (*Source, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsReadonlyScope))

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, categoriesRange, shippingRange), nil
}

func NewWithService(svc *sheets.Service, spreadsheetID, categoriesRange, shippingRange string) *Source {
	return &Source{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		categoriesRange: categoriesRange,
		shippingRange:   shippingRange,
	}
}

func (s *Source) GetCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.read(ctx, s.categoriesRange)
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		name := cell(row, 0)
		code := cell(row, 1)
		if name == "" && code == "" {
			continue
		}
		categories = append(categories, models.Category{Name: name, Code: code})
	}
	return categories, nil
}

func (s *Source) GetShippingOptions(ctx context.Context) ([]string, error) {
	rows, err := s.read(ctx, s.shippingRange)
	if err != nil {
		return nil, err
	}

	options := make([]string, 0, len(rows))
	for _, row := range rows {
		if v := cell(row, 0); v != "" {
			options = append(options, v)
		}
	}
	return options, nil
}

func (s *Source) read(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rng, err)
	}
	return resp.Values, nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}
