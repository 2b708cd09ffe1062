package metadata

import (
	"regexp"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/eval/dataset"
	"github.com/recordroom/vinyl-lister/internal/models"
)

// Fields in the order they are reported.
var Fields = []string{"title", "artist", "catalog_number", "released", "discogs_url"}

// Compare scores an analysis against the labeled item. Fields without a
// reference value are left out of the overall score.
func Compare(reference dataset.Item, got *models.AnalysisResult) *Comparison {
	if got == nil {
		got = &models.AnalysisResult{}
	}
	pairs := map[string][2]string{
		"title":          {reference.ExpectedTitle, got.Title},
		"artist":         {reference.ExpectedArtist, got.Artist},
		"catalog_number": {reference.ExpectedCatalogNumber, got.CatalogNumber},
		"released":       {reference.ExpectedReleased, string(got.Released)},
		"discogs_url":    {reference.ExpectedDiscogsURL, got.DiscogsURL},
	}

	comparison := &Comparison{Fields: make(map[string]FieldComparison)}
	totalScore := 0.0
	scored := 0
	for _, name := range Fields {
		p := pairs[name]
		if normalizeText(p[0]) == "" {
			continue
		}
		fc := compareField(name, p[0], p[1])
		comparison.Fields[name] = fc
		totalScore += fc.Score
		comparison.LevenshteinTotal += fc.Distance
		scored++

		switch {
		case fc.Score > 0.8:
			comparison.FieldsMatched++
		case fc.Match == "missing":
			comparison.FieldsMissing++
		default:
			comparison.FieldsIncorrect++
		}
	}

	if scored > 0 {
		comparison.OverallScore = totalScore / float64(scored)
	}
	return comparison
}

// compareField compares a single field using Levenshtein distance
func compareField(fieldName, expected, actual string) FieldComparison {
	comp := FieldComparison{
		FieldName: fieldName,
		Expected:  expected,
		Actual:    actual,
	}

	expNorm := normalizeText(expected)
	actNorm := normalizeText(actual)

	if actNorm == "" {
		comp.Distance = len([]rune(expNorm))
		comp.Match = "missing"
		return comp
	}

	if expNorm == actNorm {
		comp.Score = 1.0
		comp.Match = "exact"
		return comp
	}

	distance := levenshteinDistance(expNorm, actNorm)
	comp.Distance = distance

	maxLen := max(len([]rune(expNorm)), len([]rune(actNorm)))
	similarity := 1.0 - (float64(distance) / float64(maxLen))
	comp.Score = similarity

	switch {
	case similarity > 0.9:
		comp.Match = "fuzzy_high"
	case similarity > 0.7:
		comp.Match = "fuzzy_medium"
	case similarity > 0.5:
		comp.Match = "fuzzy_low"
	default:
		comp.Match = "no_match"
	}
	return comp
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// normalizeText lowercases, strips punctuation and collapses whitespace.
// A leading "the " is dropped since catalogs disagree on it for band names.
func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = punctuation.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimPrefix(text, "the ")
}

// levenshteinDistance counts rune edits between two strings
func levenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
