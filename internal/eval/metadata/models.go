package metadata

// Comparison is the field-by-field result for one analyzed folder
type Comparison struct {
	Fields           map[string]FieldComparison `yaml:"fields"`
	OverallScore     float64                    `yaml:"overallscore"`
	FieldsMatched    int                        `yaml:"fieldsmatched"`
	FieldsMissing    int                        `yaml:"fieldsmissing"`
	FieldsIncorrect  int                        `yaml:"fieldsincorrect"`
	LevenshteinTotal int                        `yaml:"levenshteintotal"`
}

// FieldComparison represents comparison for a single field
type FieldComparison struct {
	FieldName string  `yaml:"field"`
	Expected  string  `yaml:"expected"`
	Actual    string  `yaml:"actual"`
	Score     float64 `yaml:"score"`    // 0.0 to 1.0
	Distance  int     `yaml:"distance"` // Levenshtein distance
	Match     string  `yaml:"match"`    // "exact", "fuzzy_high", "fuzzy_medium", "fuzzy_low", "no_match", "missing"
}
