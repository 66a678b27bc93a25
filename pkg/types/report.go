package types

import "time"

// Report is the cross-document view over a batch of records.
type Report struct {
	GeneratedAt  time.Time    `json:"generated_at"`
	Total        int          `json:"total"`
	ValidCount   int          `json:"valid_count"`
	InvalidCount int          `json:"invalid_count"`
	Records      []Record     `json:"records"`
	Current      *Record      `json:"current,omitempty"`
	Comparisons  []Comparison `json:"comparisons,omitempty"`
}

// Comparison is the chronological series of one tracked field.
type Comparison struct {
	Key    string            `json:"key"`
	Label  string            `json:"label"`
	Points []ComparisonPoint `json:"points"`
}

// ComparisonPoint is the value of a tracked field in one record. Delta is
// the signed difference to the previous point.
type ComparisonPoint struct {
	Year     string `json:"year"`
	FileName string `json:"file_name"`
	Value    string `json:"value"`
	Delta    string `json:"delta,omitempty"`
}
