package pattern

import (
	"fmt"
	"strings"

	"github.com/coolbeans/becas/pkg/types"
)

// Detector is the validity classifier: it accepts a text as a scholarship
// resolution when enough distinct signature headers occur in it.
type Detector struct {
	catalog *Catalog
}

// NewDetector creates a detector for a compiled catalog.
func NewDetector(catalog *Catalog) *Detector {
	return &Detector{catalog: catalog}
}

// SignatureMatch reports whether one signature occurs and where.
type SignatureMatch struct {
	Name       string
	Pattern    string
	MatchCount int
	Positions  []int
}

// Classify counts the distinct signatures found anywhere in text.
func (d *Detector) Classify(text string) types.Verdict {
	verdict := types.Verdict{Required: d.catalog.Detection.MinSignatures}
	for _, ind := range d.catalog.Detection.Signatures {
		if ind.compiled != nil && ind.compiled.MatchString(text) {
			verdict.Matched = append(verdict.Matched, ind.Name)
		}
	}
	verdict.Count = len(verdict.Matched)
	verdict.Valid = verdict.Count >= verdict.Required
	return verdict
}

// IsScholarshipDocument reports whether text is accepted by the classifier.
func (d *Detector) IsScholarshipDocument(text string) bool {
	return d.Classify(text).Valid
}

// Signatures evaluates every signature, including those that did not match.
func (d *Detector) Signatures(text string) []SignatureMatch {
	matches := make([]SignatureMatch, 0, len(d.catalog.Detection.Signatures))
	for _, ind := range d.catalog.Detection.Signatures {
		m := SignatureMatch{Name: ind.Name, Pattern: ind.Pattern}
		if ind.compiled != nil {
			for _, loc := range ind.compiled.FindAllStringIndex(text, -1) {
				m.Positions = append(m.Positions, loc[0])
			}
			m.MatchCount = len(m.Positions)
		}
		matches = append(matches, m)
	}
	return matches
}

// Explain returns a human-readable account of the classification.
func (d *Detector) Explain(text string) string {
	verdict := d.Classify(text)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Catalog: %s (%s v%s)\n", d.catalog.Name, d.catalog.CatalogID, d.catalog.Version))
	sb.WriteString(strings.Repeat("-", 50) + "\n\n")
	sb.WriteString("Signatures:\n")

	for i, m := range d.Signatures(text) {
		status := "✗"
		if m.MatchCount > 0 {
			status = "✓"
		}
		sb.WriteString(fmt.Sprintf("  %s [%d] matches=%d %s\n", status, i, m.MatchCount, m.Name))
	}

	sb.WriteString("\nSummary:\n")
	sb.WriteString(fmt.Sprintf("  Matched: %d/%d (need %d)\n", verdict.Count, len(d.catalog.Detection.Signatures), verdict.Required))
	if verdict.Valid {
		sb.WriteString("\n  → Text IS a scholarship resolution\n")
	} else {
		sb.WriteString("\n  → Too few signatures - text is NOT a scholarship resolution\n")
	}

	return sb.String()
}

// IsScholarshipDocument classifies text with the embedded default catalog.
func IsScholarshipDocument(text string) bool {
	return NewDetector(Default()).IsScholarshipDocument(text)
}
