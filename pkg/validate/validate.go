// Package validate checks emitted records against the record JSON schema and
// reports fields the extractors could not fill.
package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/coolbeans/becas/pkg/types"
)

//go:embed schema.json
var recordSchema []byte

const schemaURL = "record.schema.json"

// trackedFieldCount is the number of extracted fields MissingFields inspects.
const trackedFieldCount = 8

// Status is the outcome of validating one record.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Issue is a single schema violation or completeness finding.
type Issue struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
}

// Result is the validation outcome for one record.
type Result struct {
	FileName     string  `json:"file_name"`
	Status       Status  `json:"status"`
	Completeness float64 `json:"completeness"`
	Issues       []Issue `json:"issues,omitempty"`
}

// Validator holds the compiled record schema. It is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// New compiles the embedded record schema.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(recordSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Schema returns the raw record schema document.
func Schema() []byte {
	return append([]byte(nil), recordSchema...)
}

// ValidateJSON validates one encoded record against the schema.
func (v *Validator) ValidateJSON(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}

// Check validates a record and reports its completeness. Schema violations
// fail the record; missing fields of a valid record only warn.
func (v *Validator) Check(rec types.Record) *Result {
	result := &Result{FileName: rec.FileName, Status: StatusPass}

	data, err := json.Marshal(rec)
	if err != nil {
		result.Status = StatusFail
		result.Issues = append(result.Issues, Issue{
			Category: "schema",
			Severity: SeverityError,
			Message:  fmt.Sprintf("encoding record: %v", err),
		})
		return result
	}
	result.Issues = append(result.Issues, v.schemaIssues(data)...)

	if !rec.Valid {
		result.Issues = append(result.Issues, Issue{
			Category: "classification",
			Severity: SeverityInfo,
			Message:  rec.Error,
		})
	}

	missing := rec.MissingFields()
	for _, field := range missing {
		result.Issues = append(result.Issues, Issue{
			Category: "completeness",
			Severity: SeverityWarning,
			Path:     "/" + field,
			Message:  "field not extracted",
		})
	}
	for _, path := range rec.Fallbacks {
		result.Issues = append(result.Issues, Issue{
			Category: "fallback",
			Severity: SeverityInfo,
			Path:     "/" + strings.ReplaceAll(path, ".", "/"),
			Message:  "filled from canonical defaults",
		})
	}

	if rec.Valid {
		result.Completeness = float64(trackedFieldCount-len(missing)) / trackedFieldCount
	}
	result.Status = statusOf(result.Issues)
	return result
}

// CheckJSON validates an encoded record read from disk.
func (v *Validator) CheckJSON(name string, data []byte) *Result {
	var rec types.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return &Result{
			FileName: name,
			Status:   StatusFail,
			Issues: []Issue{{
				Category: "schema",
				Severity: SeverityError,
				Message:  fmt.Sprintf("decoding record: %v", err),
			}},
		}
	}
	result := v.Check(rec)
	if result.FileName == "" {
		result.FileName = name
	}
	// The decoded record may have dropped unknown or mistyped values, so the
	// raw bytes are checked as well.
	if raw := v.schemaIssues(data); len(raw) > 0 {
		result.Issues = mergeIssues(result.Issues, raw)
		result.Status = statusOf(result.Issues)
	}
	return result
}

func (v *Validator) schemaIssues(data []byte) []Issue {
	err := v.ValidateJSON(data)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{{Category: "schema", Severity: SeverityError, Message: err.Error()}}
	}

	var issues []Issue
	for _, e := range verr.BasicOutput().Errors {
		if e.Error == "" || strings.HasPrefix(e.Error, "doesn't validate with") {
			continue
		}
		issues = append(issues, Issue{
			Category: "schema",
			Severity: SeverityError,
			Path:     e.InstanceLocation,
			Message:  e.Error,
		})
	}
	if len(issues) == 0 {
		issues = append(issues, Issue{Category: "schema", Severity: SeverityError, Message: verr.Error()})
	}
	return issues
}

func mergeIssues(have, extra []Issue) []Issue {
	seen := make(map[string]bool, len(have))
	for _, is := range have {
		seen[is.Path+"|"+is.Message] = true
	}
	for _, is := range extra {
		if !seen[is.Path+"|"+is.Message] {
			have = append(have, is)
		}
	}
	return have
}

func statusOf(issues []Issue) Status {
	status := StatusPass
	for _, is := range issues {
		switch is.Severity {
		case SeverityError:
			return StatusFail
		case SeverityWarning:
			status = StatusWarn
		}
	}
	return status
}

// Summary aggregates a batch of results.
type Summary struct {
	Results []*Result `json:"results"`
	Passed  int       `json:"passed"`
	Warned  int       `json:"warned"`
	Failed  int       `json:"failed"`
}

// Summarize counts results by status. Results are ordered by file name.
func Summarize(results []*Result) *Summary {
	s := &Summary{Results: append([]*Result(nil), results...)}
	sort.SliceStable(s.Results, func(i, j int) bool {
		return s.Results[i].FileName < s.Results[j].FileName
	})
	for _, r := range s.Results {
		switch r.Status {
		case StatusPass:
			s.Passed++
		case StatusWarn:
			s.Warned++
		case StatusFail:
			s.Failed++
		}
	}
	return s
}

// OK reports whether no record failed.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

// String returns a human-readable report.
func (s *Summary) String() string {
	var b strings.Builder

	b.WriteString("Record Validation Report\n")
	b.WriteString("========================\n\n")

	for _, r := range s.Results {
		fmt.Fprintf(&b, "[%s] %s (completeness: %.0f%%)\n", r.Status, r.FileName, r.Completeness*100)
		for _, is := range r.Issues {
			if is.Path != "" {
				fmt.Fprintf(&b, "  %s [%s] %s: %s\n", strings.ToUpper(is.Severity), is.Category, is.Path, is.Message)
			} else {
				fmt.Fprintf(&b, "  %s [%s] %s\n", strings.ToUpper(is.Severity), is.Category, is.Message)
			}
		}
	}

	fmt.Fprintf(&b, "\nSummary: %d passed, %d with warnings, %d failed\n", s.Passed, s.Warned, s.Failed)
	return b.String()
}

// ToMarkdown renders the summary as a Markdown table.
func (s *Summary) ToMarkdown() string {
	var b strings.Builder

	b.WriteString("# Record Validation\n\n")
	b.WriteString("| File | Status | Completeness | Issues |\n")
	b.WriteString("|------|--------|--------------|--------|\n")
	for _, r := range s.Results {
		fmt.Fprintf(&b, "| %s | %s %s | %.0f%% | %d |\n",
			r.FileName, statusBadge(r.Status), r.Status, r.Completeness*100, len(r.Issues))
	}
	fmt.Fprintf(&b, "\n**%d** passed, **%d** with warnings, **%d** failed.\n", s.Passed, s.Warned, s.Failed)
	return b.String()
}

func statusBadge(status Status) string {
	switch status {
	case StatusPass:
		return "✅"
	case StatusWarn:
		return "⚠️"
	default:
		return "❌"
	}
}
