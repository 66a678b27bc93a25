package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/becas/pkg/extract"
	"github.com/coolbeans/becas/pkg/types"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func baseRecord() types.Record {
	return types.Record{
		ID:          "rec-1",
		FileName:    "convocatoria.pdf",
		Valid:       true,
		ProcessedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		AcademicYear: &types.AcademicYear{
			Year:        "2023-2024",
			Description: "Convocatoria de becas para el curso académico 2023-2024",
		},
	}
}

func hasIssue(issues []Issue, category, pathPart string) bool {
	for _, is := range issues {
		if is.Category == category && strings.Contains(is.Path, pathPart) {
			return true
		}
	}
	return false
}

func TestCheck_ExtractedFixturePasses(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "extract", "testdata", "convocatoria_2023.txt"))
	require.NoError(t, err)

	rec := extract.New(nil).Extract(types.Document{Name: "convocatoria_2023.pdf", Text: string(data)})
	result := newValidator(t).Check(rec)

	assert.Equal(t, StatusPass, result.Status, "issues: %+v", result.Issues)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 1.0, result.Completeness)
}

func TestCheck_SchemaViolation(t *testing.T) {
	rec := baseRecord()
	rec.ScholarshipAmounts = &types.ScholarshipAmounts{Components: []types.AmountComponent{{
		Identifier:  "B)",
		Type:        types.ComponentIncomeLinked,
		Label:       types.ComponentIncomeLinked.Label(),
		Description: "Cuantía fija ligada a la renta",
		Amount:      "1.700,00",
	}}}

	result := newValidator(t).Check(rec)

	assert.Equal(t, StatusFail, result.Status)
	assert.True(t, hasIssue(result.Issues, "schema", "/scholarship_amounts/components/0/amount"), "issues: %+v", result.Issues)
}

func TestCheck_IncompleteRecordWarns(t *testing.T) {
	result := newValidator(t).Check(baseRecord())

	assert.Equal(t, StatusWarn, result.Status)
	assert.InDelta(t, 1.0/8, result.Completeness, 1e-9)
	assert.True(t, hasIssue(result.Issues, "completeness", "/income_thresholds"))
	assert.False(t, hasIssue(result.Issues, "schema", ""))
}

func TestCheck_InvalidDocument(t *testing.T) {
	rec := types.Record{
		ID:          "rec-2",
		FileName:    "orden.pdf",
		ProcessedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Error:       "not a scholarship resolution: 1 of 2 required signatures",
	}

	result := newValidator(t).Check(rec)

	assert.Equal(t, StatusPass, result.Status)
	assert.Zero(t, result.Completeness)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "classification", result.Issues[0].Category)
	assert.Equal(t, SeverityInfo, result.Issues[0].Severity)
}

func TestCheck_FallbacksReported(t *testing.T) {
	rec := baseRecord()
	rec.Fallbacks = []string{extract.FallbackUniversity}

	result := newValidator(t).Check(rec)

	assert.True(t, hasIssue(result.Issues, "fallback", "/eligible_studies/university"))
}

func TestCheckJSON(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name       string
		data       string
		wantStatus Status
		wantPath   string
	}{
		{
			name:       "not json",
			data:       "{",
			wantStatus: StatusFail,
		},
		{
			name:       "missing id",
			data:       `{"file_name":"a.pdf","valid":false,"processed_at":"2024-03-01T10:00:00Z"}`,
			wantStatus: StatusFail,
		},
		{
			name:       "bad year",
			data:       `{"id":"x","file_name":"a.pdf","valid":false,"processed_at":"2024-03-01T10:00:00Z","academic_year":{"year":"2023-24","description":""}}`,
			wantStatus: StatusFail,
			wantPath:   "/academic_year/year",
		},
		{
			name:       "invalid document",
			data:       `{"id":"x","file_name":"a.pdf","valid":false,"processed_at":"2024-03-01T10:00:00Z","error":"not a scholarship resolution"}`,
			wantStatus: StatusPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.CheckJSON("a.json", []byte(tt.data))
			assert.Equal(t, tt.wantStatus, result.Status, "issues: %+v", result.Issues)
			assert.NotEmpty(t, result.FileName)
			if tt.wantPath != "" {
				assert.True(t, hasIssue(result.Issues, "schema", tt.wantPath), "issues: %+v", result.Issues)
			}
		})
	}
}

func TestValidateJSON(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.ValidateJSON([]byte(`{"id":"x","file_name":"a.pdf","valid":true,"processed_at":"2024-03-01T10:00:00Z"}`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"id":"x","file_name":"a.pdf","valid":"yes","processed_at":"2024-03-01T10:00:00Z"}`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"id":"x","file_name":"a.pdf","valid":true,"processed_at":"ayer"}`)))
}

func TestSummarize(t *testing.T) {
	results := []*Result{
		{FileName: "c.pdf", Status: StatusFail, Issues: []Issue{{Category: "schema", Severity: SeverityError, Path: "/id", Message: "missing"}}},
		{FileName: "a.pdf", Status: StatusPass, Completeness: 1},
		{FileName: "b.pdf", Status: StatusWarn, Completeness: 0.5},
	}

	s := Summarize(results)

	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Warned)
	assert.Equal(t, 1, s.Failed)
	assert.False(t, s.OK())
	assert.Equal(t, "a.pdf", s.Results[0].FileName)

	text := s.String()
	assert.Contains(t, text, "[FAIL] c.pdf")
	assert.Contains(t, text, "ERROR [schema] /id: missing")
	assert.Contains(t, text, "1 passed, 1 with warnings, 1 failed")

	md := s.ToMarkdown()
	assert.Contains(t, md, "| b.pdf | ⚠️ WARN | 50% | 0 |")
}

func TestSchemaIsCopied(t *testing.T) {
	s := Schema()
	s[0] = 'x'
	assert.Equal(t, byte('{'), Schema()[0])
}
