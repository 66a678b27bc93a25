// Package report aggregates records into the cross-year summary and writes it
// as JSON, an XLSX workbook, or a terminal table.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/coolbeans/becas/pkg/types"
)

// Tracked field keys.
const (
	FieldBasicGrant        = "basic_grant"
	FieldIncomeLinked      = "income_linked"
	FieldThreshold1Family4 = "threshold_1_family_4"
)

// trackedField reads one comparable value from a record. An empty string
// means the record does not carry the field.
type trackedField struct {
	key   string
	label string
	value func(rec *types.Record) string
}

var trackedFields = []trackedField{
	{
		key:   FieldBasicGrant,
		label: "Beca básica",
		value: func(rec *types.Record) string {
			c, _ := rec.ScholarshipAmounts.Find(types.ComponentBasic)
			return c.Amount
		},
	},
	{
		key:   FieldIncomeLinked,
		label: "Cuantía fija ligada a la renta",
		value: func(rec *types.Record) string {
			c, _ := rec.ScholarshipAmounts.Find(types.ComponentIncomeLinked)
			return c.Amount
		},
	},
	{
		key:   FieldThreshold1Family4,
		label: "Umbral 1, familias de cuatro miembros",
		value: func(rec *types.Record) string {
			th, ok := rec.IncomeThresholds.Find(1)
			if !ok {
				return ""
			}
			f, _ := th.Family(4)
			return f.Amount
		},
	},
}

// TrackedFields returns the keys of the compared fields in display order.
func TrackedFields() []string {
	keys := make([]string, len(trackedFields))
	for i, f := range trackedFields {
		keys[i] = f.key
	}
	return keys
}

// BuildReport counts the batch, keeps the valid records in chronological
// order and compares the tracked fields across them.
func BuildReport(records []types.Record, now time.Time) *types.Report {
	report := &types.Report{
		GeneratedAt: now.UTC(),
		Total:       len(records),
		Records:     []types.Record{},
	}

	for _, rec := range records {
		if rec.Valid {
			report.ValidCount++
			report.Records = append(report.Records, rec)
		} else {
			report.InvalidCount++
		}
	}

	SortRecords(report.Records)

	if n := len(report.Records); n > 0 {
		current := report.Records[n-1]
		report.Current = &current
	}

	for _, field := range trackedFields {
		if c, ok := compare(report.Records, field); ok {
			report.Comparisons = append(report.Comparisons, c)
		}
	}

	return report
}

// SortRecords orders records by academic year, records without a year first,
// with ties broken by file name.
func SortRecords(records []types.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		yi, yj := records[i].Year(), records[j].Year()
		if yi != yj {
			return yi < yj
		}
		return records[i].FileName < records[j].FileName
	})
}

func compare(records []types.Record, field trackedField) (types.Comparison, bool) {
	c := types.Comparison{Key: field.key, Label: field.label}

	var prev string
	for i := range records {
		value := field.value(&records[i])
		if value == "" {
			continue
		}
		point := types.ComparisonPoint{
			Year:     records[i].Year(),
			FileName: records[i].FileName,
			Value:    value,
		}
		if prev != "" {
			point.Delta = Delta(prev, value)
		}
		c.Points = append(c.Points, point)
		prev = value
	}

	if len(c.Points) < 2 {
		return types.Comparison{}, false
	}
	return c, true
}

// Delta returns cur - prev as a signed two-decimal string, or "" when either
// value is not a normalized amount.
func Delta(prev, cur string) string {
	p, err := strconv.ParseFloat(prev, 64)
	if err != nil {
		return ""
	}
	c, err := strconv.ParseFloat(cur, 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%+.2f", c-p)
}
