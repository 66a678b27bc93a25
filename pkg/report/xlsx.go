package report

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/coolbeans/becas/pkg/types"
)

// Workbook sheet names.
const (
	SheetSummary     = "Resumen"
	SheetComparisons = "Comparativa"
	SheetThresholds  = "Umbrales"
	SheetDeadlines   = "Plazos"
)

// sheetWriter writes rows to one sheet, tracking the next free row.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) write(values ...any) {
	if w.err != nil {
		return
	}
	w.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			w.err = err
			return
		}
	}
}

func (w *sheetWriter) skip() {
	w.row++
}

// ExportXLSX renders the report as a workbook and returns its bytes.
func ExportXLSX(report *types.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; rename it so the summary is first.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	for _, name := range []string{SheetComparisons, SheetThresholds, SheetDeadlines} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx sheet %s: %w", name, err)
		}
	}

	writers := []func(*excelize.File, *types.Report) error{
		writeSummarySheet,
		writeComparisonSheet,
		writeThresholdSheet,
		writeDeadlineSheet,
	}
	for _, write := range writers {
		if err := write(f, report); err != nil {
			return nil, err
		}
	}

	index, _ := f.GetSheetIndex(SheetSummary)
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, report *types.Report) error {
	w := &sheetWriter{f: f, sheet: SheetSummary}
	w.write("Archivo", "Curso", "Beca básica", "Cuantía ligada a la renta", "Umbral 1 (4 miembros)",
		"Plazo universitarios", "Plazo no universitarios", "Valores por defecto")

	for i := range report.Records {
		rec := &report.Records[i]
		w.write(
			rec.FileName,
			rec.Year(),
			amountCell(trackedValue(rec, FieldBasicGrant)),
			amountCell(trackedValue(rec, FieldIncomeLinked)),
			amountCell(trackedValue(rec, FieldThreshold1Family4)),
			deadlineDate(rec, types.DeadlineUniversity),
			deadlineDate(rec, types.DeadlineNonUniversity),
			len(rec.Fallbacks) > 0,
		)
	}

	_ = f.SetColWidth(SheetSummary, "A", "A", 36)
	_ = f.SetColWidth(SheetSummary, "B", "B", 12)
	_ = f.SetColWidth(SheetSummary, "C", "E", 18)
	_ = f.SetColWidth(SheetSummary, "F", "G", 24)
	return w.err
}

func writeComparisonSheet(f *excelize.File, report *types.Report) error {
	w := &sheetWriter{f: f, sheet: SheetComparisons}
	if len(report.Comparisons) == 0 {
		w.write("Se necesitan al menos dos convocatorias con el mismo dato para comparar.")
		return w.err
	}
	for _, c := range report.Comparisons {
		w.write(c.Label)
		w.write("Curso", "Archivo", "Importe", "Diferencia")
		for _, p := range c.Points {
			w.write(p.Year, p.FileName, amountCell(p.Value), amountCell(p.Delta))
		}
		w.skip()
	}
	_ = f.SetColWidth(SheetComparisons, "A", "A", 14)
	_ = f.SetColWidth(SheetComparisons, "B", "B", 36)
	_ = f.SetColWidth(SheetComparisons, "C", "D", 16)
	return w.err
}

func writeThresholdSheet(f *excelize.File, report *types.Report) error {
	w := &sheetWriter{f: f, sheet: SheetThresholds}
	if report.Current == nil || report.Current.IncomeThresholds == nil {
		w.write("Sin umbrales de renta.")
		return w.err
	}
	w.write("Curso", report.Current.Year())
	w.write("Miembros", "Umbral 1", "Umbral 2", "Umbral 3")

	thresholds := report.Current.IncomeThresholds
	for size := 1; size <= 8; size++ {
		row := []any{size}
		for n := 1; n <= 3; n++ {
			th, _ := thresholds.Find(n)
			fam, _ := th.Family(size)
			row = append(row, amountCell(fam.Amount))
		}
		w.write(row...)
	}

	row := []any{"Miembro adicional"}
	for n := 1; n <= 3; n++ {
		th, _ := thresholds.Find(n)
		var amount string
		if th.AdditionalMember != nil {
			amount = th.AdditionalMember.Amount
		}
		row = append(row, amountCell(amount))
	}
	w.write(row...)

	_ = f.SetColWidth(SheetThresholds, "A", "A", 20)
	_ = f.SetColWidth(SheetThresholds, "B", "D", 14)
	return w.err
}

func writeDeadlineSheet(f *excelize.File, report *types.Report) error {
	w := &sheetWriter{f: f, sheet: SheetDeadlines}
	if report.Current == nil || report.Current.ApplicationDeadlines == nil {
		w.write("Sin plazos de solicitud.")
		return w.err
	}
	deadlines := report.Current.ApplicationDeadlines
	w.write("Categoría", "Fecha", "Fecha ISO", "Descripción")
	for _, d := range deadlines.Deadlines {
		w.write(d.Label, d.Date, d.ISODate, d.Description)
	}
	if ex := deadlines.Exceptional; ex != nil {
		w.write("Plazo excepcional", ex.Date, ex.ISODate, ex.Conditions)
	}
	_ = f.SetColWidth(SheetDeadlines, "A", "A", 28)
	_ = f.SetColWidth(SheetDeadlines, "B", "C", 22)
	_ = f.SetColWidth(SheetDeadlines, "D", "D", 60)
	return w.err
}

func trackedValue(rec *types.Record, key string) string {
	for _, f := range trackedFields {
		if f.key == key {
			return f.value(rec)
		}
	}
	return ""
}

func deadlineDate(rec *types.Record, category types.DeadlineCategory) string {
	if rec.ApplicationDeadlines == nil {
		return ""
	}
	for _, d := range rec.ApplicationDeadlines.Deadlines {
		if d.Category == category {
			return d.Date
		}
	}
	return ""
}

// amountCell stores normalized amounts as numbers so the sheet can sum them.
func amountCell(s string) any {
	if s == "" {
		return ""
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
