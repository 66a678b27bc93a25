package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coolbeans/becas/pkg/types"
)

// Output file names written next to the per-document records.
const (
	RecordsFile  = "becas_datos.json"
	ReportFile   = "report.json"
	WorkbookFile = "resumen.xlsx"
)

// ErrNoRecords is returned when a directory holds no record files.
var ErrNoRecords = errors.New("no record files found")

// WriteJSON pretty-prints v.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteJSONFile writes v to path, creating parent directories.
func WriteJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RecordFileName returns the per-document output name for a source file.
func RecordFileName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// ReadRecords loads the per-document record files of dir, skipping the
// aggregate outputs and JSON files that are not records. Records are
// returned in file name order.
func ReadRecords(dir string) ([]types.Record, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(paths)

	var records []types.Record
	for _, path := range paths {
		switch filepath.Base(path) {
		case RecordsFile, ReportFile:
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var rec types.Record
		if err := json.Unmarshal(data, &rec); err != nil || rec.FileName == "" {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoRecords)
	}
	return records, nil
}
