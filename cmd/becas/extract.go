package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coolbeans/becas/pkg/batch"
	"github.com/coolbeans/becas/pkg/extract"
	"github.com/coolbeans/becas/pkg/report"
	"github.com/coolbeans/becas/pkg/store"
	"github.com/coolbeans/becas/pkg/types"
)

func extractCmd() *cobra.Command {
	var (
		inputDir     string
		outputDir    string
		workers      int
		storePath    string
		catalogDir   string
		noDefaults   bool
		noPreprocess bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract records from a corpus of resolutions",
		Long: `Extract structured records from every .txt resolution in the input
directory. Writes one <name>.json per document, becas_datos.json with all
records, report.json and resumen.xlsx.

Example:
  becas extract --input corpus --output output
  becas extract --input corpus --workers 8 --store .cache/becas.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.InputDir = inputDir
			}
			if flags.Changed("output") {
				cfg.OutputDir = outputDir
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("store") {
				cfg.StorePath = storePath
			}
			if flags.Changed("catalog-dir") {
				cfg.CatalogDir = catalogDir
			}
			if noDefaults {
				cfg.Extraction.CanonicalDefaults = false
			}
			if noPreprocess {
				cfg.Extraction.Preprocess = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			catalog, err := loadCatalog()
			if err != nil {
				return err
			}

			paths, err := batch.Discover(cfg.InputDir)
			if err != nil {
				return err
			}

			extractor := extract.New(catalog,
				extract.WithLogger(log),
				extract.WithOptions(extract.Options{CanonicalDefaults: cfg.Extraction.CanonicalDefaults}),
			)

			bar := newProgressBar(len(paths), "Extracting")
			opts := []batch.Option{
				batch.WithWorkers(cfg.Workers),
				batch.WithPreprocess(cfg.Extraction.Preprocess),
				batch.WithLogger(log),
				batch.WithProgress(func(done, total int, res batch.Result, failure *batch.Failure) {
					_ = bar.Add(1)
				}),
			}

			if cfg.StorePath != "" {
				s, err := store.Open(cfg.StorePath)
				if err != nil {
					return err
				}
				defer s.Close()
				opts = append(opts, batch.WithStore(s))
			}

			summary, err := batch.NewRunner(extractor, opts...).Run(cmd.Context(), paths)
			_ = bar.Finish()
			if err != nil && summary == nil {
				return err
			}
			if err != nil {
				printWarning("Run interrupted: %v", err)
			}

			printHeader("Documents")
			printVerdicts(summary)

			if len(summary.Results) == 0 {
				return errors.New("no readable documents")
			}

			if err := writeOutputs(summary); err != nil {
				return err
			}

			valid, invalid := summary.Counts()
			printHeader("Summary")
			fmt.Printf("  Documents:  %d\n", len(paths))
			fmt.Printf("  Valid:      %d\n", valid)
			fmt.Printf("  Invalid:    %d\n", invalid)
			fmt.Printf("  Failed:     %d\n", len(summary.Failures))
			fmt.Printf("  Duration:   %v\n", summary.Duration.Round(time.Millisecond))
			fmt.Printf("  Output:     %s\n", cfg.OutputDir)
			return err
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory of .txt resolutions")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of concurrent workers")
	cmd.Flags().StringVar(&storePath, "store", "", "SQLite cache of processed documents")
	cmd.Flags().StringVar(&catalogDir, "catalog-dir", "", "Directory of additional pattern catalogs")
	cmd.Flags().BoolVar(&noDefaults, "no-defaults", false, "Do not backfill eligible studies from the canonical lists")
	cmd.Flags().BoolVar(&noPreprocess, "no-preprocess", false, "Skip PDF artefact cleanup")

	return cmd
}

func printVerdicts(summary *batch.Summary) {
	for _, res := range summary.Results {
		rec := res.Record
		cached := ""
		if res.Cached {
			cached = " (cached)"
		}
		switch {
		case !rec.Valid:
			printInvalid("%s: %s", rec.FileName, rec.Error)
		case len(rec.MissingFields()) > 0:
			printWarning("%s: %s, missing %s%s", rec.FileName, yearOrUnknown(rec), strings.Join(rec.MissingFields(), ", "), cached)
		default:
			printSuccess("%s: %s%s", rec.FileName, yearOrUnknown(rec), cached)
		}
		if len(rec.Fallbacks) > 0 {
			printInfo("  defaults used for %s", strings.Join(rec.Fallbacks, ", "))
		}
	}
	for _, f := range summary.Failures {
		printInvalid("%s: %v", filepath.Base(f.Path), f.Err)
	}
}

func yearOrUnknown(rec types.Record) string {
	if y := rec.Year(); y != "" {
		return y
	}
	return "year unknown"
}

func writeOutputs(summary *batch.Summary) error {
	records := summary.Records()
	for _, res := range summary.Results {
		path := filepath.Join(cfg.OutputDir, report.RecordFileName(res.Path))
		if err := report.WriteJSONFile(path, res.Record); err != nil {
			return err
		}
	}
	if err := report.WriteJSONFile(filepath.Join(cfg.OutputDir, report.RecordsFile), records); err != nil {
		return err
	}

	return writeReport(report.BuildReport(records, time.Now()), cfg.OutputDir)
}

func writeReport(rep *types.Report, dir string) error {
	if cfg.Report.JSON {
		if err := report.WriteJSONFile(filepath.Join(dir, report.ReportFile), rep); err != nil {
			return err
		}
	}
	if cfg.Report.XLSX {
		data, err := report.ExportXLSX(rep)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, report.WorkbookFile), data, 0644); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	}
	log.Info().Str("dir", dir).Int("records", len(rep.Records)).Msg("report written")
	return nil
}
