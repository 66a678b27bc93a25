package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coolbeans/becas/pkg/extract"
	"github.com/coolbeans/becas/pkg/pattern"
	"github.com/coolbeans/becas/pkg/report"
	"github.com/coolbeans/becas/pkg/store"
	"github.com/coolbeans/becas/pkg/types"
	"github.com/coolbeans/becas/pkg/validate"
)

func reportCmd() *cobra.Command {
	var (
		recordsDir string
		storePath  string
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Rebuild the cross-year report from stored records",
		Long: `Rebuild the comparison report from record JSON files or from the store
and print the comparison table.

Example:
  becas report --records output
  becas report --store .cache/becas.db --output output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []types.Record
			switch {
			case recordsDir != "" && storePath != "":
				return errors.New("use either --records or --store")
			case recordsDir != "":
				loaded, err := report.ReadRecords(recordsDir)
				if err != nil {
					return err
				}
				records = loaded
			case storePath != "":
				s, err := store.Open(storePath)
				if err != nil {
					return err
				}
				defer s.Close()
				loaded, err := s.Records(cmd.Context())
				if err != nil {
					return err
				}
				records = loaded
			default:
				return errors.New("one of --records or --store is required")
			}

			rep := report.BuildReport(records, time.Now())
			fmt.Print(report.FormatComparisons(rep))

			if outputDir != "" {
				return writeReport(rep, outputDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recordsDir, "records", "", "Directory of record JSON files")
	cmd.Flags().StringVar(&storePath, "store", "", "SQLite store written by extract --store")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Write report.json and resumen.xlsx to this directory")

	return cmd
}

func classifyCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "classify FILE...",
		Short: "Check whether documents are scholarship resolutions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			detector := pattern.NewDetector(catalog)

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					printInvalid("%s: %v", path, err)
					continue
				}
				text := extract.Prepare(string(data))
				verdict := detector.Classify(text)
				if verdict.Valid {
					printSuccess("%s: scholarship resolution (%d/%d signatures)", filepath.Base(path), verdict.Count, len(catalog.Detection.Signatures))
				} else {
					printInvalid("%s: not a scholarship resolution (%d/%d signatures, %d required)", filepath.Base(path), verdict.Count, len(catalog.Detection.Signatures), verdict.Required)
				}
				if verbose {
					fmt.Print(detector.Explain(text))
				} else {
					for _, name := range verdict.Matched {
						fmt.Printf("    - %s\n", name)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show every signature with its match")
	return cmd
}

func sectionCmd() *cobra.Command {
	var (
		number int
		title  string
		key    string
	)

	cmd := &cobra.Command{
		Use:   "section FILE",
		Short: "Print one article of a resolution",
		Long: `Print the body of one article, located by number and title or by a
catalog article key.

Example:
  becas section convocatoria.txt --article 19 --title "Umbrales de renta"
  becas section convocatoria.txt --key income_thresholds`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			text := extract.Prepare(string(data))

			if key != "" {
				catalog, err := loadCatalog()
				if err != nil {
					return err
				}
				s := extract.NewLocator(catalog).FindKey(text, key)
				if !s.Found() {
					return fmt.Errorf("article %q not found", key)
				}
				printInfo("Artículo %d (%s, located by %s)", s.Number, s.Title, s.Strategy)
				fmt.Println(s.Text)
				return nil
			}

			if number <= 0 {
				return errors.New("--article or --key is required")
			}
			body := extract.ExtractArticle(text, number, title)
			if body == "" {
				return fmt.Errorf("article %d not found", number)
			}
			fmt.Println(body)
			return nil
		},
	}

	cmd.Flags().IntVarP(&number, "article", "a", 0, "Article number")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Article title")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Catalog article key (e.g. income_thresholds)")
	return cmd
}

func validateCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate record JSON files against the record schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := validate.New()
			if err != nil {
				return err
			}

			var results []*validate.Result
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				results = append(results, validator.CheckJSON(filepath.Base(path), data))
			}

			summary := validate.Summarize(results)
			if markdown {
				fmt.Print(summary.ToMarkdown())
			} else {
				fmt.Print(summary.String())
			}
			if !summary.OK() {
				return fmt.Errorf("%d record(s) failed validation", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the report as Markdown")
	return cmd
}

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect and check pattern catalogs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(cfg.CatalogDir)
			if err != nil {
				return err
			}
			for _, c := range registry.List() {
				fmt.Printf("%-28s %-8s %d signatures (min %d), %d articles, %d fields\n",
					c.CatalogID, c.Version, len(c.Detection.Signatures), c.Detection.MinSignatures,
					len(c.Articles), len(c.Fields))
				if c.Description != "" {
					fmt.Printf("  %s\n", c.Description)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check DIR",
		Short: "Validate every catalog file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := pattern.NewRegistryWithDirectory(args[0])
			if err != nil {
				return err
			}
			if registry.Count() == 0 {
				printWarning("No catalogs in %s", args[0])
				return nil
			}
			for _, c := range registry.List() {
				printSuccess("%s %s", c.CatalogID, c.Version)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "watch DIR",
		Short: "Reload catalogs as their files change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := pattern.NewRegistryWithDirectory(args[0])
			if err != nil {
				return err
			}
			registry.SetLogger(log)
			registry.SetOnChange(func(event string, c *pattern.Catalog) {
				if c == nil {
					printInfo("%s", event)
					return
				}
				printInfo("%s: %s %s", event, c.CatalogID, c.Version)
			})
			if err := registry.Watch(); err != nil {
				return err
			}
			defer registry.StopWatch()

			ids := make([]string, 0, registry.Count())
			for _, c := range registry.List() {
				ids = append(ids, c.CatalogID)
			}
			printInfo("Watching %s (%s). Press Ctrl+C to stop.", args[0], strings.Join(ids, ", "))
			<-cmd.Context().Done()
			return nil
		},
	})

	return cmd
}
