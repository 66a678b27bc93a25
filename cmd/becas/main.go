package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coolbeans/becas/pkg/config"
	"github.com/coolbeans/becas/pkg/logging"
	"github.com/coolbeans/becas/pkg/pattern"
)

var version = "0.1.0"

// Global state set up by the root command before any subcommand runs.
var (
	cfg       *config.Config
	log       *logging.Logger
	runID     string
	configArg string
	logLevel  string
	logFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "becas",
		Short: "Scholarship resolution extractor",
		Long: `Becas reads plain-text renderings of the Spanish general scholarship
resolutions ("convocatorias de becas") and extracts structured records:

  - Academic year and eligible studies
  - Scholarship classes and amounts
  - Family income thresholds
  - Application procedure and deadlines
  - Academic performance requirements

Records are written as JSON, compared across years, and exported to XLSX.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configArg, "config", "", "Path to becas.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console or json)")

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(sectionCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(patternsCmd())
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(configArg)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if logFormat != "" {
		loaded.Logging.Format = logFormat
	}
	if !logging.ValidLevel(loaded.Logging.Level) {
		return fmt.Errorf("%w: got %q", config.ErrInvalidLogLevel, loaded.Logging.Level)
	}

	cfg = loaded
	runID = uuid.NewString()
	log = logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
		RunID:  runID,
	})
	return nil
}

// loadRegistry returns the embedded catalogs plus those of dir, if any.
func loadRegistry(dir string) (*pattern.DefaultRegistry, error) {
	registry := pattern.NewRegistry()
	registry.SetLogger(log)
	if err := registry.LoadEmbedded(); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := registry.LoadDirectory(dir); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// loadCatalog selects the configured catalog.
func loadCatalog() (*pattern.Catalog, error) {
	registry, err := loadRegistry(cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("loading catalogs: %w", err)
	}
	id := cfg.CatalogID
	if id == "" {
		id = pattern.DefaultCatalogID
	}
	catalog, ok := registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("catalog %q not found", id)
	}
	log.Debug().Str("catalog", catalog.CatalogID).Str("version", catalog.Version).Msg("catalog selected")
	return catalog, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("becas version %s\n", version)
			fmt.Printf("default catalog: %s %s\n", pattern.Default().CatalogID, pattern.Default().Version)
		},
	}
}
