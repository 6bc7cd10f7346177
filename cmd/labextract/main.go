// Package main is the entry point for the labextract CLI. It runs the extraction engine on
// local files without any server.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/labextract-server/internal/config"
	"github.com/labextract-server/internal/extraction"
	"github.com/labextract-server/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "labextract",
		Short: "Extract biomarkers and genetic variants from lab report text",
		Long: `labextract classifies a lab or genetic report, extracts biomarker measurements and
genotype calls, and maps their names to a canonical vocabulary.

Configuration comes from LABEXTRACT_* environment variables, the same ones the MCP
server reads.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "", "log level (default: LABEXTRACT_LOG_LEVEL or warn)")
	root.PersistentFlags().String("vocabulary", "", "YAML vocabulary extension file")

	root.AddCommand(newExtractCmd(), newResolveCmd(), newVocabularyCmd(), newSetupCmd(), newVersionCmd())
	return root
}

// cliConfig is the lite configuration with persistent flag overrides applied.
func cliConfig(cmd *cobra.Command) *config.LiteConfig {
	cfg := config.LoadLiteConfig()
	if os.Getenv("LABEXTRACT_LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("vocabulary"); v != "" {
		cfg.VocabularyFile = v
	}
	return cfg
}

func newLogger(cfg *config.LiteConfig) *logrus.Logger {
	lc := cfg.LoggingConfig()
	lc.Format = "text"
	return logging.NewLogger(lc)
}

func newEngine(cfg *config.LiteConfig, logger *logrus.Logger) (*extraction.Engine, error) {
	engine, err := extraction.NewEngine(cfg.ExtractionConfig(), extraction.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction engine: %w", err)
	}
	return engine, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
