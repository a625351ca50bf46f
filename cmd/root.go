package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/commune-qc/internal/config"
	"github.com/sells-group/commune-qc/internal/store"
	"github.com/sells-group/commune-qc/internal/taxonomy"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "communeqc",
	Short: "Commune address survey quality control",
	Long:  "Reconciles the site survey and tracking extracts of a commune, detects duplicates, mislabels and ticket gaps, and scores conformity.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens the configured run store and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// loadTaxonomy returns the category taxonomy, applying the configured
// override file when present.
func loadTaxonomy() (*taxonomy.Taxonomy, error) {
	if cfg.Taxonomy.File != "" {
		return taxonomy.LoadFile(cfg.Taxonomy.File)
	}
	return taxonomy.Default(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
