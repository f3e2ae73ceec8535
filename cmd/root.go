package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bean-atlas",
	Short: "Roaster catalog extraction and normalization pipeline",
	Long: `bean-atlas ingests roaster storefront catalogs and produces one
canonical record per coffee: catalog scrape, per-roaster enhancement,
AI fallback extraction, and vocabulary canonicalization.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
