package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/shipping"
	"mspro-labs/bean-atlas/internal/store"
)

// ratesCmd refreshes shipping rates for the configured destinations.
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Check and merge shipping rates per roaster",
	Long:  `Queries each roaster's storefront for the configured destination countries and merges the results into the stored rates, keyed by country code.`,
	Run: func(cmd *cobra.Command, args []string) {
		runRates()
	},
}

func init() {
	rootCmd.AddCommand(ratesCmd)
}

func runRates() {
	ctx := context.Background()

	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load roaster config: %v", err)
	}
	if len(cfg.ShippingCountries) == 0 {
		log.Println("No shipping_countries configured, nothing to do.")
		return
	}

	st, err := store.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer st.Close()

	checker := shipping.NewChecker()
	for _, roaster := range cfg.Roasters {
		batch := checker.CheckAll(ctx, roaster, cfg.ShippingCountries)
		if len(batch) == 0 {
			log.Printf("%s: no destinations answered, keeping existing rates.", roaster.ID)
			continue
		}

		// An unknown roaster here is a configuration error, not a
		// transient fault: fail loudly instead of skipping.
		merged, err := st.MergeShippingRates(ctx, roaster.ID, batch)
		if err != nil {
			log.Fatalf("Failed to merge rates for %s: %v", roaster.ID, err)
		}
		log.Printf("%s: %d rates checked, %d stored.", roaster.ID, len(batch), len(merged))
	}
}
