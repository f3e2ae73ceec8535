package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mspro-labs/bean-atlas/internal/ai"
	"mspro-labs/bean-atlas/internal/catalog"
	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/fetch"
)

var compareLimit int

// compareCmd is a read-only diagnostic: catalog extraction and AI
// extraction run side by side against the same roaster so a human can
// judge the strategies. Nothing is persisted.
var compareCmd = &cobra.Command{
	Use:   "compare [roaster-id]",
	Short: "Diff catalog extraction against AI extraction for one roaster",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCompare(args[0])
	},
}

func init() {
	compareCmd.Flags().IntVar(&compareLimit, "limit", 5, "max products to compare")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(roasterID string) {
	ctx := context.Background()

	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load roaster config: %v", err)
	}
	roaster, ok := cfg.Roaster(roasterID)
	if !ok {
		log.Fatalf("Unknown roaster id %q", roasterID)
	}

	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Fatalf("AI client required for comparison: %v", err)
	}
	defer aiClient.Close()

	scraper, err := catalog.ForPlatform(roaster.Platform)
	if err != nil {
		log.Fatalf("Scraper error: %v", err)
	}
	coffees, err := scraper.Products(ctx, roaster)
	if err != nil {
		log.Fatalf("Catalog fetch failed: %v", err)
	}
	if len(coffees) > compareLimit {
		coffees = coffees[:compareLimit]
	}

	fetcher := fetch.NewStatic()

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Catalog vs AI: %s", roaster.ID))
	t.AppendHeader(table.Row{"Coffee", "Field", "Catalog", "AI"})

	for _, coffee := range coffees {
		html, err := fetcher.Page(ctx, coffee.URL)
		if err != nil {
			log.Printf("⚠️ Skipping %s: %v", coffee.URL, err)
			continue
		}
		details, err := aiClient.Extract(ctx, coffee.URL, html)
		if err != nil {
			log.Printf("⚠️ No AI extraction for %s: %v", coffee.URL, err)
			continue
		}

		t.AppendRow(table.Row{coffee.Name, "country", coffee.Country, details.Country})
		t.AppendRow(table.Row{"", "region", coffee.Region, details.Region})
		t.AppendRow(table.Row{"", "producer", coffee.Producer, details.Producer})
		t.AppendRow(table.Row{"", "process", coffee.Process, details.Process})
		t.AppendRow(table.Row{"", "protocol", coffee.Protocol, details.Protocol})
		t.AppendRow(table.Row{"", "variety", coffee.Variety, details.Variety})
		t.AppendRow(table.Row{"", "notes", strings.Join(coffee.Notes, ", "), strings.Join(details.Notes, ", ")})
		t.AppendSeparator()
	}

	fmt.Println(t.Render())
}
