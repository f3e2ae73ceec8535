package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/bean-atlas/internal/ai"
	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/searcher"
	"mspro-labs/bean-atlas/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantic search for coffees by tasting note 'vibe'",
	Long: `Uses AI to find tasting notes that match the semantic meaning of your query
and lists the coffees carrying them.
Examples:
  bean-atlas search "funky and fruity with berry notes"
  bean-atlas search "classic comforting chocolate"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(query string) {
	ctx := context.Background()

	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	st, err := store.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer st.Close()

	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize AI: %v", err)
	}
	defer aiClient.Close()

	matches, err := searcher.Perform(ctx, st, aiClient, query, 5)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	fmt.Printf("\n🔍 Top note matches for: \"%s\"\n\n", query)
	for i, m := range matches {
		fmt.Printf("#%d [%.1f%% match] %s\n", i+1, m.Score*100, m.Note)
		for _, c := range m.Coffees {
			fmt.Printf("   %s - %s (%s)\n", c.Name, c.Country, c.URL)
		}
		fmt.Println()
	}
}
