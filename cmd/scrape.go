package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"mspro-labs/bean-atlas/internal/ai"
	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/embedder"
	"mspro-labs/bean-atlas/internal/enhance"
	"mspro-labs/bean-atlas/internal/fetch"
	"mspro-labs/bean-atlas/internal/models"
	"mspro-labs/bean-atlas/internal/pipeline"
	"mspro-labs/bean-atlas/internal/store"
)

var scrapeRoaster string

// scrapeCmd runs the full pipeline and auto-embeds new tasting notes.
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run the extraction pipeline and update the database",
	Long:  `Fetches each configured roaster's catalog, enhances and canonicalizes the records, updates the local database, and embeds any new tasting notes.`,
	Run: func(cmd *cobra.Command, args []string) {
		runScrape()
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeRoaster, "roaster", "", "only scrape this roaster id")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape() {
	ctx := context.Background()

	// 1. Load Config
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load roaster config: %v", err)
	}

	roasters := cfg.Roasters
	if scrapeRoaster != "" {
		r, ok := cfg.Roaster(scrapeRoaster)
		if !ok {
			log.Fatalf("Unknown roaster id %q", scrapeRoaster)
		}
		roasters = []config.Roaster{r}
	}

	// 2. Connect to DB
	st, err := store.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer st.Close()

	// 3. Initialize AI (optional: the pipeline degrades to deterministic
	// extraction when the key is missing)
	var extractor pipeline.Extractor
	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Printf("⚠️ Warning: AI extraction disabled (check GEMINI_API_KEY): %v", err)
	} else {
		defer aiClient.Close()
		extractor = aiClient
	}

	// 4. Build the pipeline
	fetcher, cleanup, err := buildFetcher(roasters)
	if err != nil {
		log.Fatalf("Fetcher error: %v", err)
	}
	defer cleanup()

	pipe := pipeline.New(enhance.NewRegistry(), fetcher, extractor, cfg.Concurrency)

	// 5. Run per roaster
	for _, roaster := range roasters {
		if err := st.UpsertRoaster(models.Roaster{ID: roaster.ID, Name: roaster.Name, BaseURL: roaster.BaseURL}); err != nil {
			log.Fatalf("Failed to register roaster %s: %v", roaster.ID, err)
		}
		if err := st.MarkInactive(roaster.ID); err != nil {
			log.Fatalf("Failed to mark inactive for %s: %v", roaster.ID, err)
		}

		coffees, err := pipe.RunRoaster(ctx, roaster)
		if err != nil {
			log.Printf("⚠️ Skipping roaster %s: %v", roaster.ID, err)
			continue
		}
		if len(coffees) == 0 {
			log.Printf("%s: no records, skipping save.", roaster.ID)
			continue
		}

		count, err := st.SaveCoffees(ctx, coffees)
		if err != nil {
			log.Fatalf("Failed to save data for %s: %v", roaster.ID, err)
		}
		log.Printf("SUCCESS: %s upserted %d records.", roaster.ID, count)
	}

	// 6. Auto-embed new tasting notes
	if aiClient == nil {
		return
	}
	log.Println("🤖 Starting automatic note embedding...")
	if err := embedder.Run(ctx, st, aiClient); err != nil {
		log.Printf("⚠️ Warning: Auto-embedding failed: %v", err)
	}
}

// buildFetcher launches a browser only when some roaster is configured
// with render: true.
func buildFetcher(roasters []config.Roaster) (fetch.Fetcher, func(), error) {
	needRender := false
	for _, r := range roasters {
		if r.Render {
			needRender = true
			break
		}
	}
	if !needRender {
		return fetch.NewStatic(), func() {}, nil
	}
	rendered, err := fetch.NewRendered()
	if err != nil {
		return nil, nil, err
	}
	return rendered, rendered.Close, nil
}
