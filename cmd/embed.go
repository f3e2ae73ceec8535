package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"mspro-labs/bean-atlas/internal/ai"
	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/embedder"
	"mspro-labs/bean-atlas/internal/store"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate AI embeddings for new tasting notes",
	Long:  `Finds distinct tasting notes in the database that are missing semantic vectors and generates them using the Gemini API.`,
	Run: func(cmd *cobra.Command, args []string) {
		runEmbed()
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed() {
	ctx := context.Background()

	// 1. Config & DB
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	st, err := store.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer st.Close()

	// 2. Initialize AI
	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize AI client: %v", err)
	}
	defer aiClient.Close()

	// 3. Run Shared Embedder Logic
	if err := embedder.Run(ctx, st, aiClient); err != nil {
		log.Fatalf("Embedding process failed: %v", err)
	}
}
