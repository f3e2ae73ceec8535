package embedder

import (
	"context"
	"log"
	"time"

	"mspro-labs/bean-atlas/internal/ai"
	"mspro-labs/bean-atlas/internal/store"
)

// Run embeds every distinct tasting note that has no stored vector yet.
// Notes are embedded individually so semantic search can match a query
// against the note vocabulary rather than whole descriptions.
func Run(ctx context.Context, st *store.Store, aiClient *ai.Client) error {
	notes, err := st.MissingNoteEmbeddings()
	if err != nil {
		return err
	}

	if len(notes) == 0 {
		log.Println("✨ All tasting notes are already embedded.")
		return nil
	}
	log.Printf("Found %d new notes to embed...", len(notes))

	count := 0
	for _, note := range notes {
		log.Printf("Embedding: %s", note)

		blob, _, err := aiClient.EmbedString(ctx, note)
		if err != nil {
			log.Printf("⚠️ Error embedding note: %v", err)
			time.Sleep(1 * time.Second) // Backoff on error
			continue
		}

		if err := st.SaveNoteEmbedding(note, blob); err != nil {
			log.Printf("⚠️ Error saving to DB: %v", err)
			continue
		}

		count++
		// Rate limit for free tier safety (approx 60 RPM max)
		time.Sleep(1 * time.Second)
	}

	log.Printf("🎉 Successfully embedded %d notes.", count)
	return nil
}
