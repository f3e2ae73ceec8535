package searcher

import (
	"context"
	"fmt"
	"log"
	"sort"

	"mspro-labs/bean-atlas/internal/ai"
	"mspro-labs/bean-atlas/internal/models"
	"mspro-labs/bean-atlas/internal/store"
)

// NoteMatch is one scored tasting note and the coffees carrying it.
type NoteMatch struct {
	Note    string
	Score   float32
	Coffees []models.Coffee
}

// Perform executes a semantic search: the query vector is scored against
// every embedded tasting note, and the top notes pull in their coffees.
func Perform(ctx context.Context, st *store.Store, aiClient *ai.Client, queryText string, limit int) ([]NoteMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	// 1. Get Query Vector (Try cache first, then AI)
	queryVector, err := getQueryVector(ctx, st, aiClient, queryText)
	if err != nil {
		return nil, err
	}

	// 2. Load all note vectors
	notes, err := st.NoteVectors()
	if err != nil {
		return nil, fmt.Errorf("failed to load note vectors: %w", err)
	}

	// 3. Compare and score
	var matches []NoteMatch
	for _, nv := range notes {
		noteFloats, err := ai.BytesToFloats(nv.Vector)
		if err != nil {
			continue
		}
		score := ai.CosineSimilarity(queryVector, noteFloats)
		matches = append(matches, NoteMatch{Note: nv.Note, Score: score})
	}

	// 4. Sort by descending score, keep the top matches
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	// 5. Attach the coffees carrying each note
	for i := range matches {
		coffees, err := st.CoffeesWithNote("", matches[i].Note)
		if err != nil {
			return nil, err
		}
		matches[i].Coffees = coffees
	}

	return matches, nil
}

// getQueryVector handles the "cache-aside" logic for query embeddings.
func getQueryVector(ctx context.Context, st *store.Store, aiClient *ai.Client, text string) ([]float32, error) {
	// A. Try Cache
	blob, err := st.GetCachedQuery(text)
	if err == nil {
		// Cache hit
		return ai.BytesToFloats(blob)
	}

	// B. Cache Miss - Use AI
	log.Printf("🤖 Cache miss for '%s'. Calling Gemini...", text)
	blob, floats, err := aiClient.EmbedString(ctx, text)
	if err != nil {
		return nil, err
	}

	// C. Save to Cache (don't fail the request if cache save fails)
	if err := st.SaveCachedQuery(text, blob); err != nil {
		log.Printf("Warning: failed to save query to cache: %v", err)
	}

	return floats, nil
}
