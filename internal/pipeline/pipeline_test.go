package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"mspro-labs/bean-atlas/internal/ai"
	"mspro-labs/bean-atlas/internal/catalog"
	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/enhance"
	"mspro-labs/bean-atlas/internal/models"
)

type stubScraper struct {
	coffees []models.Coffee
}

func (s stubScraper) Products(_ context.Context, _ config.Roaster) ([]models.Coffee, error) {
	out := make([]models.Coffee, len(s.coffees))
	for i, c := range s.coffees {
		out[i] = c
		out[i].Notes = append([]string(nil), c.Notes...)
	}
	return out, nil
}

type stubFetcher struct{}

func (stubFetcher) Page(_ context.Context, url string) (string, error) {
	return "<html>" + url + "</html>", nil
}

type stubExtractor struct {
	details map[string]models.ExtractedDetails
}

func (e stubExtractor) Extract(_ context.Context, url, _ string) (*models.ExtractedDetails, error) {
	d, ok := e.details[url]
	if !ok {
		return nil, ai.ErrNoExtraction
	}
	return &d, nil
}

func testPipeline(scraper catalog.Scraper, extractor Extractor) *Pipeline {
	p := New(enhance.NewRegistry(), stubFetcher{}, extractor, 2)
	p.Scrapers = func(string) (catalog.Scraper, error) { return scraper, nil }
	return p
}

func TestRunRoasterStages(t *testing.T) {
	roaster := config.Roaster{
		ID:        "sweetblue",
		BaseURL:   "https://sweetblue.example",
		Enhancers: []string{"note-patterns"},
		AI:        true,
	}
	scraper := stubScraper{coffees: []models.Coffee{
		{
			RoasterID:   "sweetblue",
			ID:          "gatomboya-aa",
			URL:         "https://sweetblue.example/products/gatomboya-aa",
			Name:        "Gatomboya AA",
			Description: "Notes of blackcurrant, grapefruit and brown sugar.",
			Country:     "kenia", // raw catalog spelling, remapper fixes it
		},
	}}
	extractor := stubExtractor{details: map[string]models.ExtractedDetails{
		"https://sweetblue.example/products/gatomboya-aa": {
			Country: "Ethiopia", // lower confidence, must lose
			Region:  "Nyeri",
			Process: "washed",
			Notes:   []string{"lime"}, // enhancer already set notes, must lose
		},
	}}

	coffees, err := testPipeline(scraper, extractor).RunRoaster(context.Background(), roaster)
	require.NoError(t, err)
	require.Len(t, coffees, 1)

	got := coffees[0]
	require.Equal(t, []string{"blackcurrant", "grapefruit", "brown sugar"}, got.Notes)
	require.Equal(t, "Kenya", got.Country, "catalog origin survives AI merge and is canonicalized")
	require.Equal(t, "Nyeri", got.Region, "AI fills fields the enhancer left empty")
	require.Equal(t, "Washed", got.Process, "AI values pass through the remapper")
}

func TestRunRoasterIdempotent(t *testing.T) {
	roaster := config.Roaster{
		ID:        "sweetblue",
		Enhancers: []string{"default-country", "note-patterns"},
		// no AI for this roaster
		DefaultCountry: "Colombia",
	}
	scraper := stubScraper{coffees: []models.Coffee{
		{
			RoasterID:   "sweetblue",
			ID:          "la-esperanza",
			URL:         "https://sweetblue.example/products/la-esperanza",
			Name:        "La Esperanza",
			Description: "In the cup, expect notes of blackberry, cocoa and a lingering sweetness.",
		},
	}}
	p := testPipeline(scraper, stubExtractor{})

	first, err := p.RunRoaster(context.Background(), roaster)
	require.NoError(t, err)
	second, err := p.RunRoaster(context.Background(), roaster)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("pipeline is not idempotent (-first +second):\n%s", diff)
	}
	require.Equal(t, []string{"blackberry", "cocoa"}, first[0].Notes)
	require.Equal(t, "Colombia", first[0].Country)
}

func TestAIStageSkippedWhenDisabled(t *testing.T) {
	roaster := config.Roaster{ID: "sweetblue", AI: false}
	scraper := stubScraper{coffees: []models.Coffee{
		{RoasterID: "sweetblue", ID: "x", URL: "https://sweetblue.example/products/x", Name: "X"},
	}}
	extractor := stubExtractor{details: map[string]models.ExtractedDetails{
		"https://sweetblue.example/products/x": {Country: "Peru"},
	}}

	coffees, err := testPipeline(scraper, extractor).RunRoaster(context.Background(), roaster)
	require.NoError(t, err)
	require.Empty(t, coffees[0].Country)
}

func TestExtractionMissIsNotAnError(t *testing.T) {
	roaster := config.Roaster{ID: "sweetblue", AI: true}
	scraper := stubScraper{coffees: []models.Coffee{
		{RoasterID: "sweetblue", ID: "x", URL: "https://sweetblue.example/products/x", Name: "X"},
	}}

	coffees, err := testPipeline(scraper, stubExtractor{}).RunRoaster(context.Background(), roaster)
	require.NoError(t, err)
	require.Len(t, coffees, 1)
	require.Empty(t, coffees[0].Country)
}
