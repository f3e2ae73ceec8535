// Package pipeline runs the per-roaster extraction pipeline. Stages for a
// single record are strictly sequential (catalog → enhancer → AI merge →
// remap) because each stage's precedence rule depends on the previous one
// having committed its writes; across records there is no ordering, only
// a bound on in-flight work.
package pipeline

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"mspro-labs/bean-atlas/internal/ai"
	"mspro-labs/bean-atlas/internal/canonical"
	"mspro-labs/bean-atlas/internal/catalog"
	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/enhance"
	"mspro-labs/bean-atlas/internal/fetch"
	"mspro-labs/bean-atlas/internal/merge"
	"mspro-labs/bean-atlas/internal/models"
)

var logger = log.New(os.Stdout, "PIPELINE: ", log.LstdFlags|log.Lshortfile)

// Extractor is the AI fallback boundary: a structured read of raw markup
// or an explicit miss (ai.ErrNoExtraction).
type Extractor interface {
	Extract(ctx context.Context, url, html string) (*models.ExtractedDetails, error)
}

// Pipeline holds the collaborators for a run. Scrapers is swappable for
// tests; it defaults to the platform registry.
type Pipeline struct {
	Registry     *enhance.Registry
	Fetcher      fetch.Fetcher
	Extractor    Extractor // nil disables the AI stage entirely
	Scrapers     func(platform string) (catalog.Scraper, error)
	Limit        int
	StageTimeout time.Duration
}

func New(registry *enhance.Registry, fetcher fetch.Fetcher, extractor Extractor, limit int) *Pipeline {
	if limit <= 0 {
		limit = 4
	}
	return &Pipeline{
		Registry:     registry,
		Fetcher:      fetcher,
		Extractor:    extractor,
		Scrapers:     catalog.ForPlatform,
		Limit:        limit,
		StageTimeout: 60 * time.Second,
	}
}

// RunRoaster produces finalized records for one roaster. A failed catalog
// fetch fails the roaster; everything downstream degrades per record to
// "fewer populated fields".
func (p *Pipeline) RunRoaster(ctx context.Context, roaster config.Roaster) ([]models.Coffee, error) {
	scraper, err := p.Scrapers(roaster.Platform)
	if err != nil {
		return nil, err
	}
	coffees, err := scraper.Products(ctx, roaster)
	if err != nil {
		return nil, err
	}
	logger.Printf("%s: %d catalog records", roaster.ID, len(coffees))

	strategies := p.Registry.For(roaster, p.Fetcher)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Limit)
	for i := range coffees {
		coffee := &coffees[i]
		g.Go(func() error {
			p.process(gctx, roaster, strategies, coffee)
			return nil // per-record failures never abort the batch
		})
	}
	g.Wait()

	return coffees, nil
}

func (p *Pipeline) process(ctx context.Context, roaster config.Roaster, strategies []enhance.Strategy, c *models.Coffee) {
	stageCtx, cancel := context.WithTimeout(ctx, p.StageTimeout)
	enhance.Apply(stageCtx, strategies, c)
	cancel()

	if p.Extractor != nil && roaster.AI && !c.Complete() {
		p.aiFill(ctx, c)
	}

	canonical.Remap(c)
}

// aiFill fetches the page and merges the model's extraction with lowest
// precedence. Any failure here leaves the record as the enhancer left it.
func (p *Pipeline) aiFill(ctx context.Context, c *models.Coffee) {
	ctx, cancel := context.WithTimeout(ctx, p.StageTimeout)
	defer cancel()

	html, err := p.Fetcher.Page(ctx, c.URL)
	if err != nil {
		logger.Printf("Page fetch failed for %s: %v", c.URL, err)
		return
	}
	details, err := p.Extractor.Extract(ctx, c.URL, html)
	if errors.Is(err, ai.ErrNoExtraction) {
		return
	}
	if err != nil {
		logger.Printf("Extraction failed for %s: %v", c.URL, err)
		return
	}
	if err := merge.FillMissing(c, *details); err != nil {
		logger.Printf("Merge failed for %s: %v", c.URL, err)
	}
}
