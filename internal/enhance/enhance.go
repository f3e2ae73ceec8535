// Package enhance holds the per-roaster detail strategies. A strategy
// fills fields on a record using roaster-specific knowledge; it must be
// idempotent and must never overwrite a field that already has a value.
package enhance

import (
	"context"
	"log"
	"os"

	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/fetch"
	"mspro-labs/bean-atlas/internal/models"
)

var logger = log.New(os.Stdout, "ENHANCE: ", log.LstdFlags|log.Lshortfile)

// Strategy is the single capability every enhancer implements.
type Strategy interface {
	Enhance(ctx context.Context, c *models.Coffee) error
}

// Builder constructs a strategy bound to one roaster's configuration.
type Builder func(roaster config.Roaster, fetcher fetch.Fetcher) Strategy

// Registry maps strategy names to builders. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns a registry with the built-in strategies registered.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	r.Register("default-country", func(roaster config.Roaster, _ fetch.Fetcher) Strategy {
		return DefaultCountry{Country: roaster.DefaultCountry}
	})
	r.Register("note-patterns", func(config.Roaster, fetch.Fetcher) Strategy {
		return NotePatterns{}
	})
	r.Register("detail-page", func(_ config.Roaster, fetcher fetch.Fetcher) Strategy {
		return DetailPage{Fetcher: fetcher}
	})
	return r
}

func (r *Registry) Register(name string, b Builder) {
	r.builders[name] = b
}

// For resolves a roaster's configured strategy names. Unknown names are
// logged and skipped; a roaster with none configured skips the stage.
func (r *Registry) For(roaster config.Roaster, fetcher fetch.Fetcher) []Strategy {
	var strategies []Strategy
	for _, name := range roaster.Enhancers {
		b, ok := r.builders[name]
		if !ok {
			logger.Printf("Roaster %s references unknown strategy %q, skipping", roaster.ID, name)
			continue
		}
		strategies = append(strategies, b(roaster, fetcher))
	}
	return strategies
}

// Apply runs the strategies against one record in order. A failing or
// panicking strategy is absorbed: the record simply proceeds unenhanced
// to later stages.
func Apply(ctx context.Context, strategies []Strategy, c *models.Coffee) {
	for _, s := range strategies {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Printf("Enhancer panic on %s: %v", c.URL, rec)
				}
			}()
			if err := s.Enhance(ctx, c); err != nil {
				logger.Printf("Enhancer error on %s: %v", c.URL, err)
			}
		}()
	}
}
