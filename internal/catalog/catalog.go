// Package catalog turns a roaster's storefront listing into base Coffee
// records. A scraper never invents field values: anything absent from the
// catalog payload stays unset for later stages to fill.
package catalog

import (
	"context"
	"fmt"
	"log"
	"os"

	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/models"
)

var logger = log.New(os.Stdout, "CATALOG: ", log.LstdFlags|log.Lshortfile)

// Scraper produces the base records for one roaster's listing.
type Scraper interface {
	Products(ctx context.Context, roaster config.Roaster) ([]models.Coffee, error)
}

// ForPlatform returns the scraper for a storefront platform name.
func ForPlatform(name string) (Scraper, error) {
	switch name {
	case "", "shopify":
		return NewShopify(), nil
	}
	return nil, fmt.Errorf("unknown storefront platform %q", name)
}
