// Package shipping checks where a roaster ships and at what cost. Rates
// are roaster-scoped, keyed by destination country code, and merged into
// the store with the shared keyed-merge primitive.
package shipping

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/models"
)

var logger = log.New(os.Stdout, "SHIPPING: ", log.LstdFlags|log.Lshortfile)

// Checker queries a storefront's shipping endpoint per destination.
type Checker struct {
	client *resty.Client
}

func NewChecker() *Checker {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetHeader("User-Agent", "bean-atlas/1.0")
	return &Checker{client: client}
}

type ratesResponse struct {
	ShippingRates []quotedRate `json:"shipping_rates"`
}

type quotedRate struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Check queries one destination country. A storefront that does not serve
// the destination answers 422; that is a valid "not available" result,
// not a fault.
func (c *Checker) Check(ctx context.Context, roaster config.Roaster, countryCode string) (models.ShippingRate, error) {
	rate := models.ShippingRate{
		CountryCode: countryCode,
		Currency:    roaster.Currency,
		CheckedAt:   time.Now().UTC(),
	}

	url := fmt.Sprintf("%s/cart/shipping_rates.json", strings.TrimRight(roaster.BaseURL, "/"))
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("shipping_address[country]", countryCode).
		SetResult(&ratesResponse{}).
		Get(url)
	if err != nil {
		return rate, fmt.Errorf("shipping check %s/%s: %w", roaster.ID, countryCode, err)
	}
	if res.StatusCode() == http.StatusUnprocessableEntity {
		return rate, nil
	}
	if res.IsError() {
		return rate, fmt.Errorf("shipping check %s/%s: status %s", roaster.ID, countryCode, res.Status())
	}

	rates := res.Result().(*ratesResponse).ShippingRates
	if len(rates) == 0 {
		return rate, nil
	}
	rate.Available = true
	rate.Price = cheapest(rates)
	if strings.EqualFold(rate.Currency, "USD") {
		rate.PriceUSD = rate.Price
	}
	return rate, nil
}

func cheapest(rates []quotedRate) float64 {
	best := 0.0
	for i, r := range rates {
		var v float64
		fmt.Sscanf(r.Price, "%f", &v)
		if i == 0 || v < best {
			best = v
		}
	}
	return best
}

// CheckAll fans out over destination countries under a request cap. A
// failed destination is logged and skipped; the batch always returns the
// rates it could determine.
func (c *Checker) CheckAll(ctx context.Context, roaster config.Roaster, countries []string) []models.ShippingRate {
	results := make([]models.ShippingRate, len(countries))
	ok := make([]bool, len(countries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i, code := range countries {
		i, code := i, code
		g.Go(func() error {
			rate, err := c.Check(gctx, roaster, code)
			if err != nil {
				logger.Printf("Skipping %s for %s: %v", code, roaster.ID, err)
				return nil
			}
			results[i], ok[i] = rate, true
			return nil
		})
	}
	g.Wait()

	var out []models.ShippingRate
	for i, keep := range ok {
		if keep {
			out = append(out, results[i])
		}
	}
	return out
}
