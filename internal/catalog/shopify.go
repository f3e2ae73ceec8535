package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"mspro-labs/bean-atlas/internal/config"
	"mspro-labs/bean-atlas/internal/models"
)

const shopifyPageSize = 250

// Shopify reads the public /products.json listing that Shopify-backed
// storefronts expose.
type Shopify struct {
	client *resty.Client
}

func NewShopify() *Shopify {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetHeader("User-Agent", "bean-atlas/1.0")
	return &Shopify{client: client}
}

type shopifyListing struct {
	Products []shopifyProduct `json:"products"`
}

type shopifyProduct struct {
	Title    string           `json:"title"`
	Handle   string           `json:"handle"`
	BodyHTML string           `json:"body_html"`
	Variants []shopifyVariant `json:"variants"`
}

type shopifyVariant struct {
	Price string `json:"price"`
}

// Products walks the paginated listing. A malformed entry is skipped, it
// never aborts the batch.
func (s *Shopify) Products(ctx context.Context, roaster config.Roaster) ([]models.Coffee, error) {
	base := strings.TrimRight(roaster.BaseURL, "/")

	var out []models.Coffee
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/products.json?limit=%d&page=%d", base, shopifyPageSize, page)
		res, err := s.client.R().
			SetContext(ctx).
			SetResult(&shopifyListing{}).
			Get(url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch catalog page %d for %s: %w", page, roaster.ID, err)
		}
		if res.IsError() {
			return nil, fmt.Errorf("catalog fetch for %s: status %s", roaster.ID, res.Status())
		}

		listing := res.Result().(*shopifyListing)
		if len(listing.Products) == 0 {
			break
		}
		for _, p := range listing.Products {
			coffee, ok := s.mapProduct(roaster, base, p)
			if !ok {
				logger.Printf("Skipping malformed catalog entry for %s (title=%q handle=%q)", roaster.ID, p.Title, p.Handle)
				continue
			}
			out = append(out, coffee)
		}
		if len(listing.Products) < shopifyPageSize {
			break
		}
	}
	return out, nil
}

func (s *Shopify) mapProduct(roaster config.Roaster, base string, p shopifyProduct) (models.Coffee, bool) {
	if p.Handle == "" || p.Title == "" {
		return models.Coffee{}, false
	}
	coffee := models.Coffee{
		RoasterID:   roaster.ID,
		ID:          p.Handle,
		URL:         base + "/products/" + p.Handle,
		Name:        strings.TrimSpace(p.Title),
		Description: htmlText(p.BodyHTML),
		Currency:    roaster.Currency,
	}
	if len(p.Variants) > 0 {
		coffee.Price = parsePrice(p.Variants[0].Price)
	}
	return coffee, true
}

// htmlText flattens storefront rich text into plain prose.
func htmlText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var rePrice = regexp.MustCompile(`[^\d\.]+`)

func parsePrice(priceStr string) float64 {
	val := rePrice.ReplaceAllString(priceStr, "")
	price, _ := strconv.ParseFloat(val, 64)
	return price
}
