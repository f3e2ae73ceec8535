package models

import "time"

// Coffee is the canonical record produced by the pipeline for one product.
// It is created by a catalog scraper with the minimal identity fields and
// filled in stage by stage (enhancer, AI merge, remapper) before it is
// handed to the store.
type Coffee struct {
	RoasterID   string
	ID          string
	URL         string
	Name        string
	Description string
	Price       float64
	Currency    string

	// Provenance-sensitive fields: once a stage has populated one of
	// these, no later stage may overwrite it.
	Country  string
	Region   string
	Producer string
	Process  string
	Protocol string
	Variety  string
	Notes    []string
}

// Complete reports whether every provenance-sensitive field is populated.
func (c *Coffee) Complete() bool {
	return c.Country != "" && c.Region != "" && c.Producer != "" &&
		c.Process != "" && c.Protocol != "" && c.Variety != "" &&
		len(c.Notes) > 0
}

// ExtractedDetails is the AI extractor's best-effort read of a product
// page. It is never persisted on its own, only merged into a Coffee with
// lowest precedence.
type ExtractedDetails struct {
	Country  string   `json:"country,omitempty"`
	Region   string   `json:"region,omitempty"`
	Producer string   `json:"producer,omitempty"`
	Process  string   `json:"process,omitempty"`
	Protocol string   `json:"protocol,omitempty"`
	Variety  string   `json:"variety,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

// Empty reports whether the extraction carries no values at all.
func (d ExtractedDetails) Empty() bool {
	return d.Country == "" && d.Region == "" && d.Producer == "" &&
		d.Process == "" && d.Protocol == "" && d.Variety == "" &&
		len(d.Notes) == 0
}

// Roaster is the stored identity of one source.
type Roaster struct {
	ID      string
	Name    string
	BaseURL string
}

// ShippingRate records whether (and at what cost) a roaster ships to one
// destination country. Rates are keyed by CountryCode within a roaster;
// a merge never produces two entries for the same code.
type ShippingRate struct {
	CountryCode string
	Available   bool
	Price       float64
	PriceUSD    float64
	Currency    string
	CheckedAt   time.Time
}
