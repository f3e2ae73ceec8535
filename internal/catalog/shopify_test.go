package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"mspro-labs/bean-atlas/internal/config"
)

const listingJSON = `{
  "products": [
    {
      "title": "Gatomboya AA",
      "handle": "gatomboya-aa",
      "body_html": "<p>Washed Kenyan lot with notes of blackcurrant, grapefruit and brown sugar.</p>",
      "variants": [{"price": "18.50"}]
    },
    {
      "title": "",
      "handle": "mystery-coffee",
      "variants": [{"price": "12.00"}]
    },
    {
      "title": "La Esperanza",
      "handle": "la-esperanza",
      "body_html": "<div><strong>Huila, Colombia.</strong> Sweet and balanced.</div>",
      "variants": []
    }
  ]
}`

func TestShopifyProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, `{"products": []}`)
			return
		}
		fmt.Fprint(w, listingJSON)
	}))
	defer server.Close()

	roaster := config.Roaster{ID: "sweetblue", BaseURL: server.URL, Currency: "USD"}

	coffees, err := NewShopify().Products(context.Background(), roaster)
	if err != nil {
		t.Fatalf("Products failed: %v", err)
	}

	// The entry with no title is malformed and must be skipped, not fail the run.
	if len(coffees) != 2 {
		t.Fatalf("Expected 2 coffees, got %d", len(coffees))
	}

	first := coffees[0]
	if first.ID != "gatomboya-aa" {
		t.Errorf("ID wrong: got %q", first.ID)
	}
	if first.URL != server.URL+"/products/gatomboya-aa" {
		t.Errorf("URL wrong: got %q", first.URL)
	}
	if first.Price != 18.50 {
		t.Errorf("Price wrong: got %f", first.Price)
	}
	if first.Description != "Washed Kenyan lot with notes of blackcurrant, grapefruit and brown sugar." {
		t.Errorf("Description wrong: got %q", first.Description)
	}
	// Fields the catalog does not carry must stay unset, never placeholders.
	if first.Country != "" || first.Process != "" || len(first.Notes) != 0 {
		t.Errorf("Catalog scraper invented values: %+v", first)
	}

	second := coffees[1]
	if second.Price != 0 {
		t.Errorf("Expected zero price for variant-less product, got %f", second.Price)
	}
}

func TestShopifyProductsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewShopify().Products(context.Background(), config.Roaster{ID: "down", BaseURL: server.URL})
	if err == nil {
		t.Fatal("expected an error for a 503 catalog")
	}
}

func TestForPlatform(t *testing.T) {
	if _, err := ForPlatform(""); err != nil {
		t.Errorf("empty platform should default to shopify: %v", err)
	}
	if _, err := ForPlatform("squarespace"); err == nil {
		t.Error("expected an error for an unknown platform")
	}
}

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
	}{
		{"18.50", 18.50},
		{"$19.99", 19.99},
		{"Price $100", 100.0},
		{"", 0.0},
	}

	for _, tc := range testCases {
		if got := parsePrice(tc.input); got != tc.expected {
			t.Errorf("parsePrice(%q): expected %f, got %f", tc.input, tc.expected, got)
		}
	}
}
