package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mspro-labs/bean-atlas/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.UpsertRoaster(models.Roaster{ID: "sweetblue", Name: "Sweet Blue", BaseURL: "https://sweetblue.example"}))
	return s
}

func TestSaveCoffeesUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	coffee := models.Coffee{
		RoasterID: "sweetblue",
		ID:        "gatomboya-aa",
		URL:       "https://sweetblue.example/products/gatomboya-aa",
		Name:      "Gatomboya AA",
		Price:     18.50,
		Country:   "Kenya",
		Notes:     []string{"Blackcurrant", "grapefruit"},
	}

	count, err := s.SaveCoffees(ctx, []models.Coffee{coffee})
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	// Re-running the same batch is an update, not a duplicate.
	coffee.Price = 19.00
	_, err = s.SaveCoffees(ctx, []models.Coffee{coffee})
	require.NoError(t, err)

	stored, err := s.ActiveCoffees("sweetblue")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, 19.00, stored[0].Price)
	require.Equal(t, []string{"Blackcurrant", "grapefruit"}, stored[0].Notes)
}

func TestMarkInactiveSweep(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.SaveCoffees(ctx, []models.Coffee{{
		RoasterID: "sweetblue", ID: "old", URL: "https://sweetblue.example/products/old", Name: "Old Lot",
	}})
	require.NoError(t, err)

	require.NoError(t, s.MarkInactive("sweetblue"))
	stored, err := s.ActiveCoffees("sweetblue")
	require.NoError(t, err)
	require.Empty(t, stored)

	// An upsert re-activates the record.
	_, err = s.SaveCoffees(ctx, []models.Coffee{{
		RoasterID: "sweetblue", ID: "old", URL: "https://sweetblue.example/products/old", Name: "Old Lot",
	}})
	require.NoError(t, err)
	stored, err = s.ActiveCoffees("sweetblue")
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestMergeShippingRates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	_, err := s.MergeShippingRates(ctx, "sweetblue", []models.ShippingRate{
		{CountryCode: "US", Available: true, Price: 8, Currency: "USD", CheckedAt: now},
		{CountryCode: "CA", Available: true, Price: 12, Currency: "USD", CheckedAt: now},
	})
	require.NoError(t, err)

	merged, err := s.MergeShippingRates(ctx, "sweetblue", []models.ShippingRate{
		{CountryCode: "CA", Available: true, Price: 14, Currency: "USD", CheckedAt: now},
		{CountryCode: "DE", Available: false, CheckedAt: now},
	})
	require.NoError(t, err)
	require.Len(t, merged, 3)

	stored, err := s.ShippingRates("sweetblue")
	require.NoError(t, err)
	require.Len(t, stored, 3)

	byCode := make(map[string]models.ShippingRate)
	for _, r := range stored {
		_, dup := byCode[r.CountryCode]
		require.Falsef(t, dup, "duplicate rate for %s", r.CountryCode)
		byCode[r.CountryCode] = r
	}
	require.Equal(t, 8.0, byCode["US"].Price, "untouched entry preserved")
	require.Equal(t, 14.0, byCode["CA"].Price, "new batch replaces same-key entry")
	require.False(t, byCode["DE"].Available)
}

func TestMergeShippingRatesUnknownRoaster(t *testing.T) {
	s := testStore(t)

	_, err := s.MergeShippingRates(context.Background(), "nobody", []models.ShippingRate{
		{CountryCode: "US", Available: true},
	})
	require.ErrorIs(t, err, ErrUnknownRoaster)
}

func TestDistinctNotes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.SaveCoffees(ctx, []models.Coffee{
		{RoasterID: "sweetblue", ID: "a", URL: "https://sweetblue.example/products/a", Name: "A", Notes: []string{"Citrus", "Floral"}},
		{RoasterID: "sweetblue", ID: "b", URL: "https://sweetblue.example/products/b", Name: "B", Notes: []string{"citrus", "Berry"}},
	})
	require.NoError(t, err)

	notes, err := s.DistinctNotes()
	require.NoError(t, err)
	require.Equal(t, []string{"berry", "citrus", "floral"}, notes)

	missing, err := s.MissingNoteEmbeddings()
	require.NoError(t, err)
	require.Len(t, missing, 3)

	require.NoError(t, s.SaveNoteEmbedding("citrus", []byte{1, 2, 3, 4}))
	missing, err = s.MissingNoteEmbeddings()
	require.NoError(t, err)
	require.Equal(t, []string{"berry", "floral"}, missing)

	coffees, err := s.CoffeesWithNote("", "CITRUS")
	require.NoError(t, err)
	require.Len(t, coffees, 2)
}

func TestRoastersListing(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.UpsertRoaster(models.Roaster{ID: "aurora", Name: "Aurora"}))

	roasters, err := s.Roasters()
	require.NoError(t, err)
	require.Len(t, roasters, 2)
	require.Equal(t, "aurora", roasters[0].ID)
}

func TestQueryCache(t *testing.T) {
	s := testStore(t)

	_, err := s.GetCachedQuery("never searched")
	require.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, s.SaveCachedQuery("berry bomb", []byte{1, 2, 3, 4}))
	blob, err := s.GetCachedQuery("berry bomb")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, blob)
}
