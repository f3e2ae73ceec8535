// Package store is the storage collaborator. It persists finalized
// Coffee records, roaster identities, shipping rates and note vectors in
// SQLite. Merges here are additive: a run never deletes records, it only
// upserts and flips activity flags.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only

	"mspro-labs/bean-atlas/internal/merge"
	"mspro-labs/bean-atlas/internal/models"
)

// ErrUnknownRoaster is returned when a write targets a roaster identity
// that was never registered. This signals a configuration error and is
// never absorbed silently.
var ErrUnknownRoaster = errors.New("store: unknown roaster")

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Connect opens the database and ensures the schema exists. WAL mode and
// a busy timeout prevent "database locked" errors during concurrent runs.
func Connect(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	roasterTable := `
	CREATE TABLE IF NOT EXISTS roasters (
	  id TEXT PRIMARY KEY,
	  name TEXT,
	  base_url TEXT
	);
	`
	if _, err := db.Exec(roasterTable); err != nil {
		return err
	}

	coffeeTable := `
	CREATE TABLE IF NOT EXISTS coffees (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  roaster_id TEXT NOT NULL REFERENCES roasters(id),
	  coffee_id TEXT NOT NULL,
	  url TEXT UNIQUE NOT NULL,
	  name TEXT,
	  description TEXT,
	  price REAL,
	  currency TEXT,
	  country TEXT,
	  region TEXT,
	  producer TEXT,
	  process TEXT,
	  protocol TEXT,
	  variety TEXT,
	  notes TEXT, -- JSON array, first-seen order preserved
	  first_scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  is_active INTEGER DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_coffees_url ON coffees(url);
	CREATE INDEX IF NOT EXISTS idx_coffees_roaster ON coffees(roaster_id, is_active);
	`
	if _, err := db.Exec(coffeeTable); err != nil {
		return err
	}

	ratesTable := `
	CREATE TABLE IF NOT EXISTS shipping_rates (
	  roaster_id TEXT NOT NULL REFERENCES roasters(id),
	  country_code TEXT NOT NULL,
	  available INTEGER NOT NULL,
	  price REAL,
	  price_usd REAL,
	  currency TEXT,
	  checked_at TIMESTAMP NOT NULL,
	  UNIQUE(roaster_id, country_code)
	);
	`
	if _, err := db.Exec(ratesTable); err != nil {
		return err
	}

	embeddingTables := `
	CREATE TABLE IF NOT EXISTS note_embeddings (
	  note TEXT PRIMARY KEY,
	  embedding BLOB,
	  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS search_history (
	  query_text TEXT PRIMARY KEY,
	  embedding BLOB,
	  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(embeddingTables); err != nil {
		return err
	}

	return nil
}

// UpsertRoaster registers or refreshes a roaster identity.
func (s *Store) UpsertRoaster(r models.Roaster) error {
	_, err := s.db.Exec(`
	INSERT INTO roasters (id, name, base_url) VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name, base_url = excluded.base_url;
	`, r.ID, r.Name, r.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to upsert roaster %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) roasterExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM roasters WHERE id = ?", id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkInactive flags a roaster's coffees inactive at the start of a run;
// everything the run upserts is re-activated, so delisted products age
// out without being deleted.
func (s *Store) MarkInactive(roasterID string) error {
	_, err := s.db.Exec(`UPDATE coffees SET is_active = 0 WHERE roaster_id = ? AND is_active = 1;`, roasterID)
	if err != nil {
		return fmt.Errorf("failed to mark coffees inactive for %s: %w", roasterID, err)
	}
	return nil
}

// SaveCoffees performs a batch UPSERT of finalized records, keyed by URL.
func (s *Store) SaveCoffees(ctx context.Context, coffees []models.Coffee) (int64, error) {
	upsertSQL := `
	INSERT INTO coffees (
	  roaster_id, coffee_id, url, name, description, price, currency,
	  country, region, producer, process, protocol, variety, notes,
	  last_seen_at, is_active
	) VALUES (
	  ?, ?, ?, ?, ?, ?, ?,
	  ?, ?, ?, ?, ?, ?, ?,
	  CURRENT_TIMESTAMP, 1
	) ON CONFLICT(url) DO UPDATE SET
	  name = excluded.name,
	  description = excluded.description,
	  price = excluded.price,
	  currency = excluded.currency,
	  country = excluded.country,
	  region = excluded.region,
	  producer = excluded.producer,
	  process = excluded.process,
	  protocol = excluded.protocol,
	  variety = excluded.variety,
	  notes = excluded.notes,
	  last_seen_at = CURRENT_TIMESTAMP,
	  is_active = 1;
	`

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	var totalAffected int64
	for _, c := range coffees {
		notes, err := json.Marshal(c.Notes)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to encode notes for %s: %w", c.URL, err)
		}
		res, err := stmt.ExecContext(ctx,
			c.RoasterID,
			c.ID,
			c.URL,
			c.Name,
			nullString(c.Description),
			sql.NullFloat64{Float64: c.Price, Valid: c.Price > 0},
			nullString(c.Currency),
			nullString(c.Country),
			nullString(c.Region),
			nullString(c.Producer),
			nullString(c.Process),
			nullString(c.Protocol),
			nullString(c.Variety),
			string(notes),
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to upsert %s: %w", c.URL, err)
		}
		rows, _ := res.RowsAffected()
		totalAffected += rows
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return totalAffected, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// ActiveCoffees returns a roaster's currently listed records.
func (s *Store) ActiveCoffees(roasterID string) ([]models.Coffee, error) {
	rows, err := s.db.Query(`
		SELECT roaster_id, coffee_id, url, name,
		       COALESCE(description, ''), COALESCE(price, 0), COALESCE(currency, ''),
		       COALESCE(country, ''), COALESCE(region, ''), COALESCE(producer, ''),
		       COALESCE(process, ''), COALESCE(protocol, ''), COALESCE(variety, ''),
		       COALESCE(notes, '[]')
		FROM coffees
		WHERE roaster_id = ? AND is_active = 1
		ORDER BY id
	`, roasterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coffees []models.Coffee
	for rows.Next() {
		var c models.Coffee
		var notes string
		err := rows.Scan(&c.RoasterID, &c.ID, &c.URL, &c.Name,
			&c.Description, &c.Price, &c.Currency,
			&c.Country, &c.Region, &c.Producer,
			&c.Process, &c.Protocol, &c.Variety, &notes)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(notes), &c.Notes); err != nil {
			return nil, fmt.Errorf("corrupt notes for %s: %w", c.URL, err)
		}
		coffees = append(coffees, c)
	}
	return coffees, rows.Err()
}

// MergeShippingRates merges a batch of rates into the roaster's existing
// collection, keyed by country code. New entries replace same-key rows,
// untouched rows survive. An unknown roaster id fails loudly.
func (s *Store) MergeShippingRates(ctx context.Context, roasterID string, batch []models.ShippingRate) ([]models.ShippingRate, error) {
	exists, err := s.roasterExists(ctx, roasterID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoaster, roasterID)
	}

	existing, err := s.ShippingRates(roasterID)
	if err != nil {
		return nil, err
	}
	merged := merge.Keyed(existing, batch, func(r models.ShippingRate) string { return r.CountryCode })

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM shipping_rates WHERE roaster_id = ?", roasterID); err != nil {
		tx.Rollback()
		return nil, err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shipping_rates (roaster_id, country_code, available, price, price_usd, currency, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	defer stmt.Close()
	for _, r := range merged {
		_, err := stmt.ExecContext(ctx, roasterID, r.CountryCode, r.Available,
			sql.NullFloat64{Float64: r.Price, Valid: r.Price > 0},
			sql.NullFloat64{Float64: r.PriceUSD, Valid: r.PriceUSD > 0},
			nullString(r.Currency), r.CheckedAt)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to save rate %s/%s: %w", roasterID, r.CountryCode, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return merged, nil
}

// ShippingRates returns the stored rates for one roaster in insertion order.
func (s *Store) ShippingRates(roasterID string) ([]models.ShippingRate, error) {
	rows, err := s.db.Query(`
		SELECT country_code, available, COALESCE(price, 0), COALESCE(price_usd, 0), COALESCE(currency, ''), checked_at
		FROM shipping_rates WHERE roaster_id = ? ORDER BY rowid
	`, roasterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []models.ShippingRate
	for rows.Next() {
		var r models.ShippingRate
		if err := rows.Scan(&r.CountryCode, &r.Available, &r.Price, &r.PriceUSD, &r.Currency, &r.CheckedAt); err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}

// --- Note embedding helpers ---

// DistinctNotes returns every distinct lowercased tasting note across
// active coffees, sorted.
func (s *Store) DistinctNotes() ([]string, error) {
	rows, err := s.db.Query(`SELECT COALESCE(notes, '[]') FROM coffees WHERE is_active = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var notes []string
		if err := json.Unmarshal([]byte(raw), &notes); err != nil {
			continue // tolerate a bad row rather than failing the job
		}
		for _, n := range notes {
			if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
				set[n] = struct{}{}
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// MissingNoteEmbeddings returns distinct notes that have no stored vector yet.
func (s *Store) MissingNoteEmbeddings() ([]string, error) {
	notes, err := s.DistinctNotes()
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, n := range notes {
		var exists int
		err := s.db.QueryRow("SELECT COUNT(1) FROM note_embeddings WHERE note = ?", n).Scan(&exists)
		if err != nil {
			return nil, err
		}
		if exists == 0 {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

// SaveNoteEmbedding stores the vector blob for one note.
func (s *Store) SaveNoteEmbedding(note string, embedding []byte) error {
	_, err := s.db.Exec(`
	INSERT INTO note_embeddings (note, embedding) VALUES (?, ?)
	ON CONFLICT(note) DO UPDATE SET embedding = excluded.embedding;
	`, strings.ToLower(strings.TrimSpace(note)), embedding)
	return err
}

// NoteVector pairs a note with its stored embedding.
type NoteVector struct {
	Note   string
	Vector []byte
}

// NoteVectors returns every embedded note.
func (s *Store) NoteVectors() ([]NoteVector, error) {
	rows, err := s.db.Query(`SELECT note, embedding FROM note_embeddings WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NoteVector
	for rows.Next() {
		var nv NoteVector
		if err := rows.Scan(&nv.Note, &nv.Vector); err != nil {
			return nil, err
		}
		out = append(out, nv)
	}
	return out, rows.Err()
}

// CoffeesWithNote returns active coffees carrying the given tasting note.
func (s *Store) CoffeesWithNote(roasterID, note string) ([]models.Coffee, error) {
	coffees, err := s.activeCoffeesAny(roasterID)
	if err != nil {
		return nil, err
	}
	note = strings.ToLower(strings.TrimSpace(note))
	var out []models.Coffee
	for _, c := range coffees {
		for _, n := range c.Notes {
			if strings.ToLower(n) == note {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (s *Store) activeCoffeesAny(roasterID string) ([]models.Coffee, error) {
	if roasterID != "" {
		return s.ActiveCoffees(roasterID)
	}
	roasters, err := s.Roasters()
	if err != nil {
		return nil, err
	}
	var out []models.Coffee
	for _, r := range roasters {
		coffees, err := s.ActiveCoffees(r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, coffees...)
	}
	return out, nil
}

// Roasters lists every registered roaster.
func (s *Store) Roasters() ([]models.Roaster, error) {
	rows, err := s.db.Query(`SELECT id, COALESCE(name, ''), COALESCE(base_url, '') FROM roasters ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Roaster
	for rows.Next() {
		var r models.Roaster
		if err := rows.Scan(&r.ID, &r.Name, &r.BaseURL); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Query cache for semantic search ---

// GetCachedQuery tries to find a previously searched query vector.
func (s *Store) GetCachedQuery(text string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow("SELECT embedding FROM search_history WHERE query_text = ?", text).Scan(&blob)
	return blob, err
}

// SaveCachedQuery saves a new query and its vector to the history table.
func (s *Store) SaveCachedQuery(text string, blob []byte) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO search_history (query_text, embedding) VALUES (?, ?)", text, blob)
	return err
}
