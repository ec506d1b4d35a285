/*
Package sqlite provides a SQLite-backed snapshot of the dashboard dataset.

PURPOSE:
  Parsing the CSV exports is the slow part of a cold start. An import copies
  the parsed tables into SQLite so later processes can load them without
  the files. The store also keeps an audit trail of imports.

  The store implements dataset.Source, so a Cache can be backed by either
  the CSV files or a previous import.

KEY TABLES:
  products:  Product listings (date_id, product_id, category_id, manufacturer_id)
  sales:     Point-of-sale rows (same columns plus store_id)
  imports:   One row per import run with counts, status and timings

REPLACE SEMANTICS:
  ImportTables replaces both tables in a single transaction. A failed
  import leaves the previous snapshot untouched and is recorded as failed.

CONCURRENCY:
  Uses sync.RWMutex around database access. Readers do not block each
  other.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so loads can proceed while
  an import is being written.

USAGE:
  store, err := sqlite.New("./data/dashboard.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  run, err := store.ImportTables(ctx, tables, "csv")

SEE ALSO:
  - dataset/source.go: Source interface
  - cmd/server/import.go: CLI import command
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/retail-dashboard/dataset"
)

// Import run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoSnapshot is returned by Load before any successful import.
var ErrNoSnapshot = errors.New("no imported snapshot")

// Store persists imported tables in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		date_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		category_id TEXT NOT NULL,
		manufacturer_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sales (
		date_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		category_id TEXT NOT NULL,
		manufacturer_id TEXT NOT NULL,
		store_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_category
		ON sales(category_id);
	CREATE INDEX IF NOT EXISTS idx_sales_manufacturer
		ON sales(manufacturer_id);

	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		products INTEGER NOT NULL DEFAULT 0,
		sales INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_imports_started
		ON imports(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// IMPORTS
// =============================================================================

// ImportRun records one import.
type ImportRun struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Products    int        `json:"products"`
	Sales       int        `json:"sales"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ImportTables replaces the stored snapshot with t and records the run.
func (s *Store) ImportTables(ctx context.Context, t *dataset.Tables, source string) (*ImportRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &ImportRun{
		ID:        uuid.NewString(),
		Source:    source,
		Products:  len(t.Products),
		Sales:     len(t.Sales),
		StartedAt: time.Now().UTC(),
	}

	err := s.replaceTables(ctx, t)
	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Status = StatusCompleted
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	}

	if saveErr := s.saveRun(ctx, run); saveErr != nil {
		return nil, errors.Join(err, fmt.Errorf("failed to record import: %w", saveErr))
	}
	return run, err
}

func (s *Store) replaceTables(ctx context.Context, t *dataset.Tables) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"products", "sales"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	prodStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (date_id, product_id, category_id, manufacturer_id)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer prodStmt.Close()
	for _, p := range t.Products {
		if _, err := prodStmt.ExecContext(ctx, p.DateID, string(p.Product), string(p.Category), string(p.Manufacturer)); err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
	}

	saleStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales (date_id, product_id, category_id, manufacturer_id, store_id)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer saleStmt.Close()
	for _, sl := range t.Sales {
		if _, err := saleStmt.ExecContext(ctx, sl.DateID, string(sl.Product), string(sl.Category), string(sl.Manufacturer), string(sl.Store)); err != nil {
			return fmt.Errorf("failed to insert sale: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) saveRun(ctx context.Context, r *ImportRun) error {
	var completedAt *string
	if r.CompletedAt != nil {
		c := r.CompletedAt.Format(timeLayout)
		completedAt = &c
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO imports (id, source, products, sales, status, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Source, r.Products, r.Sales, r.Status, nullString(r.Error),
		r.StartedAt.Format(timeLayout), completedAt)
	return err
}

// ListImports returns the most recent import runs, newest first. limit <= 0
// returns every run.
func (s *Store) ListImports(ctx context.Context, limit int) ([]ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, source, products, sales, status, error, started_at, completed_at
		FROM imports
		ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var r ImportRun
		var errText, completedAt sql.NullString
		var startedAt string
		if err := rows.Scan(&r.ID, &r.Source, &r.Products, &r.Sales, &r.Status, &errText, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		r.Error = errText.String
		r.StartedAt, _ = time.Parse(timeLayout, startedAt)
		if completedAt.Valid {
			t, _ := time.Parse(timeLayout, completedAt.String)
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// lastCompleted returns the time of the latest successful import.
func (s *Store) lastCompleted(ctx context.Context) (time.Time, bool, error) {
	var completedAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT completed_at FROM imports
		WHERE status = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, StatusCompleted).Scan(&completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, _ := time.Parse(timeLayout, completedAt.String)
	return t, true, nil
}

// =============================================================================
// SOURCE (dataset.Source interface)
// =============================================================================

// Load reads the stored snapshot back into Tables. Dates are re-coerced
// from the stored dateID exactly as the CSV reader does.
func (s *Store) Load(ctx context.Context) (*dataset.Tables, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loadedAt, ok, err := s.lastCompleted(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSnapshot
	}

	t := &dataset.Tables{Source: "sqlite", LoadedAt: loadedAt}
	if t.Products, err = s.loadProducts(ctx); err != nil {
		return nil, err
	}
	if t.Sales, err = s.loadSales(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// loadProducts and loadSales close their rows before returning; an
// in-memory store has a single connection.
func (s *Store) loadProducts(ctx context.Context) ([]dataset.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date_id, product_id, category_id, manufacturer_id FROM products ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dataset.Product
	for rows.Next() {
		var dateID, prod, cat, fab string
		if err := rows.Scan(&dateID, &prod, &cat, &fab); err != nil {
			return nil, err
		}
		out = append(out, dataset.NewProduct(dateID, prod, cat, fab))
	}
	return out, rows.Err()
}

func (s *Store) loadSales(ctx context.Context) ([]dataset.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date_id, product_id, category_id, manufacturer_id, store_id FROM sales ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dataset.Sale
	for rows.Next() {
		var dateID, prod, cat, fab, store string
		if err := rows.Scan(&dateID, &prod, &cat, &fab, &store); err != nil {
			return nil, err
		}
		out = append(out, dataset.NewSale(dateID, prod, cat, fab, store))
	}
	return out, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"products", "sales", "imports"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
