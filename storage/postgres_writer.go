package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"rental-aggregator/models"
	"rental-aggregator/services"
	"rental-aggregator/utils"
)

// listingColumns is the insert column order; rowArgs must match it.
var listingColumns = []string{
	"dedup_key", "run_id", "position",
	"date_found", "source", "title", "url", "price", "address", "city",
	"neighborhood", "building", "unit", "beds", "baths", "sqft", "fee_month",
	"parking", "amenities", "floor", "total_floors", "exposure", "images",
	"description", "score", "notes",
}

// PostgresWriter upserts normalized listings into PostgreSQL, keyed by the
// same dedup key the aggregator uses. It also serves the latest run back as
// a snapshot.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter. The initial ping is retried with
// retry so a database that is still starting up does not fail the run.
func NewPostgresWriter(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listing_runs (
			run_id        UUID        PRIMARY KEY,
			generated_at  TIMESTAMPTZ NOT NULL,
			seed_fallback BOOLEAN     NOT NULL DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS listings (
			id           SERIAL PRIMARY KEY,
			dedup_key    TEXT        UNIQUE NOT NULL,
			run_id       UUID        NOT NULL,
			position     INTEGER     NOT NULL,
			date_found   TEXT        NOT NULL DEFAULT '',
			source       VARCHAR(50) NOT NULL,
			title        TEXT        NOT NULL DEFAULT '',
			url          TEXT        NOT NULL DEFAULT '',
			price        INTEGER,
			address      TEXT        NOT NULL DEFAULT '',
			city         TEXT        NOT NULL DEFAULT '',
			neighborhood TEXT        NOT NULL DEFAULT '',
			building     TEXT        NOT NULL DEFAULT '',
			unit         TEXT        NOT NULL DEFAULT '',
			beds         TEXT        NOT NULL DEFAULT '',
			baths        TEXT        NOT NULL DEFAULT '',
			sqft         INTEGER,
			fee_month    INTEGER,
			parking      BOOLEAN     NOT NULL DEFAULT FALSE,
			amenities    TEXT[]      NOT NULL DEFAULT '{}',
			floor        INTEGER,
			total_floors INTEGER,
			exposure     TEXT        NOT NULL DEFAULT '',
			images       TEXT[]      NOT NULL DEFAULT '{}',
			description  TEXT        NOT NULL DEFAULT '',
			score        DOUBLE PRECISION,
			notes        TEXT        NOT NULL DEFAULT '',
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_run    ON listings(run_id, position);
		CREATE INDEX IF NOT EXISTS idx_listings_price  ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_city   ON listings(city);
		CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(source);
	`)
	return err
}

// Write records the run and upserts its listings in one transaction.
func (pw *PostgresWriter) Write(ctx context.Context, ds *models.Dataset) error {
	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO listing_runs (run_id, generated_at, seed_fallback) VALUES ($1, $2, $3)
		 ON CONFLICT (run_id) DO NOTHING`,
		ds.RunID, ds.GeneratedAt, ds.SeedFallback,
	); err != nil {
		return fmt.Errorf("postgres: insert run: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(ds.Listings); i += batchSize {
		end := i + batchSize
		if end > len(ds.Listings) {
			end = len(ds.Listings)
		}
		if err := upsertBatch(ctx, tx, ds.RunID, i, ds.Listings[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func upsertBatch(ctx context.Context, tx *sql.Tx, runID string, offset int, batch []models.Listing) error {
	args := make([]interface{}, 0, len(batch)*len(listingColumns))
	for idx, l := range batch {
		args = append(args, rowArgs(runID, offset+idx, l)...)
	}

	if _, err := tx.ExecContext(ctx, upsertQuery(len(batch)), args...); err != nil {
		return fmt.Errorf("postgres: upsert batch at %d: %w", offset, err)
	}
	return nil
}

func rowArgs(runID string, position int, l models.Listing) []interface{} {
	return []interface{}{
		l.DedupKey(), runID, position,
		l.DateFound, l.Source, l.Title, l.URL, l.Price, l.Address, l.City,
		l.Neighborhood, l.Building, l.Unit, l.Beds, l.Baths, l.Sqft, l.FeeMonth,
		l.Parking, pq.Array(l.Amenities), l.Floor, l.TotalFloors, l.Exposure, pq.Array(l.Images),
		l.Description, l.Score, l.Notes,
	}
}

// upsertQuery builds a multi-row insert for rows listings that overwrites
// every column of an existing row with the same dedup key.
func upsertQuery(rows int) string {
	cols := len(listingColumns)
	valueStrings := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		ph := make([]string, cols)
		for c := range ph {
			ph[c] = fmt.Sprintf("$%d", r*cols+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
	}

	updates := make([]string, 0, cols)
	for _, c := range listingColumns[1:] {
		updates = append(updates, c+" = EXCLUDED."+c)
	}
	updates = append(updates, "updated_at = NOW()")

	return fmt.Sprintf("INSERT INTO listings (%s) VALUES %s ON CONFLICT (dedup_key) DO UPDATE SET %s",
		strings.Join(listingColumns, ", "),
		strings.Join(valueStrings, ","),
		strings.Join(updates, ", "))
}

// Save implements SnapshotStore.
func (pw *PostgresWriter) Save(ctx context.Context, ds *models.Dataset) error {
	return pw.Write(ctx, ds)
}

// Latest rebuilds the most recent run from the listings it last touched.
func (pw *PostgresWriter) Latest(ctx context.Context) (*models.Dataset, error) {
	ds := &models.Dataset{}
	err := pw.db.QueryRowContext(ctx,
		`SELECT run_id, generated_at, seed_fallback FROM listing_runs ORDER BY generated_at DESC LIMIT 1`,
	).Scan(&ds.RunID, &ds.GeneratedAt, &ds.SeedFallback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: latest run: %w", err)
	}

	listings, err := pw.FetchRun(ctx, ds.RunID)
	if err != nil {
		return nil, err
	}
	ds.GeneratedAt = ds.GeneratedAt.UTC()
	ds.Listings = listings
	ds.Summary = services.Summarize(listings)
	return ds, nil
}

// FetchRun retrieves the listings last written by runID, in run order.
func (pw *PostgresWriter) FetchRun(ctx context.Context, runID string) ([]models.Listing, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT date_found, source, title, url, price, address, city, neighborhood,
		       building, unit, beds, baths, sqft, fee_month, parking, amenities,
		       floor, total_floors, exposure, images, description, score, notes
		FROM listings
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch run: %w", err)
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		var (
			l                                    models.Listing
			price, sqft, fee, floor, totalFloors sql.NullInt64
			score                                sql.NullFloat64
		)
		if err := rows.Scan(
			&l.DateFound, &l.Source, &l.Title, &l.URL, &price, &l.Address, &l.City, &l.Neighborhood,
			&l.Building, &l.Unit, &l.Beds, &l.Baths, &sqft, &fee, &l.Parking, pq.Array(&l.Amenities),
			&floor, &totalFloors, &l.Exposure, pq.Array(&l.Images), &l.Description, &score, &l.Notes,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		l.Price, l.Sqft, l.FeeMonth = intPtr(price), intPtr(sqft), intPtr(fee)
		l.Floor, l.TotalFloors = intPtr(floor), intPtr(totalFloors)
		if score.Valid {
			l.Score = &score.Float64
		}
		if l.Amenities == nil {
			l.Amenities = []string{}
		}
		if l.Images == nil {
			l.Images = []string{}
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
