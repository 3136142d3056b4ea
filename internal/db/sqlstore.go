package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// SQLStore keeps summaries in SQLite or a libSQL (Turso) database.
type SQLStore struct {
	db *sql.DB
}

// NewSQL opens driver ("sqlite" or "libsql") at dsn and pings it.
func NewSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS cohort_summaries (
			tier TEXT NOT NULL,
			division TEXT NOT NULL,
			role TEXT NOT NULL,
			games INTEGER NOT NULL DEFAULT 0,
			avg_kills REAL NOT NULL DEFAULT 0,
			avg_deaths REAL NOT NULL DEFAULT 0,
			avg_assists REAL NOT NULL DEFAULT 0,
			avg_kda REAL NOT NULL DEFAULT 0,
			win_rate REAL NOT NULL DEFAULT 0,
			avg_cs_per_min REAL NOT NULL DEFAULT 0,
			avg_gold_per_min REAL NOT NULL DEFAULT 0,
			avg_dmg_per_min REAL NOT NULL DEFAULT 0,
			avg_vision_per_min REAL NOT NULL DEFAULT 0,
			published_at TEXT NOT NULL,
			PRIMARY KEY (tier, division, role)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cohort_summaries_rank ON cohort_summaries(tier, division)`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Publish replaces every stored row of the summary's rank.
func (s *SQLStore) Publish(ctx context.Context, sum *CohortSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cohort_summaries WHERE tier = ? AND division = ?`,
		sum.Tier, sum.Division); err != nil {
		return fmt.Errorf("failed to clear %s/%s: %w", sum.Tier, sum.Division, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cohort_summaries (tier, division, `+summaryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	published := sum.PublishedAt.UTC().Format(time.RFC3339)
	for _, r := range flatten(sum) {
		if _, err := stmt.ExecContext(ctx, insertArgs(sum.Tier, sum.Division, r, published)...); err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.role, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Get(ctx context.Context, tier, division string) (*CohortSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM cohort_summaries WHERE tier = ? AND division = ? ORDER BY role`,
		tier, division)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var (
		out       []summaryRow
		published time.Time
	)
	for rows.Next() {
		var ts string
		r, err := scanSummaryRow(rows, &ts)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			published = t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assemble(tier, division, out, published)
}
