package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps summaries in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a connection pool and checks it.
func NewPostgres(ctx context.Context, dbURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PGStore) CreateTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cohort_summaries (
			tier TEXT NOT NULL,
			division TEXT NOT NULL,
			role TEXT NOT NULL,
			games INTEGER NOT NULL DEFAULT 0,
			avg_kills DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_deaths DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_assists DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_kda DOUBLE PRECISION NOT NULL DEFAULT 0,
			win_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_cs_per_min DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_gold_per_min DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_dmg_per_min DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_vision_per_min DOUBLE PRECISION NOT NULL DEFAULT 0,
			published_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (tier, division, role)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create cohort_summaries: %w", err)
	}
	return nil
}

// Publish replaces every stored row of the summary's rank.
func (s *PGStore) Publish(ctx context.Context, sum *CohortSummary) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM cohort_summaries WHERE tier = $1 AND division = $2`,
		sum.Tier, sum.Division); err != nil {
		return fmt.Errorf("failed to clear %s/%s: %w", sum.Tier, sum.Division, err)
	}

	batch := &pgx.Batch{}
	for _, r := range flatten(sum) {
		batch.Queue(`INSERT INTO cohort_summaries (tier, division, `+summaryColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			insertArgs(sum.Tier, sum.Division, r, sum.PublishedAt.UTC())...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert summaries: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PGStore) Get(ctx context.Context, tier, division string) (*CohortSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+summaryColumns+` FROM cohort_summaries WHERE tier = $1 AND division = $2 ORDER BY role`,
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
		r, err := scanSummaryRow(rows, &published)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assemble(tier, division, out, published)
}
