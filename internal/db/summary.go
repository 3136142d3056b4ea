package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"rankdelta/internal/compare"
	"rankdelta/internal/config"
	"rankdelta/internal/dataset"
	"rankdelta/internal/stats"
)

// OverallRole keys the all-roles summary row.
const OverallRole = "ALL"

var (
	ErrNotFound      = errors.New("db: cohort summary not found")
	ErrNotConfigured = errors.New("db: no summary database configured")
)

// CohortSummary is the published profile of one rank.
type CohortSummary struct {
	Tier        string                   `json:"tier"`
	Division    string                   `json:"division"`
	Overall     stats.Summary            `json:"overall"`
	Roles       map[string]stats.Summary `json:"roles"`
	PublishedAt time.Time                `json:"published_at"`
}

// Store persists cohort summaries.
type Store interface {
	CreateTables(ctx context.Context) error
	Publish(ctx context.Context, s *CohortSummary) error
	Get(ctx context.Context, tier, division string) (*CohortSummary, error)
	Close() error
}

// SummarizeCohort builds the overall and per-role summaries of a loaded
// cohort. Remakes are excluded, as they are for comparisons.
func SummarizeCohort(c *dataset.Cohort) *CohortSummary {
	rows := compare.DropRemakes(c.Rows)
	byRole := make(map[string][]dataset.MatchRow)
	for _, r := range rows {
		role := compare.NormalizeRole(r.TeamPosition)
		if role == "" {
			continue
		}
		byRole[role] = append(byRole[role], r)
	}

	s := &CohortSummary{
		Tier:        c.Rank.Tier,
		Division:    c.Rank.Division,
		Overall:     stats.Summarize(rows),
		Roles:       make(map[string]stats.Summary, len(byRole)),
		PublishedAt: time.Now().UTC(),
	}
	for role, rr := range byRole {
		s.Roles[role] = stats.Summarize(rr)
	}
	return s
}

// RoleNames returns the per-role keys in sorted order.
func (s *CohortSummary) RoleNames() []string {
	names := make([]string, 0, len(s.Roles))
	for role := range s.Roles {
		names = append(names, role)
	}
	sort.Strings(names)
	return names
}

// Open picks a backend from cfg: DATABASE_URL selects Postgres, otherwise
// TURSO_DATABASE_URL selects libSQL for remote URLs and SQLite for paths.
func Open(ctx context.Context, cfg config.SummaryConfig) (Store, error) {
	switch {
	case cfg.DatabaseURL != "":
		return NewPostgres(ctx, cfg.DatabaseURL)
	case cfg.TursoURL != "":
		driver, dsn := sqlTarget(cfg.TursoURL, cfg.TursoToken)
		return NewSQL(ctx, driver, dsn)
	default:
		return nil, ErrNotConfigured
	}
}

func sqlTarget(url, token string) (driver, dsn string) {
	for _, scheme := range []string{"libsql://", "https://", "http://", "wss://", "ws://"} {
		if strings.HasPrefix(url, scheme) {
			if token != "" {
				return "libsql", fmt.Sprintf("%s?authToken=%s", url, token)
			}
			return "libsql", url
		}
	}
	return "sqlite", url
}

// summaryRow is one (rank, role) record as stored.
type summaryRow struct {
	role string
	stats.Summary
}

func flatten(s *CohortSummary) []summaryRow {
	rows := []summaryRow{{role: OverallRole, Summary: s.Overall}}
	for _, role := range s.RoleNames() {
		rows = append(rows, summaryRow{role: role, Summary: s.Roles[role]})
	}
	return rows
}

func assemble(tier, division string, rows []summaryRow, published time.Time) (*CohortSummary, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", tier, division, ErrNotFound)
	}
	s := &CohortSummary{
		Tier:        tier,
		Division:    division,
		Roles:       make(map[string]stats.Summary),
		PublishedAt: published,
	}
	for _, r := range rows {
		if r.role == OverallRole {
			s.Overall = r.Summary
			continue
		}
		s.Roles[r.role] = r.Summary
	}
	return s, nil
}

// scanner is satisfied by both *sql.Rows and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSummaryRow(sc scanner, published any) (summaryRow, error) {
	var r summaryRow
	err := sc.Scan(&r.role, &r.Games, &r.AvgKills, &r.AvgDeaths, &r.AvgAssists, &r.AvgKDA,
		&r.WinRate, &r.AvgCSPerMin, &r.AvgGoldPerMin, &r.AvgDmgPerMin, &r.AvgVisionPerMin, published)
	return r, err
}

const summaryColumns = `role, games, avg_kills, avg_deaths, avg_assists, avg_kda,
	win_rate, avg_cs_per_min, avg_gold_per_min, avg_dmg_per_min, avg_vision_per_min, published_at`

func insertArgs(tier, division string, r summaryRow, published any) []any {
	return []any{tier, division, r.role, r.Games, r.AvgKills, r.AvgDeaths, r.AvgAssists, r.AvgKDA,
		r.WinRate, r.AvgCSPerMin, r.AvgGoldPerMin, r.AvgDmgPerMin, r.AvgVisionPerMin, published}
}
