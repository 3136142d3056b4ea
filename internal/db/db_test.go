package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"rankdelta/internal/config"
	"rankdelta/internal/dataset"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQL(context.Background(), "sqlite", filepath.Join(t.TempDir(), "summaries.db"))
	if err != nil {
		t.Fatalf("NewSQL: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.CreateTables(context.Background()); err != nil {
		t.Fatalf("CreateTables: %v", err)
	}
	return s
}

func testCohort() *dataset.Cohort {
	return &dataset.Cohort{
		Rank: dataset.NewRank("gold", "ii"),
		Rows: []dataset.MatchRow{
			{MatchID: "NA1_1", TeamPosition: "BOTTOM", GameDuration: 1800, Kills: 4, Deaths: 2, Assists: 4, Win: true},
			{MatchID: "NA1_2", TeamPosition: "BOTTOM", GameDuration: 1800, Kills: 8, Deaths: 0, Assists: 0},
			{MatchID: "NA1_3", TeamPosition: "UTILITY", GameDuration: 1200, Kills: 1, Deaths: 5, Assists: 9},
			{MatchID: "NA1_4", TeamPosition: "", GameDuration: 1500, Kills: 2, Deaths: 2, Assists: 2},
			{MatchID: "NA1_5", TeamPosition: "TOP", GameDuration: 0, Kills: 0, Deaths: 0, Assists: 0},
		},
	}
}

func TestSummarizeCohort(t *testing.T) {
	s := SummarizeCohort(testCohort())

	if s.Tier != "GOLD" || s.Division != "II" {
		t.Errorf("rank = %s/%s, want GOLD/II", s.Tier, s.Division)
	}
	if s.Overall.Games != 4 {
		t.Errorf("overall games = %d, want 4 (remake dropped)", s.Overall.Games)
	}
	if got := s.RoleNames(); len(got) != 2 || got[0] != "BOTTOM" || got[1] != "UTILITY" {
		t.Errorf("roles = %v, want [BOTTOM UTILITY]", got)
	}
	if kda := s.Roles["BOTTOM"].AvgKDA; kda != 6 {
		t.Errorf("BOTTOM avg kda = %v, want 6", kda)
	}
}

func TestSQLStore_PublishAndGet(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	want := SummarizeCohort(testCohort())

	if err := store.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got, err := store.Get(ctx, "GOLD", "II")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Overall != want.Overall {
		t.Errorf("overall = %+v, want %+v", got.Overall, want.Overall)
	}
	if len(got.Roles) != len(want.Roles) || got.Roles["UTILITY"] != want.Roles["UTILITY"] {
		t.Errorf("roles = %+v, want %+v", got.Roles, want.Roles)
	}
	if !got.PublishedAt.Equal(want.PublishedAt.Truncate(time.Second)) {
		t.Errorf("published_at = %v, want %v", got.PublishedAt, want.PublishedAt)
	}
}

func TestSQLStore_PublishReplacesRank(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := SummarizeCohort(testCohort())
	if err := store.Publish(ctx, first); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	c := testCohort()
	c.Rows = c.Rows[:2]
	if err := store.Publish(ctx, SummarizeCohort(c)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got, err := store.Get(ctx, "GOLD", "II")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := got.Roles["UTILITY"]; ok {
		t.Error("stale UTILITY row survived republish")
	}
	if got.Overall.Games != 2 {
		t.Errorf("overall games = %d, want 2", got.Overall.Games)
	}
}

func TestSQLStore_GetMissing(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get(context.Background(), "IRON", "IV"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(context.Background(), config.SummaryConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}

	path := filepath.Join(t.TempDir(), "open.db")
	s, err := Open(context.Background(), config.SummaryConfig{TursoURL: path})
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLStore); !ok {
		t.Errorf("Open returned %T, want *SQLStore", s)
	}
}

func TestSQLTarget(t *testing.T) {
	tests := []struct {
		url, token, driver, dsn string
	}{
		{"libsql://db.turso.io", "tok", "libsql", "libsql://db.turso.io?authToken=tok"},
		{"https://db.turso.io", "", "libsql", "https://db.turso.io"},
		{"file:local.db", "tok", "sqlite", "file:local.db"},
		{"/tmp/x.db", "", "sqlite", "/tmp/x.db"},
	}
	for _, tt := range tests {
		driver, dsn := sqlTarget(tt.url, tt.token)
		if driver != tt.driver || dsn != tt.dsn {
			t.Errorf("sqlTarget(%q) = %s %s, want %s %s", tt.url, driver, dsn, tt.driver, tt.dsn)
		}
	}
}
