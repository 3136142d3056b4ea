package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"

	"rankdelta/internal/metrics"
	"rankdelta/internal/storage"
)

// ErrDivisionRequired is returned when a cohort is requested without a division.
var ErrDivisionRequired = errors.New("division is required")

// EmptyCohortError means no partitions, or only empty ones, exist for a rank.
type EmptyCohortError struct {
	Rank   Rank
	Prefix string
}

func (e *EmptyCohortError) Error() string {
	return fmt.Sprintf("no rank data found for %s under %s", e.Rank, e.Prefix)
}

// Cohort is every row of every partition for one rank, in listing order.
type Cohort struct {
	Rank       Rank
	Rows       []MatchRow
	Partitions []string

	// Match ids seen in more than one partition. Rows are kept as is.
	SuspectedDuplicates int
}

// Loader reads cohorts from a blob store.
type Loader struct {
	store   storage.BlobStore
	root    string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewLoader(store storage.BlobStore, logger *slog.Logger, m *metrics.Metrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		store:   store,
		root:    MatchDataRoot,
		logger:  logger.With("component", "cohort"),
		metrics: m,
	}
}

// Load concatenates all partitions for (tier, division).
func (l *Loader) Load(ctx context.Context, tier, division string) (*Cohort, error) {
	if strings.TrimSpace(division) == "" {
		return nil, ErrDivisionRequired
	}
	rank := NewRank(tier, division)
	prefix := rank.Prefix(l.root)

	keys, err := l.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list partitions for %s: %w", rank, err)
	}

	cohort := &Cohort{Rank: rank}
	var tables [][]MatchRow
	total := 0
	for _, key := range keys {
		if !strings.HasSuffix(key, ".csv") {
			continue
		}
		data, err := l.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read partition %s: %w", key, err)
		}
		rows, err := DecodeRows(data)
		if err != nil {
			return nil, fmt.Errorf("parse partition %s: %w", key, err)
		}
		if len(rows) == 0 {
			continue
		}
		cohort.Partitions = append(cohort.Partitions, key)
		tables = append(tables, rows)
		total += len(rows)
	}
	if total == 0 {
		return nil, &EmptyCohortError{Rank: rank, Prefix: prefix}
	}

	cohort.Rows = make([]MatchRow, 0, total)
	for _, rows := range tables {
		cohort.Rows = append(cohort.Rows, rows...)
	}
	cohort.SuspectedDuplicates = countCrossPartitionDuplicates(tables, total)
	if cohort.SuspectedDuplicates > 0 {
		l.logger.Warn("match ids repeated across partitions",
			"rank", rank.String(), "suspected", cohort.SuspectedDuplicates)
	}

	l.metrics.AddRows("load", total)
	l.logger.Info("cohort loaded", "rank", rank.String(), "partitions", len(tables), "rows", total)
	return cohort, nil
}

// countCrossPartitionDuplicates counts distinct match ids that a bloom filter
// reports as already seen in an earlier partition. False positives are
// possible, so the count is advisory.
func countCrossPartitionDuplicates(tables [][]MatchRow, total int) int {
	if len(tables) < 2 {
		return 0
	}
	filter := bloom.NewWithEstimates(uint(total), 0.001)
	suspected := 0
	for _, rows := range tables {
		ids := make(map[string]struct{})
		for _, r := range rows {
			ids[r.MatchID] = struct{}{}
		}
		for id := range ids {
			if filter.TestString(id) {
				suspected++
			}
		}
		for id := range ids {
			filter.AddString(id)
		}
	}
	return suspected
}
