package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"rankdelta/internal/storage"
)

func newTestLoader(t *testing.T) (*Loader, storage.BlobStore) {
	t.Helper()
	store, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewLoader(store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil), store
}

func putRows(t *testing.T, store storage.BlobStore, key string, rows ...MatchRow) {
	t.Helper()
	data, err := EncodeRows(rows)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(context.Background(), key, data); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_ConcatenatesInListingOrder(t *testing.T) {
	loader, store := newTestLoader(t)
	rank := NewRank("GOLD", "II")

	a, b, c := sampleRow(), sampleRow(), sampleRow()
	a.MatchID, b.MatchID, c.MatchID = "NA1_1", "NA1_2", "NA1_3"
	putRows(t, store, rank.PartitionKey(1), c)
	putRows(t, store, rank.PartitionKey(0), a, b)
	store.Put(context.Background(), rank.Prefix(MatchDataRoot)+"notes.txt", []byte("ignored"))

	cohort, err := loader.Load(context.Background(), "gold", "ii")
	if err != nil {
		t.Fatal(err)
	}
	if len(cohort.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(cohort.Rows))
	}
	if cohort.Rows[0].MatchID != "NA1_1" || cohort.Rows[2].MatchID != "NA1_3" {
		t.Errorf("Unexpected order: %s, %s", cohort.Rows[0].MatchID, cohort.Rows[2].MatchID)
	}
	if len(cohort.Partitions) != 2 {
		t.Errorf("Expected 2 partitions, got %v", cohort.Partitions)
	}
	if cohort.SuspectedDuplicates != 0 {
		t.Errorf("Expected no duplicates, got %d", cohort.SuspectedDuplicates)
	}
}

func TestLoad_EmptyListing(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.Load(context.Background(), "GOLD", "III")
	var ece *EmptyCohortError
	if !errors.As(err, &ece) {
		t.Fatalf("Expected EmptyCohortError, got %v", err)
	}
	if ece.Prefix != "csv_data/parsed_match_data/GOLD/III/" {
		t.Errorf("Unexpected prefix %s", ece.Prefix)
	}
}

func TestLoad_OnlyEmptyPartitions(t *testing.T) {
	loader, store := newTestLoader(t)
	putRows(t, store, NewRank("GOLD", "I").PartitionKey(0))

	var ece *EmptyCohortError
	if _, err := loader.Load(context.Background(), "GOLD", "I"); !errors.As(err, &ece) {
		t.Errorf("Expected EmptyCohortError, got %v", err)
	}
}

func TestLoad_DivisionRequired(t *testing.T) {
	loader, _ := newTestLoader(t)
	if _, err := loader.Load(context.Background(), "GOLD", ""); !errors.Is(err, ErrDivisionRequired) {
		t.Errorf("Expected ErrDivisionRequired, got %v", err)
	}
}

func TestLoad_FlagsDuplicatesButKeepsRows(t *testing.T) {
	loader, store := newTestLoader(t)
	rank := NewRank("SILVER", "IV")
	row := sampleRow()
	putRows(t, store, rank.PartitionKey(0), row)
	putRows(t, store, rank.PartitionKey(1), row)

	cohort, err := loader.Load(context.Background(), "SILVER", "IV")
	if err != nil {
		t.Fatal(err)
	}
	if len(cohort.Rows) != 2 {
		t.Errorf("Expected duplicated rows kept, got %d", len(cohort.Rows))
	}
	if cohort.SuspectedDuplicates != 1 {
		t.Errorf("Expected 1 suspected duplicate, got %d", cohort.SuspectedDuplicates)
	}
}

func TestLoad_BadPartitionFails(t *testing.T) {
	loader, store := newTestLoader(t)
	store.Put(context.Background(), NewRank("IRON", "IV").PartitionKey(0), []byte("foo,bar\n1,2\n"))

	if _, err := loader.Load(context.Background(), "IRON", "IV"); err == nil {
		t.Error("Expected parse error")
	}
}
