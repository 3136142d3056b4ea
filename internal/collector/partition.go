package collector

import "fmt"

// Shard returns the half-open range [start, end) of an n-item list owned by
// worker index out of workers: i*ceil(n/W) up to (i+1)*ceil(n/W), clamped to n.
// Shards for all indexes are disjoint and together cover [0, n).
func Shard(n, workers, index int) (start, end int, err error) {
	if workers <= 0 {
		return 0, 0, fmt.Errorf("worker count must be positive, got %d", workers)
	}
	if index < 0 || index >= workers {
		return 0, 0, fmt.Errorf("worker index %d out of range [0, %d)", index, workers)
	}
	if n <= 0 {
		return 0, 0, nil
	}
	size := (n + workers - 1) / workers
	start = min(index*size, n)
	end = min(start+size, n)
	return start, end, nil
}

// ShardSlice returns the worker's slice of items.
func ShardSlice[T any](items []T, workers, index int) ([]T, error) {
	start, end, err := Shard(len(items), workers, index)
	if err != nil {
		return nil, err
	}
	return items[start:end], nil
}
