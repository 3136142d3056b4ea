package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rankdelta/internal/dataset"
	"rankdelta/internal/metrics"
	"rankdelta/internal/storage"
)

const (
	puuidHeader   = "puuid"
	matchIDHeader = "match_id"
)

// ShardSpec identifies this worker among Workers disjoint workers.
type ShardSpec struct {
	Index   int
	Workers int
}

func (s ShardSpec) String() string { return fmt.Sprintf("%d/%d", s.Index, s.Workers) }

// Pipeline runs the crawl stages against a blob store:
// ladder -> puuid list, puuid list -> match-id parts, match-id parts -> row partitions.
type Pipeline struct {
	crawler *Crawler
	store   storage.BlobStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewPipeline(crawler *Crawler, store storage.BlobStore, logger *slog.Logger, m *metrics.Metrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{crawler: crawler, store: store, logger: logger.With("component", "pipeline"), metrics: m}
}

// RunLadder crawls the ladder and writes the puuid list.
func (p *Pipeline) RunLadder(ctx context.Context, rank dataset.Rank) (int, error) {
	puuids, err := p.crawler.CrawlLadder(ctx, rank)
	if err != nil {
		return 0, err
	}
	data, err := dataset.EncodeIDs(puuidHeader, puuids)
	if err != nil {
		return 0, err
	}
	key := rank.PUUIDKey()
	if err := p.store.Put(ctx, key, data); err != nil {
		return 0, fmt.Errorf("write %s: %w", key, err)
	}
	p.logger.Info("puuid list written", "key", key, "players", len(puuids))
	return len(puuids), nil
}

// RunMatchIDs expands this worker's shard of the puuid list and writes one
// match-id part.
func (p *Pipeline) RunMatchIDs(ctx context.Context, rank dataset.Rank, shard ShardSpec) (*BatchReport, error) {
	data, err := p.store.Get(ctx, rank.PUUIDKey())
	if err != nil {
		return nil, fmt.Errorf("read puuid list for %s: %w", rank, err)
	}
	puuids, err := dataset.DecodeIDs(data)
	if err != nil {
		return nil, fmt.Errorf("parse puuid list for %s: %w", rank, err)
	}
	mine, err := ShardSlice(puuids, shard.Workers, shard.Index)
	if err != nil {
		return nil, err
	}
	p.logger.Info("expanding match ids", "rank", rank.String(), "shard", shard.String(), "players", len(mine), "of", len(puuids))

	set, report := p.crawler.ExpandMatchIDs(ctx, mine)
	if err := report.Err(); err != nil {
		return report, err
	}
	out, err := dataset.EncodeIDs(matchIDHeader, set.Sorted())
	if err != nil {
		return report, err
	}
	key := rank.MatchIDKey(shard.Index)
	if err := p.store.Put(ctx, key, out); err != nil {
		return report, fmt.Errorf("write %s: %w", key, err)
	}
	p.logger.Info("match id part written", "key", key, "match_ids", len(set))
	return report, nil
}

// MatchIDs merges every match-id part for rank into the canonical sorted list.
func (p *Pipeline) MatchIDs(ctx context.Context, rank dataset.Rank) ([]string, error) {
	keys, err := p.store.List(ctx, rank.Prefix(dataset.MatchIDRoot))
	if err != nil {
		return nil, fmt.Errorf("list match id parts for %s: %w", rank, err)
	}
	set := make(MatchIDSet)
	for _, key := range keys {
		if !strings.HasSuffix(key, ".csv") {
			continue
		}
		data, err := p.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		ids, err := dataset.DecodeIDs(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		set.Add(ids...)
	}
	return set.Sorted(), nil
}

// RunMatchData extracts this worker's shard of the canonical match-id list and
// writes exactly one partition.
func (p *Pipeline) RunMatchData(ctx context.Context, rank dataset.Rank, shard ShardSpec) (*BatchReport, error) {
	ids, err := p.MatchIDs(ctx, rank)
	if err != nil {
		return nil, err
	}
	mine, err := ShardSlice(ids, shard.Workers, shard.Index)
	if err != nil {
		return nil, err
	}
	p.logger.Info("extracting matches", "rank", rank.String(), "shard", shard.String(), "matches", len(mine), "of", len(ids))

	ex := NewExtractor(p.crawler.api, p.crawler.cfg.Platform, rank.Tier)
	rows, report := p.crawler.CollectRows(ctx, ex, mine)
	if err := report.Err(); err != nil {
		return report, err
	}

	data, err := dataset.EncodeRows(rows)
	if err != nil {
		return report, err
	}
	key := rank.PartitionKey(shard.Index)
	if err := p.store.Put(ctx, key, data); err != nil {
		return report, fmt.Errorf("write %s: %w", key, err)
	}
	p.metrics.AddRows("write", len(rows))
	p.logger.Info("partition written", "key", key, "rows", len(rows))
	return report, nil
}
