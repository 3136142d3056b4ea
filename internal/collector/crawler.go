package collector

import (
	"context"
	"log/slog"

	"rankdelta/internal/metrics"
	"rankdelta/internal/riot"
)

// API is the subset of the Riot client the crawler needs.
type API interface {
	GetLeagueEntries(ctx context.Context, platform, queue, tier, division string, page int) ([]riot.LeagueEntry, error)
	GetMatchIDs(ctx context.Context, platform, puuid string, q riot.MatchIDQuery) ([]string, error)
	GetMatch(ctx context.Context, platform, matchID string) (*riot.Match, error)
}

// Crawler expands a ladder into match ids and match rows.
type Crawler struct {
	api     API
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewCrawler(api API, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Crawler{
		api:     api,
		cfg:     cfg,
		logger:  logger.With("component", "crawler", "platform", cfg.Platform),
		metrics: m,
	}
}

func (c *Crawler) Config() Config { return c.cfg }

func (c *Crawler) runner(stage string, width int) batchRunner {
	return batchRunner{
		stage:         stage,
		width:         width,
		progressEvery: c.cfg.ProgressEvery,
		logger:        c.logger,
		metrics:       c.metrics,
	}
}
