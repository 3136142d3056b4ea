package collector

import (
	"context"
	"fmt"

	"rankdelta/internal/dataset"
)

// CrawlLadder pages through the ladder for rank until an empty page (or
// MaxPages) and returns the distinct puuids in first-seen order. On a page
// error the puuids gathered so far are returned with the error.
func (c *Crawler) CrawlLadder(ctx context.Context, rank dataset.Rank) ([]string, error) {
	seen := make(map[string]struct{})
	var puuids []string

	for page := 1; c.cfg.MaxPages <= 0 || page <= c.cfg.MaxPages; page++ {
		entries, err := c.api.GetLeagueEntries(ctx, c.cfg.Platform, c.cfg.Queue, rank.Tier, rank.Division, page)
		if err != nil {
			return puuids, fmt.Errorf("ladder %s page %d: %w", rank, page, err)
		}
		if len(entries) == 0 {
			break
		}
		for _, e := range entries {
			if e.PUUID == "" {
				continue
			}
			if _, ok := seen[e.PUUID]; ok {
				continue
			}
			seen[e.PUUID] = struct{}{}
			puuids = append(puuids, e.PUUID)
		}
		c.logger.Debug("ladder page", "rank", rank.String(), "page", page, "entries", len(entries), "distinct", len(puuids))
	}

	c.logger.Info("ladder crawled", "rank", rank.String(), "players", len(puuids))
	return puuids, nil
}
