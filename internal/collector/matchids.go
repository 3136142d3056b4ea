package collector

import (
	"context"
	"sort"

	"rankdelta/internal/riot"
)

// MatchIDSet is a set of match ids. Membership is the only guarantee.
type MatchIDSet map[string]struct{}

func (s MatchIDSet) Add(ids ...string) {
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
}

func (s MatchIDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in lexicographic order, the canonical order for
// persistence and sharding.
func (s MatchIDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ExpandMatchIDs fetches each player's recent match ids on the match-id pool
// and merges them into one set. A failing player contributes nothing.
func (c *Crawler) ExpandMatchIDs(ctx context.Context, puuids []string) (MatchIDSet, *BatchReport) {
	set := make(MatchIDSet)
	q := riot.MatchIDQuery{Count: c.cfg.MatchIDCount, Type: c.cfg.MatchType}

	fetch := func(ctx context.Context, puuid string) ([]string, error) {
		return c.api.GetMatchIDs(ctx, c.cfg.Platform, puuid, q)
	}
	report := runBatch(ctx, c.runner("match_ids", c.cfg.MatchIDWorkers), puuids, fetch,
		func(_ string, ids []string) { set.Add(ids...) })

	c.logger.Info("match ids expanded", "players", len(puuids), "match_ids", len(set))
	return set, report
}
