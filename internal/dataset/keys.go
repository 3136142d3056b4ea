package dataset

import (
	"fmt"
	"path"
	"strings"
)

// Blob layout roots.
const (
	PUUIDRoot     = "csv_data/puuids"
	MatchIDRoot   = "csv_data/match_ids"
	MatchDataRoot = "csv_data/parsed_match_data"
)

// Rank is a normalized (tier, division) pair.
type Rank struct {
	Tier     string
	Division string
}

func NewRank(tier, division string) Rank {
	return Rank{Tier: strings.ToUpper(strings.TrimSpace(tier)), Division: strings.ToUpper(strings.TrimSpace(division))}
}

func (r Rank) String() string { return r.Tier + "/" + r.Division }

// Prefix is the listing prefix under root for this rank, with trailing slash.
func (r Rank) Prefix(root string) string {
	return path.Join(root, r.Tier, r.Division) + "/"
}

func (r Rank) PUUIDKey() string {
	return r.Prefix(PUUIDRoot) + fmt.Sprintf("puuid_%s_%s.csv", r.Tier, r.Division)
}

func (r Rank) MatchIDKey(part int) string {
	return r.Prefix(MatchIDRoot) + fmt.Sprintf("matchIDs_%s_%s_part%d.csv", r.Tier, r.Division, part)
}

func (r Rank) PartitionKey(part int) string {
	return r.Prefix(MatchDataRoot) + fmt.Sprintf("data_%s_%s_part%d.csv", r.Tier, r.Division, part)
}
