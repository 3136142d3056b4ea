package collector

import (
	"context"
	"fmt"

	"rankdelta/internal/dataset"
	"rankdelta/internal/riot"
)

// ParticipantNotFoundError means the target puuid did not play in the match.
type ParticipantNotFoundError struct {
	MatchID string
	PUUID   string
}

func (e *ParticipantNotFoundError) Error() string {
	return fmt.Sprintf("puuid %s not found in match %s", e.PUUID, e.MatchID)
}

// MatchFetcher fetches one match payload.
type MatchFetcher interface {
	GetMatch(ctx context.Context, platform, matchID string) (*riot.Match, error)
}

// Extractor projects match payloads into dataset rows.
type Extractor struct {
	api      MatchFetcher
	platform string
	tier     string // stamped on every row; empty for live player rows
}

func NewExtractor(api MatchFetcher, platform, tier string) *Extractor {
	return &Extractor{api: api, platform: platform, tier: tier}
}

// ExtractAll returns one row per participant.
func (e *Extractor) ExtractAll(ctx context.Context, matchID string) ([]dataset.MatchRow, error) {
	m, err := e.api.GetMatch(ctx, e.platform, matchID)
	if err != nil {
		return nil, err
	}
	rows := make([]dataset.MatchRow, 0, len(m.Info.Participants))
	for _, p := range m.Info.Participants {
		rows = append(rows, RowFromParticipant(m, p, e.tier))
	}
	return rows, nil
}

// ExtractFor returns the row for a single participant.
func (e *Extractor) ExtractFor(ctx context.Context, matchID, puuid string) (dataset.MatchRow, error) {
	m, err := e.api.GetMatch(ctx, e.platform, matchID)
	if err != nil {
		return dataset.MatchRow{}, err
	}
	for _, p := range m.Info.Participants {
		if p.PUUID == puuid {
			return RowFromParticipant(m, p, e.tier), nil
		}
	}
	return dataset.MatchRow{}, &ParticipantNotFoundError{MatchID: matchID, PUUID: puuid}
}

// RowFromParticipant flattens one participant of m.
func RowFromParticipant(m *riot.Match, p riot.Participant, tier string) dataset.MatchRow {
	return dataset.MatchRow{
		Tier:                        tier,
		IndividualPosition:          p.IndividualPosition,
		ChampionName:                p.ChampionName,
		MatchID:                     m.Metadata.MatchID,
		GameDuration:                m.Info.GameDuration,
		GameMode:                    m.Info.GameMode,
		QueueID:                     m.Info.QueueID,
		ChampionID:                  p.ChampionID,
		TeamPosition:                p.TeamPosition,
		Kills:                       p.Kills,
		Deaths:                      p.Deaths,
		Assists:                     p.Assists,
		TotalMinionsKilled:          p.TotalMinionsKilled,
		NeutralMinionsKilled:        p.NeutralMinionsKilled,
		GoldEarned:                  p.GoldEarned,
		TotalDamageDealtToChampions: p.TotalDamageDealtToChampions,
		TotalDamageTaken:            p.TotalDamageTaken,
		VisionScore:                 p.VisionScore,
		Win:                         p.Win,
		Items:                       p.Items(),
		Summoner1ID:                 p.Summoner1ID,
		Summoner2ID:                 p.Summoner2ID,
	}
}

// CollectRows extracts every participant of every match on the match-data
// pool, appending rows in completion order.
func (c *Crawler) CollectRows(ctx context.Context, ex *Extractor, matchIDs []string) ([]dataset.MatchRow, *BatchReport) {
	var rows []dataset.MatchRow
	report := runBatch(ctx, c.runner("match_data", c.cfg.MatchWorkers), matchIDs, ex.ExtractAll,
		func(_ string, r []dataset.MatchRow) { rows = append(rows, r...) })
	return rows, report
}
