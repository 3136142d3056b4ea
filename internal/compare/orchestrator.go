package compare

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rankdelta/internal/collector"
	"rankdelta/internal/dataset"
	"rankdelta/internal/metrics"
	"rankdelta/internal/riot"
	"rankdelta/internal/stats"
)

const (
	DefaultRecent = 20
	MaxRecent     = 100
	DefaultRegion = "na1"
)

// CohortSource loads the rank-wide dataset.
type CohortSource interface {
	Load(ctx context.Context, tier, division string) (*dataset.Cohort, error)
}

// PlayerAPI resolves a player and fetches their matches.
type PlayerAPI interface {
	GetAccountByRiotID(ctx context.Context, platform, gameName, tagLine string) (*riot.Account, error)
	GetMatchIDs(ctx context.Context, platform, puuid string, q riot.MatchIDQuery) ([]string, error)
	GetMatch(ctx context.Context, platform, matchID string) (*riot.Match, error)
}

// Request is one comparison. Role and Champion are optional filters.
type Request struct {
	RiotID   string `json:"riot_id"`
	Region   string `json:"region"`
	Tier     string `json:"tier"`
	Division string `json:"division"`
	Recent   int    `json:"n_recent"`
	Role     string `json:"primary_role"`
	Champion string `json:"champion"`
}

// Result is the player-vs-rank comparison.
type Result struct {
	RiotID        string             `json:"riot_id"`
	Region        string             `json:"region"`
	Tier          string             `json:"tier"`
	Division      string             `json:"division"`
	PrimaryRole   string             `json:"primary_role"`
	Champion      string             `json:"champion"`
	PlayerGames   int                `json:"player_games"`
	RankGames     int                `json:"rank_games"`
	PlayerSummary stats.Summary      `json:"player_summary"`
	RankSummary   stats.Summary      `json:"rank_summary"`
	Delta         map[string]float64 `json:"delta"`
}

// Orchestrator composes cohort loading, live player fetch and the stats engine.
type Orchestrator struct {
	cohorts CohortSource
	api     PlayerAPI
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewOrchestrator(cohorts CohortSource, api PlayerAPI, logger *slog.Logger, m *metrics.Metrics) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{cohorts: cohorts, api: api, logger: logger.With("component", "compare"), metrics: m}
}

func (r *Request) normalize() error {
	r.RiotID = strings.TrimSpace(r.RiotID)
	if r.RiotID == "" {
		return &ValidationError{Field: "riot_id", Reason: "required"}
	}
	if _, _, err := riot.ParseRiotID(r.RiotID); err != nil {
		return &ValidationError{Field: "riot_id", Reason: `must be "GameName#TAG"`}
	}
	if r.Region = strings.ToLower(strings.TrimSpace(r.Region)); r.Region == "" {
		r.Region = DefaultRegion
	}
	if r.Tier = strings.ToUpper(strings.TrimSpace(r.Tier)); r.Tier == "" {
		return &ValidationError{Field: "tier", Reason: "required"}
	}
	if strings.TrimSpace(r.Division) == "" {
		return &ValidationError{Field: "division", Reason: dataset.ErrDivisionRequired.Error()}
	}
	r.Division = strings.ToUpper(strings.TrimSpace(r.Division))
	switch {
	case r.Recent <= 0:
		r.Recent = DefaultRecent
	case r.Recent > MaxRecent:
		r.Recent = MaxRecent
	}
	r.Champion = strings.TrimSpace(r.Champion)
	return nil
}

// Compare runs one comparison. No partial result is ever returned.
func (o *Orchestrator) Compare(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := o.compare(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		o.logger.Warn("comparison failed", "riot_id", req.RiotID, "error", err)
	} else {
		o.logger.Info("comparison complete", "riot_id", res.RiotID, "tier", res.Tier, "division", res.Division,
			"player_games", res.PlayerGames, "rank_games", res.RankGames, "elapsed", time.Since(start).Round(time.Millisecond))
	}
	o.metrics.ObserveComparison(outcome)
	return res, err
}

func (o *Orchestrator) compare(ctx context.Context, req Request) (*Result, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	cohort, err := o.cohorts.Load(ctx, req.Tier, req.Division)
	if err != nil {
		return nil, err
	}

	playerRows, err := o.PlayerRows(ctx, req.RiotID, req.Region, req.Recent)
	if err != nil {
		return nil, err
	}

	role := NormalizeRole(req.Role)
	rankRows := Filter(DropRemakes(cohort.Rows), role, req.Champion)
	if len(rankRows) == 0 {
		return nil, &EmptyFilterResultError{Side: "rank", Role: role, Champion: req.Champion}
	}
	playerRows = Filter(DropRemakes(playerRows), role, req.Champion)
	if len(playerRows) == 0 {
		return nil, &EmptyFilterResultError{Side: "player", Role: role, Champion: req.Champion}
	}

	rankSummary := stats.Summarize(rankRows)
	playerSummary := stats.Summarize(playerRows)

	return &Result{
		RiotID:        req.RiotID,
		Region:        req.Region,
		Tier:          req.Tier,
		Division:      req.Division,
		PrimaryRole:   role,
		Champion:      req.Champion,
		PlayerGames:   playerSummary.Games,
		RankGames:     rankSummary.Games,
		PlayerSummary: playerSummary,
		RankSummary:   rankSummary,
		Delta:         playerSummary.Delta(rankSummary),
	}, nil
}

// PlayerRows resolves riotID and extracts that player's row from each of
// their recent solo-queue matches. Missing participants and failed fetches
// are skipped; a rejected credential aborts.
func (o *Orchestrator) PlayerRows(ctx context.Context, riotID, region string, recent int) ([]dataset.MatchRow, error) {
	gameName, tagLine, err := riot.ParseRiotID(riotID)
	if err != nil {
		return nil, &ValidationError{Field: "riot_id", Reason: err.Error()}
	}
	account, err := o.api.GetAccountByRiotID(ctx, region, gameName, tagLine)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", riotID, err)
	}
	ids, err := o.api.GetMatchIDs(ctx, region, account.PUUID,
		riot.MatchIDQuery{Start: 0, Count: recent, Queue: riot.SoloQueueID})
	if err != nil {
		return nil, fmt.Errorf("list matches for %s: %w", riotID, err)
	}

	ex := collector.NewExtractor(o.api, region, "")
	var rows []dataset.MatchRow
	var last error
	for _, id := range ids {
		row, err := ex.ExtractFor(ctx, id, account.PUUID)
		if err != nil {
			if riot.IsAuthError(err) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			last = err
			o.logger.Warn("skipping match", "match_id", id, "riot_id", riotID, "error", err)
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, &NoPlayerDataError{RiotID: riotID, Attempted: len(ids), Last: last}
	}
	return rows, nil
}

// Filter keeps rows whose team position equals role and whose champion name
// equals champion, both case-insensitively. Empty arguments disable a filter.
func Filter(rows []dataset.MatchRow, role, champion string) []dataset.MatchRow {
	if role == "" && champion == "" {
		return rows
	}
	out := make([]dataset.MatchRow, 0, len(rows))
	for _, r := range rows {
		if role != "" && !strings.EqualFold(r.TeamPosition, role) {
			continue
		}
		if champion != "" && !strings.EqualFold(r.ChampionName, champion) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DropRemakes removes rows with a non-positive duration.
func DropRemakes(rows []dataset.MatchRow) []dataset.MatchRow {
	out := rows[:0:0]
	for _, r := range rows {
		if r.GameDuration > 0 {
			out = append(out, r)
		}
	}
	return out
}
