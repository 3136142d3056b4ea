package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"rankdelta/internal/riot"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeAPI serves canned ladder pages, match-id lists and matches.
type fakeAPI struct {
	mu        sync.Mutex
	pages     map[int][]riot.LeagueEntry
	pageErr   map[int]error
	matchIDs  map[string][]string
	idErr     map[string]error
	matches   map[string]*riot.Match
	matchErr  map[string]error
	pageCalls []int
	inFlight  int
	peak      int
}

func (f *fakeAPI) GetLeagueEntries(_ context.Context, _, _, _, _ string, page int) ([]riot.LeagueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls = append(f.pageCalls, page)
	if err := f.pageErr[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

func (f *fakeAPI) enter() {
	f.mu.Lock()
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
	f.mu.Unlock()
}

func (f *fakeAPI) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeAPI) GetMatchIDs(_ context.Context, _, puuid string, _ riot.MatchIDQuery) ([]string, error) {
	f.enter()
	defer f.leave()
	if err := f.idErr[puuid]; err != nil {
		return nil, err
	}
	return f.matchIDs[puuid], nil
}

func (f *fakeAPI) GetMatch(_ context.Context, _, matchID string) (*riot.Match, error) {
	f.enter()
	defer f.leave()
	if err := f.matchErr[matchID]; err != nil {
		return nil, err
	}
	m, ok := f.matches[matchID]
	if !ok {
		return nil, &riot.NotFoundError{URL: matchID}
	}
	return m, nil
}

func testMatch(id string, duration int, puuids ...string) *riot.Match {
	m := &riot.Match{
		Metadata: riot.MatchMetadata{MatchID: id, Participants: puuids},
		Info:     riot.MatchInfo{GameDuration: duration, GameMode: "CLASSIC", QueueID: riot.SoloQueueID},
	}
	for i, p := range puuids {
		m.Info.Participants = append(m.Info.Participants, riot.Participant{
			PUUID: p, ChampionName: fmt.Sprintf("Champ%d", i), TeamPosition: "TOP",
			Kills: i, Deaths: 1, Assists: 2, Win: i%2 == 0, Item0: 1000 + i,
		})
	}
	return m
}
