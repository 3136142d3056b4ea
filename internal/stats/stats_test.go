package stats

import (
	"math"
	"testing"

	"rankdelta/internal/dataset"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func TestSummarize_TwoRowScenario(t *testing.T) {
	rows := []dataset.MatchRow{
		{GameDuration: 1800, Kills: 10, Deaths: 2, Assists: 5, Win: true},
		{GameDuration: 1200, Kills: 2, Deaths: 0, Assists: 1, Win: false},
	}
	s := Summarize(rows)

	if s.Games != 2 {
		t.Errorf("Expected 2 games, got %d", s.Games)
	}
	if !approx(s.AvgKills, 6) || !approx(s.AvgDeaths, 1) || !approx(s.AvgAssists, 3) {
		t.Errorf("Unexpected averages: %+v", s)
	}
	// kda: (15/2 + 3/1) / 2 = 5.25
	if !approx(s.AvgKDA, 5.25) {
		t.Errorf("Expected avg_kda 5.25, got %v", s.AvgKDA)
	}
	if !approx(s.WinRate, 0.5) {
		t.Errorf("Expected win_rate 0.5, got %v", s.WinRate)
	}
}

func TestSummarize_AvgKDASix(t *testing.T) {
	rows := []dataset.MatchRow{
		{GameDuration: 1800, Kills: 4, Deaths: 2, Assists: 4},
		{GameDuration: 1800, Kills: 8, Deaths: 0, Assists: 0},
	}
	s := Summarize(rows)
	if !approx(s.AvgKills, 6) || !approx(s.AvgDeaths, 1) || !approx(s.AvgKDA, 6) {
		t.Errorf("Expected avg_kills 6, avg_deaths 1, avg_kda 6, got %+v", s)
	}
}

func TestDerive_ZeroDeathsKDA(t *testing.T) {
	d := Derive(dataset.MatchRow{GameDuration: 600, Kills: 4, Assists: 3})
	if d.KDA != 7 {
		t.Errorf("Expected kda 7, got %v", d.KDA)
	}
}

func TestDerive_PerMinute(t *testing.T) {
	d := Derive(dataset.MatchRow{
		GameDuration: 1800, TotalMinionsKilled: 240, NeutralMinionsKilled: 30,
		GoldEarned: 12000, TotalDamageDealtToChampions: 27000, VisionScore: 45, Win: true,
	})
	if d.Minutes != 30 || d.CS != 270 {
		t.Errorf("Unexpected minutes/cs: %+v", d)
	}
	if !approx(d.CSPerMin, 9) || !approx(d.GoldPerMin, 400) || !approx(d.DmgPerMin, 900) || !approx(d.VisionPerMin, 1.5) {
		t.Errorf("Unexpected rates: %+v", d)
	}
	if d.WinNumeric != 1 {
		t.Error("Expected win numeric 1")
	}
}

func TestDerive_ZeroDurationFloor(t *testing.T) {
	d := Derive(dataset.MatchRow{GameDuration: 0, TotalMinionsKilled: 10, GoldEarned: 500})
	for name, v := range map[string]float64{"cs": d.CSPerMin, "gold": d.GoldPerMin, "dmg": d.DmgPerMin, "vision": d.VisionPerMin} {
		if v != 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("%s per min: expected 0, got %v", name, v)
		}
	}
}

func TestSummarize_Properties(t *testing.T) {
	var rows []dataset.MatchRow
	for i := 0; i < 25; i++ {
		rows = append(rows, dataset.MatchRow{GameDuration: 900 + 60*i, Kills: i % 7, Deaths: i % 4, Win: i%3 == 0})
	}
	s := Summarize(rows)
	if s.Games != len(rows) {
		t.Errorf("games = %d, want %d", s.Games, len(rows))
	}
	if s.WinRate < 0 || s.WinRate > 1 {
		t.Errorf("win rate out of range: %v", s.WinRate)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("Expected zero summary, got %+v", s)
	}
}

func TestDelta_SelfIsZero(t *testing.T) {
	s := Summarize([]dataset.MatchRow{{GameDuration: 1500, Kills: 3, Deaths: 4, Assists: 9, GoldEarned: 9000}})
	delta := s.Delta(s)
	if _, ok := delta[GamesKey]; ok {
		t.Error("games must not appear in delta")
	}
	if len(delta) != len(s.Fields())-1 {
		t.Errorf("Expected %d keys, got %d", len(s.Fields())-1, len(delta))
	}
	for k, v := range delta {
		if v != 0 {
			t.Errorf("delta[%s] = %v, want 0", k, v)
		}
	}
}

func TestDelta_SkipsMissingKeys(t *testing.T) {
	d := Delta(map[string]float64{"a": 3, "b": 1, GamesKey: 5}, map[string]float64{"a": 1, GamesKey: 2})
	if len(d) != 1 || d["a"] != 2 {
		t.Errorf("Unexpected delta %v", d)
	}
}
