package stats

import "rankdelta/internal/dataset"

// Derived holds per-row rates. Never persisted.
type Derived struct {
	Minutes      float64
	CS           int
	CSPerMin     float64
	GoldPerMin   float64
	DmgPerMin    float64
	VisionPerMin float64
	KDA          float64
	WinNumeric   float64
}

// Derive computes the per-minute rates and kda for one row. A zero or
// negative duration (remake) yields zero rates instead of Inf.
func Derive(r dataset.MatchRow) Derived {
	d := Derived{
		Minutes: float64(r.GameDuration) / 60,
		CS:      r.TotalMinionsKilled + r.NeutralMinionsKilled,
		KDA:     float64(r.Kills+r.Assists) / float64(max(r.Deaths, 1)),
	}
	if r.Win {
		d.WinNumeric = 1
	}
	if d.Minutes > 0 {
		d.CSPerMin = float64(d.CS) / d.Minutes
		d.GoldPerMin = float64(r.GoldEarned) / d.Minutes
		d.DmgPerMin = float64(r.TotalDamageDealtToChampions) / d.Minutes
		d.VisionPerMin = float64(r.VisionScore) / d.Minutes
	}
	return d
}

// DeriveAll maps Derive over rows.
func DeriveAll(rows []dataset.MatchRow) []Derived {
	out := make([]Derived, len(rows))
	for i, r := range rows {
		out[i] = Derive(r)
	}
	return out
}

// Summary is the mean profile of a set of rows.
type Summary struct {
	Games           int     `json:"games"`
	AvgKills        float64 `json:"avg_kills"`
	AvgDeaths       float64 `json:"avg_deaths"`
	AvgAssists      float64 `json:"avg_assists"`
	AvgKDA          float64 `json:"avg_kda"`
	WinRate         float64 `json:"win_rate"`
	AvgCSPerMin     float64 `json:"avg_cs_per_min"`
	AvgGoldPerMin   float64 `json:"avg_gold_per_min"`
	AvgDmgPerMin    float64 `json:"avg_dmg_per_min"`
	AvgVisionPerMin float64 `json:"avg_vision_per_min"`
}

// Summarize averages rows. An empty input returns the zero Summary.
func Summarize(rows []dataset.MatchRow) Summary {
	n := len(rows)
	if n == 0 {
		return Summary{}
	}
	var s Summary
	for _, r := range rows {
		d := Derive(r)
		s.AvgKills += float64(r.Kills)
		s.AvgDeaths += float64(r.Deaths)
		s.AvgAssists += float64(r.Assists)
		s.AvgKDA += d.KDA
		s.WinRate += d.WinNumeric
		s.AvgCSPerMin += d.CSPerMin
		s.AvgGoldPerMin += d.GoldPerMin
		s.AvgDmgPerMin += d.DmgPerMin
		s.AvgVisionPerMin += d.VisionPerMin
	}
	f := float64(n)
	s.Games = n
	s.AvgKills /= f
	s.AvgDeaths /= f
	s.AvgAssists /= f
	s.AvgKDA /= f
	s.WinRate /= f
	s.AvgCSPerMin /= f
	s.AvgGoldPerMin /= f
	s.AvgDmgPerMin /= f
	s.AvgVisionPerMin /= f
	return s
}

// GamesKey is excluded from deltas.
const GamesKey = "games"

// Fields flattens the summary using its JSON keys.
func (s Summary) Fields() map[string]float64 {
	return map[string]float64{
		GamesKey:             float64(s.Games),
		"avg_kills":          s.AvgKills,
		"avg_deaths":         s.AvgDeaths,
		"avg_assists":        s.AvgAssists,
		"avg_kda":            s.AvgKDA,
		"win_rate":           s.WinRate,
		"avg_cs_per_min":     s.AvgCSPerMin,
		"avg_gold_per_min":   s.AvgGoldPerMin,
		"avg_dmg_per_min":    s.AvgDmgPerMin,
		"avg_vision_per_min": s.AvgVisionPerMin,
	}
}

// Delta returns a[k] - b[k] for every key in both maps except games.
func Delta(a, b map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(a))
	for k, av := range a {
		if k == GamesKey {
			continue
		}
		if bv, ok := b[k]; ok {
			out[k] = av - bv
		}
	}
	return out
}

// Delta is s minus other over the shared summary keys.
func (s Summary) Delta(other Summary) map[string]float64 {
	return Delta(s.Fields(), other.Fields())
}
