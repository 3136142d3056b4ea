package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// EncodeRows renders rows as a partition file with a header line.
func EncodeRows(rows []MatchRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return nil, fmt.Errorf("encode row %s: %w", r.MatchID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r MatchRow) record() []string {
	itoa := strconv.Itoa
	win := "False"
	if r.Win {
		win = "True"
	}
	items := make([]string, len(r.Items))
	for i, it := range r.Items {
		items[i] = itoa(it)
	}
	return []string{
		r.Tier, r.IndividualPosition, r.ChampionName, r.MatchID, itoa(r.GameDuration),
		r.GameMode, itoa(r.QueueID), itoa(r.ChampionID), r.TeamPosition,
		itoa(r.Kills), itoa(r.Deaths), itoa(r.Assists),
		itoa(r.TotalMinionsKilled), itoa(r.NeutralMinionsKilled), itoa(r.GoldEarned),
		itoa(r.TotalDamageDealtToChampions), itoa(r.TotalDamageTaken), itoa(r.VisionScore),
		win, "[" + strings.Join(items, ", ") + "]", itoa(r.Summoner1ID), itoa(r.Summoner2ID),
	}
}

// DecodeRows parses a partition file. Columns are matched by header name so
// files written by other tools with extra or reordered columns still load.
// An empty input yields no rows and no error.
func DecodeRows(data []byte) ([]MatchRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing required column %q", c)
		}
	}

	var rows []MatchRow
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parseRecord(idx, rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type fieldReader struct {
	idx map[string]int
	rec []string
	err error
}

func (f *fieldReader) str(col string) string {
	i, ok := f.idx[col]
	if !ok || i >= len(f.rec) {
		return ""
	}
	v := strings.TrimSpace(f.rec[i])
	if isNull(v) {
		return ""
	}
	return v
}

func (f *fieldReader) num(col string) int {
	n, err := parseInt(f.str(col))
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("column %s: %w", col, err)
	}
	return n
}

func parseRecord(idx map[string]int, rec []string) (MatchRow, error) {
	f := &fieldReader{idx: idx, rec: rec}
	row := MatchRow{
		Tier:                        f.str("tier"),
		IndividualPosition:          f.str("individualPosition"),
		ChampionName:                f.str("championName"),
		MatchID:                     f.str("matchId"),
		GameDuration:                f.num("gameDuration"),
		GameMode:                    f.str("gameMode"),
		QueueID:                     f.num("queueId"),
		ChampionID:                  f.num("championId"),
		TeamPosition:                f.str("teamPosition"),
		Kills:                       f.num("kills"),
		Deaths:                      f.num("deaths"),
		Assists:                     f.num("assists"),
		TotalMinionsKilled:          f.num("totalMinionsKilled"),
		NeutralMinionsKilled:        f.num("neutralMinionsKilled"),
		GoldEarned:                  f.num("goldEarned"),
		TotalDamageDealtToChampions: f.num("totalDamageDealtToChampions"),
		TotalDamageTaken:            f.num("totalDamageTaken"),
		VisionScore:                 f.num("visionScore"),
		Summoner1ID:                 f.num("summoner1Id"),
		Summoner2ID:                 f.num("summoner2Id"),
	}
	win, err := parseBool(f.str("win"))
	if err != nil {
		return MatchRow{}, fmt.Errorf("column win: %w", err)
	}
	row.Win = win
	items, err := parseItems(f.str("items"))
	if err != nil {
		return MatchRow{}, fmt.Errorf("column items: %w", err)
	}
	row.Items = items
	if f.err != nil {
		return MatchRow{}, f.err
	}
	return row, nil
}

func isNull(v string) bool {
	switch strings.ToLower(v) {
	case "", "none", "nan", "null":
		return true
	}
	return false
}

// parseInt accepts "1800" and "1800.0" (pandas writes ints as floats when a
// column has gaps).
func parseInt(v string) (int, error) {
	if isNull(v) {
		return 0, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return int(f), nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "", "none", "nan":
		return false, nil
	case "true", "1", "1.0":
		return true, nil
	case "false", "0", "0.0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

func parseItems(v string) ([7]int, error) {
	var items [7]int
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(v, "["), "]"))
	if v == "" {
		return items, nil
	}
	parts := strings.Split(v, ",")
	if len(parts) > len(items) {
		return items, fmt.Errorf("expected at most %d items, got %d", len(items), len(parts))
	}
	for i, p := range parts {
		n, err := parseInt(strings.TrimSpace(p))
		if err != nil {
			return items, err
		}
		items[i] = n
	}
	return items, nil
}

// EncodeIDs writes a single-column id list with the given header.
func EncodeIDs(header string, ids []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{header}); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := w.Write([]string{id}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeIDs reads the first column of a single-column id list, skipping the
// header and blank lines.
func DecodeIDs(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		if len(rec) == 0 {
			continue
		}
		if id := strings.TrimSpace(rec[0]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
