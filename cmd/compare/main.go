package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"rankdelta/internal/compare"
	"rankdelta/internal/config"
	"rankdelta/internal/dataset"
	"rankdelta/internal/logging"
	"rankdelta/internal/riot"
	"rankdelta/internal/storage"
)

func main() {
	riotID := flag.String("riot-id", "", "player Riot ID (e.g., 'Player#NA1')")
	region := flag.String("region", compare.DefaultRegion, "player platform, e.g. na1, euw1")
	tier := flag.String("tier", "", "rank tier to compare against")
	division := flag.String("division", "", "rank division to compare against")
	recent := flag.Int("recent", compare.DefaultRecent, "number of recent ranked matches")
	role := flag.String("role", "", "optional role filter (TOP, JUNGLE, MID, ADC, SUPPORT)")
	champion := flag.String("champion", "", "optional champion name filter")
	flag.Parse()

	if *riotID == "" || *tier == "" || *division == "" {
		fmt.Println("Usage:")
		fmt.Println("  compare --riot-id='Player#NA1' --tier=GOLD --division=II [--region=na1] [--recent=20] [--role=ADC] [--champion=Jinx]")
		os.Exit(1)
	}

	req := compare.Request{
		RiotID:   *riotID,
		Region:   *region,
		Tier:     *tier,
		Division: *division,
		Recent:   *recent,
		Role:     *role,
		Champion: *champion,
	}
	if err := run(req); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(req compare.Request) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.Log, "compare.log")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := riot.NewClient(cfg.Riot.APIKey,
		riot.WithHTTPClient(&http.Client{Timeout: cfg.Riot.HTTPTimeout}),
		riot.WithRetry(cfg.Riot.MaxAttempts, cfg.Riot.BaseBackoff),
		riot.WithCourtesyDelay(cfg.Riot.CourtesyDelay),
		riot.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	blobs, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return err
	}

	o := compare.NewOrchestrator(dataset.NewLoader(blobs, logger, nil), client, logger, nil)
	res, err := o.Compare(ctx, req)
	if err != nil {
		return err
	}
	writeResult(os.Stdout, res)
	return nil
}

var metricRows = []struct{ key, label, format string }{
	{"avg_kills", "Kills", "%.2f"},
	{"avg_deaths", "Deaths", "%.2f"},
	{"avg_assists", "Assists", "%.2f"},
	{"avg_kda", "KDA", "%.2f"},
	{"win_rate", "Win rate", "%.3f"},
	{"avg_cs_per_min", "CS/min", "%.2f"},
	{"avg_gold_per_min", "Gold/min", "%.1f"},
	{"avg_dmg_per_min", "Damage/min", "%.1f"},
	{"avg_vision_per_min", "Vision/min", "%.2f"},
}

func writeResult(w io.Writer, res *compare.Result) {
	filter := "all roles"
	if res.PrimaryRole != "" {
		filter = res.PrimaryRole
	}
	if res.Champion != "" {
		filter += ", " + res.Champion
	}
	fmt.Fprintf(w, "\n%s (%s) vs %s %s [%s]\n", res.RiotID, res.Region, res.Tier, res.Division, filter)
	fmt.Fprintf(w, "player games: %d   rank games: %d\n\n", res.PlayerGames, res.RankGames)

	player := res.PlayerSummary.Fields()
	rank := res.RankSummary.Fields()
	t := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	t.Header("METRIC", "PLAYER", "RANK", "DELTA")
	for _, m := range metricRows {
		t.Append(
			m.label,
			fmt.Sprintf(m.format, player[m.key]),
			fmt.Sprintf(m.format, rank[m.key]),
			fmt.Sprintf("%+"+m.format[1:], res.Delta[m.key]),
		)
	}
	t.Render()
}
