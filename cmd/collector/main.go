package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rankdelta/internal/collector"
	"rankdelta/internal/config"
	"rankdelta/internal/dataset"
	"rankdelta/internal/discord"
	"rankdelta/internal/logging"
	"rankdelta/internal/metrics"
	"rankdelta/internal/riot"
	"rankdelta/internal/storage"
)

var (
	tier     string
	division string
	platform string
	workerID int
	workers  int
	skipKey  bool
)

// app is the per-invocation wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	closer   io.Closer
	metrics  *metrics.Metrics
	client   *riot.Client
	store    storage.BlobStore
	notifier discord.Notifier
}

var current *app

var rootCmd = &cobra.Command{
	Use:           "collector",
	Short:         "Crawl ranked ladders into per-rank match datasets",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.closer.Close()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if current != nil {
			current.logger.Error("collector failed", "error", err)
			current.closer.Close()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&tier, "tier", "", "ladder tier, e.g. GOLD")
	pf.StringVar(&division, "division", "", "ladder division, e.g. II")
	pf.StringVar(&platform, "platform", "", "platform host (overrides PLATFORM)")
	pf.IntVar(&workerID, "worker-id", 0, "this worker's shard index (overrides WORKER_ID)")
	pf.IntVar(&workers, "workers", 1, "total disjoint workers (overrides WORKER_COUNT)")
	pf.BoolVar(&skipKey, "skip-key-check", false, "do not validate the API key before crawling")

	rootCmd.AddCommand(ladderCmd)
	rootCmd.AddCommand(matchIDsCmd)
	rootCmd.AddCommand(matchDataCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(validateKeyCmd)
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("platform") {
		cfg.Crawl.Platform = strings.ToLower(platform)
	}
	if flags.Changed("worker-id") {
		cfg.Crawl.WorkerID = workerID
	}
	if flags.Changed("workers") {
		cfg.Crawl.WorkerCount = workers
	}
	if cfg.Crawl.WorkerCount <= 0 || cfg.Crawl.WorkerID < 0 || cfg.Crawl.WorkerID >= cfg.Crawl.WorkerCount {
		return nil, fmt.Errorf("worker id %d out of range for %d workers", cfg.Crawl.WorkerID, cfg.Crawl.WorkerCount)
	}

	logger, closer, err := logging.New(cfg.Log, "collector.log")
	if err != nil {
		return nil, err
	}
	if cfg.EnvFile != "" {
		logger.Info("loaded .env", "path", cfg.EnvFile)
	}

	m := metrics.New(nil)
	a := &app{
		cfg:      cfg,
		logger:   logger,
		closer:   closer,
		metrics:  m,
		notifier: discord.NewNotifier(cfg.Notify.DiscordWebhookURL),
	}
	return a, nil
}

// riotClient builds the API client on first use; validate-key does not need it.
func (a *app) riotClient() (*riot.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := riot.NewClient(a.cfg.Riot.APIKey,
		riot.WithRetry(a.cfg.Riot.MaxAttempts, a.cfg.Riot.BaseBackoff),
		riot.WithCourtesyDelay(a.cfg.Riot.CourtesyDelay),
		riot.WithLogger(a.logger),
		riot.WithMetrics(a.metrics),
	)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *app) blobStore(ctx context.Context) (storage.BlobStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := storage.Open(ctx, a.cfg.StorageOptions())
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

func (a *app) pipeline(ctx context.Context) (*collector.Pipeline, error) {
	client, err := a.riotClient()
	if err != nil {
		return nil, err
	}
	store, err := a.blobStore(ctx)
	if err != nil {
		return nil, err
	}
	crawler := collector.NewCrawler(client, a.cfg.CollectorConfig(), a.logger, a.metrics)
	return collector.NewPipeline(crawler, store, a.logger, a.metrics), nil
}

// checkKey fails fast when the configured key is already rejected.
func (a *app) checkKey(ctx context.Context) error {
	if skipKey {
		return nil
	}
	v := riot.NewKeyValidator(riot.WithPlatform(a.cfg.Crawl.Platform))
	ok, err := v.ValidateKey(ctx, a.cfg.Riot.APIKey)
	if err != nil {
		a.logger.Warn("could not validate API key, continuing", "error", err)
		return nil
	}
	if !ok {
		return &riot.AuthError{Status: 401, URL: "status/v4/platform-data"}
	}
	return nil
}

func parseRank() (dataset.Rank, error) {
	if strings.TrimSpace(tier) == "" {
		return dataset.Rank{}, errors.New("--tier is required")
	}
	if strings.TrimSpace(division) == "" {
		return dataset.Rank{}, errors.New("--division is required")
	}
	rank := dataset.NewRank(tier, division)
	if !riot.ValidRank(rank.Tier, rank.Division) {
		return dataset.Rank{}, fmt.Errorf("invalid rank %s", rank)
	}
	return rank, nil
}

// report sends the stage outcome to Discord. Notification failures are logged only.
func (a *app) report(ctx context.Context, stage string, rank dataset.Rank, r *collector.BatchReport, output string, stageErr error) {
	s := discord.StageSummary{
		Stage:  stage,
		Rank:   rank.String(),
		Shard:  a.cfg.Shard().String(),
		Output: output,
	}
	if r != nil {
		s.Total = r.Total
		s.Succeeded = r.Succeeded
		s.Skipped = len(r.Skipped)
		s.Elapsed = r.Elapsed
	}

	var err error
	switch {
	case riot.IsAuthError(stageErr):
		err = a.notifier.KeyRejected(context.WithoutCancel(ctx), s)
	case stageErr == nil:
		err = a.notifier.StageComplete(ctx, s)
	default:
		return
	}
	if err != nil {
		a.logger.Warn("discord notification failed", "stage", stage, "error", err)
	}
}
