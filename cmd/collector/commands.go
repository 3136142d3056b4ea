package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rankdelta/internal/collector"
	"rankdelta/internal/dataset"
	"rankdelta/internal/db"
	"rankdelta/internal/riot"
)

var ladderCmd = &cobra.Command{
	Use:   "ladder",
	Short: "Crawl the ladder for one rank and write its puuid list",
	RunE: func(cmd *cobra.Command, args []string) error {
		rank, err := parseRank()
		if err != nil {
			return err
		}
		ctx := collector.SetupSignalHandler(current.logger, nil)
		if err := current.checkKey(ctx); err != nil {
			current.report(ctx, "ladder", rank, nil, "", err)
			return err
		}
		p, err := current.pipeline(ctx)
		if err != nil {
			return err
		}

		start := time.Now()
		n, err := p.RunLadder(ctx, rank)
		report := &collector.BatchReport{Stage: "ladder", Total: n, Succeeded: n, Elapsed: time.Since(start)}
		current.report(ctx, "ladder", rank, report, rank.PUUIDKey(), err)
		return err
	},
}

var matchIDsCmd = &cobra.Command{
	Use:   "match-ids",
	Short: "Expand this worker's shard of the puuid list into a match-id part",
	RunE: func(cmd *cobra.Command, args []string) error {
		rank, err := parseRank()
		if err != nil {
			return err
		}
		ctx := collector.SetupSignalHandler(current.logger, nil)
		if err := current.checkKey(ctx); err != nil {
			current.report(ctx, "match-ids", rank, nil, "", err)
			return err
		}
		p, err := current.pipeline(ctx)
		if err != nil {
			return err
		}

		shard := current.cfg.Shard()
		report, err := p.RunMatchIDs(ctx, rank, shard)
		current.report(ctx, "match-ids", rank, report, rank.MatchIDKey(shard.Index), err)
		return err
	},
}

var matchDataCmd = &cobra.Command{
	Use:   "match-data",
	Short: "Extract this worker's shard of the match-id list into one partition",
	RunE: func(cmd *cobra.Command, args []string) error {
		rank, err := parseRank()
		if err != nil {
			return err
		}
		ctx := collector.SetupSignalHandler(current.logger, nil)
		if err := current.checkKey(ctx); err != nil {
			current.report(ctx, "match-data", rank, nil, "", err)
			return err
		}
		p, err := current.pipeline(ctx)
		if err != nil {
			return err
		}

		shard := current.cfg.Shard()
		report, err := p.RunMatchData(ctx, rank, shard)
		current.report(ctx, "match-data", rank, report, rank.PartitionKey(shard.Index), err)
		return err
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Summarize a rank's partitions into the summary database",
	RunE: func(cmd *cobra.Command, args []string) error {
		rank, err := parseRank()
		if err != nil {
			return err
		}
		ctx := collector.SetupSignalHandler(current.logger, nil)
		blobs, err := current.blobStore(ctx)
		if err != nil {
			return err
		}
		cohort, err := dataset.NewLoader(blobs, current.logger, current.metrics).Load(ctx, rank.Tier, rank.Division)
		if err != nil {
			return err
		}

		store, err := db.Open(ctx, current.cfg.Summary)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.CreateTables(ctx); err != nil {
			return err
		}

		summary := db.SummarizeCohort(cohort)
		if err := store.Publish(ctx, summary); err != nil {
			return fmt.Errorf("publish %s: %w", rank, err)
		}
		current.logger.Info("cohort summary published", "rank", rank.String(),
			"games", summary.Overall.Games, "roles", len(summary.Roles), "partitions", len(cohort.Partitions))
		return nil
	},
}

var validateKeyCmd = &cobra.Command{
	Use:   "validate-key",
	Short: "Check the configured API key against the platform status endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := collector.SetupSignalHandler(current.logger, nil)
		v := riot.NewKeyValidator(riot.WithPlatform(current.cfg.Crawl.Platform))
		ok, err := v.ValidateKey(ctx, current.cfg.Riot.APIKey)
		if err != nil {
			return fmt.Errorf("validate key: %w", err)
		}
		if !ok {
			return fmt.Errorf("API key rejected by %s", current.cfg.Crawl.Platform)
		}
		current.logger.Info("API key accepted", "platform", current.cfg.Crawl.Platform)
		return nil
	},
}
