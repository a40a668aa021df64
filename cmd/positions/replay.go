package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"positions/internal/engine"
	"positions/internal/feed"
	"positions/internal/repository"

	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type replayCmd struct {
	events    string
	csv       string
	persist   bool
	snapshots bool
	quiet     bool
}

func (*replayCmd) Name() string { return "replay" }
func (*replayCmd) Synopsis() string {
	return "replay an event file into a portfolio and report the resulting positions"
}
func (*replayCmd) Usage() string {
	return `positions replay -events <file.yaml> [-csv <out.csv>] [-persist] [-snapshots] [-q]

  Applies every trade, quote and cash event of the file in date order and
  prints the resulting totals and positions. Rejected events are logged and
  skipped.

  With -persist, instrument metadata missing from the file is looked up in
  the database given by POSITIONS_DATABASE_URL, and every log row is stored
  there under a new run id.
`
}

func (c *replayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.events, "events", "", "Path to the YAML event file.")
	f.StringVar(&c.csv, "csv", "", "Write every log row to this CSV file.")
	f.BoolVar(&c.persist, "persist", false, "Store the logs and daily snapshots in the database.")
	f.BoolVar(&c.snapshots, "snapshots", true, "Take an end-of-day snapshot whenever the date changes.")
	f.BoolVar(&c.quiet, "q", false, "Do not print the report.")
}

func (c *replayCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.events == "" {
		fmt.Fprintln(os.Stderr, "missing -events")
		return subcommands.ExitUsageError
	}
	cfg, logger, err := setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	policy, err := engine.ParseClosedPolicy(cfg.ClosedPolicy)
	if err != nil {
		logger.Error("closed policy", zap.Error(err))
		return subcommands.ExitFailure
	}
	events, err := feed.Load(c.events)
	if err != nil {
		logger.Error("load events", zap.String("path", c.events), zap.Error(err))
		return subcommands.ExitFailure
	}

	portfolioConfig := engine.NewPortfolioConfig(policy, logger)
	replayConfig := engine.NewReplayConfig(cfg.Progress, c.snapshots)
	reportingConfig := engine.NewReportingConfig(!c.quiet, "", c.csv)

	var eng *engine.Engine
	if c.persist {
		db, err := repository.NewDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db", zap.Error(err))
			return subcommands.ExitFailure
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			logger.Error("db", zap.Error(err))
			return subcommands.ExitFailure
		}
		if err := enrich(ctx, db, events); err != nil {
			logger.Error("enrich events", zap.Error(err))
			return subcommands.ExitFailure
		}
		eng = engine.NewEngine(portfolioConfig, replayConfig, reportingConfig, db)
	} else {
		eng = engine.NewEngine(portfolioConfig, replayConfig, reportingConfig, nil)
	}

	report, err := eng.Run(ctx, events)
	if err != nil {
		logger.Error("replay", zap.Error(err))
		return subcommands.ExitFailure
	}
	logger.Info("replay done",
		zap.Stringer("run_id", eng.RunID()),
		zap.Int("events", report.TotalEvents),
		zap.Int("rejected", report.Rejected),
	)
	return subcommands.ExitSuccess
}
