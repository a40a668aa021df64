package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"positions/internal/engine"
	"positions/internal/feed"

	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type logCmd struct {
	events string
	key    string
}

func (*logCmd) Name() string { return "log" }
func (*logCmd) Synopsis() string {
	return "print the log of one position or cash balance as CSV"
}
func (*logCmd) Usage() string {
	return `positions log -events <file.yaml> -key <key>

  Replays the event file and writes every log row of the instrument (or
  currency, for cash) to stdout as CSV, oldest first.
`
}

func (c *logCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.events, "events", "", "Path to the YAML event file.")
	f.StringVar(&c.key, "key", "", "Instrument key or cash currency.")
}

func (c *logCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.events == "" || c.key == "" {
		fmt.Fprintln(os.Stderr, "missing -events or -key")
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

	eng := engine.NewEngine(engine.NewPortfolioConfig(policy, logger), nil, nil, nil)
	if _, err := eng.Run(ctx, events); err != nil {
		logger.Error("replay", zap.Error(err))
		return subcommands.ExitFailure
	}

	p := eng.Portfolio()
	_, open := p.Position(c.key)
	_, cash := p.Cash(c.key)
	if !open && !cash && len(p.Closed(c.key)) == 0 {
		fmt.Fprintf(os.Stderr, "no position or cash balance for %q\n", c.key)
		return subcommands.ExitFailure
	}
	if err := engine.WriteLogsCSV(os.Stdout, p, c.key); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
