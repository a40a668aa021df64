package engine

import (
	"context"
	"os"
	"slices"
	"time"

	"positions/types"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Rejection is an event the portfolio refused, with the reason.
type Rejection struct {
	Index int
	Event types.Event
	Err   error
}

type ReplayResult struct {
	Start     time.Time
	End       time.Time
	Applied   int
	Rejected  []Rejection
	Snapshots []types.PortfolioView
}

type replayer struct {
	config    *ReplayConfig
	portfolio *Portfolio
	logger    *zap.Logger
}

func newReplayer(config *ReplayConfig, portfolio *Portfolio, logger *zap.Logger) *replayer {
	if config == nil {
		config = NewReplayConfig(false, false)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &replayer{
		config:    config,
		portfolio: portfolio,
		logger:    logger,
	}
}

// run applies the events in date order. Events on the same date keep their
// input order. A rejected event is recorded and skipped; only a cancelled
// context stops the run early.
func (r *replayer) run(ctx context.Context, events []types.Event) (*ReplayResult, error) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b types.Event) int { return a.Date().Compare(b.Date()) })

	result := &ReplayResult{}
	if len(sorted) == 0 {
		return result, nil
	}
	result.Start = sorted[0].Date()
	result.End = sorted[len(sorted)-1].Date()

	var bar *progressbar.ProgressBar
	if r.config.showProgress {
		bar = initProgressBar(len(sorted))
	}

	for i, ev := range sorted {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		// Snapshot the previous day once its last event is applied.
		if i > 0 && r.config.dailySnapshot && !sameDay(sorted[i-1].Date(), ev.Date()) {
			result.Snapshots = append(result.Snapshots, r.portfolio.GetPortfolioSnapshot(sorted[i-1].Date()))
		}
		if err := r.portfolio.Apply(ev); err != nil {
			result.Rejected = append(result.Rejected, Rejection{Index: i, Event: ev, Err: err})
		} else {
			result.Applied++
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if r.config.dailySnapshot {
		result.Snapshots = append(result.Snapshots, r.portfolio.GetPortfolioSnapshot(result.End))
	}

	r.logger.Info("replay finished",
		zap.Int("events", len(sorted)),
		zap.Int("applied", result.Applied),
		zap.Int("rejected", len(result.Rejected)),
	)
	return result, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Replaying events..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
