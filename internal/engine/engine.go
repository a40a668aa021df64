package engine

import (
	"context"
	"fmt"
	"os"

	"positions/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine replays an event stream into a portfolio and reports on the result.
type Engine struct {
	portfolio       *Portfolio
	store           logStore
	replayConfig    *ReplayConfig
	reportingConfig *ReportingConfig
	runID           uuid.UUID
	logger          *zap.Logger
}

// NewEngine builds an engine around a fresh portfolio. store may be nil, in
// which case nothing is persisted.
func NewEngine(portfolioConfig *PortfolioConfig, replayConfig *ReplayConfig, reportingConfig *ReportingConfig, store logStore) *Engine {
	if portfolioConfig == nil {
		portfolioConfig = NewPortfolioConfig(RetainClosed, nil)
	}
	if reportingConfig == nil {
		reportingConfig = NewReportingConfig(false, "", "")
	}
	runID := uuid.New()
	return &Engine{
		portfolio:       NewPortfolio(portfolioConfig),
		store:           store,
		replayConfig:    replayConfig,
		reportingConfig: reportingConfig,
		runID:           runID,
		logger:          portfolioConfig.logger.With(zap.Stringer("run_id", runID)),
	}
}

func (e *Engine) Run(ctx context.Context, events []types.Event) (*Report, error) {
	// Do the run loop
	result, err := newReplayer(e.replayConfig, e.portfolio, e.logger).run(ctx, events)
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if err := e.persist(ctx, result); err != nil {
			return nil, err
		}
	}

	report := e.generateReport(result)
	if e.reportingConfig.filePath != "" {
		if err := writeLogsCSVFile(e.reportingConfig.filePath, e.portfolio); err != nil {
			return nil, err
		}
	}
	if e.reportingConfig.printReport {
		printReport(os.Stdout, e.reportingConfig.reportName, report)
	}
	return report, nil
}

// persist stores every position and cash log, then the snapshots taken
// during the replay.
func (e *Engine) persist(ctx context.Context, result *ReplayResult) error {
	var rows int64
	save := func(key string, class types.AssetClass, lifecycle int, entries []types.LogEntry) error {
		n, err := e.store.SaveLog(ctx, e.runID, key, class, lifecycle, entries)
		if err != nil {
			return fmt.Errorf("save log %s: %w", key, err)
		}
		rows += n
		return nil
	}

	for _, key := range e.portfolio.Keys() {
		pos, _ := e.portfolio.Position(key)
		// Archived lifecycles of the key come first.
		lifecycle := len(e.portfolio.Closed(key))
		if err := save(key, pos.AssetClass(), lifecycle, pos.Log().Entries()); err != nil {
			return err
		}
	}
	for _, key := range e.portfolio.ClosedKeys() {
		for i, pos := range e.portfolio.Closed(key) {
			if err := save(key, pos.AssetClass(), i, pos.Log().Entries()); err != nil {
				return err
			}
		}
	}
	for _, cur := range e.portfolio.Currencies() {
		c, _ := e.portfolio.Cash(cur)
		if err := save(cur, types.AssetClassCash, 0, c.Log().Entries()); err != nil {
			return err
		}
	}
	for _, view := range result.Snapshots {
		if err := e.store.SaveSnapshot(ctx, e.runID, view); err != nil {
			return fmt.Errorf("save snapshot %s: %w", view.Time.Format("2006-01-02"), err)
		}
	}

	e.logger.Info("run persisted", zap.Int64("rows", rows), zap.Int("snapshots", len(result.Snapshots)))
	return nil
}

func (e *Engine) Portfolio() *Portfolio { return e.portfolio }
func (e *Engine) RunID() uuid.UUID      { return e.runID }
