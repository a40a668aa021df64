package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// ClosedPolicy decides what the portfolio does with a position once a trade
// leaves it flat.
type ClosedPolicy int

const (
	// RetainClosed keeps flat positions with the open ones; a later trade
	// reopens the same position.
	RetainClosed ClosedPolicy = iota
	// ArchiveClosed moves flat positions to the closed set; a later trade
	// on the key opens a new position.
	ArchiveClosed
)

func (c ClosedPolicy) String() string {
	switch c {
	case RetainClosed:
		return "retain"
	case ArchiveClosed:
		return "archive"
	default:
		return "unknown"
	}
}

func ParseClosedPolicy(s string) (ClosedPolicy, error) {
	switch s {
	case "retain", "":
		return RetainClosed, nil
	case "archive":
		return ArchiveClosed, nil
	default:
		return 0, fmt.Errorf("unknown closed policy: %q", s)
	}
}

type PortfolioConfig struct {
	closedPolicy ClosedPolicy
	logger       *zap.Logger
}

func NewPortfolioConfig(closedPolicy ClosedPolicy, logger *zap.Logger) *PortfolioConfig {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioConfig{
		closedPolicy: closedPolicy,
		logger:       logger,
	}
}

type ReplayConfig struct {
	showProgress  bool
	dailySnapshot bool
}

func NewReplayConfig(showProgress, dailySnapshot bool) *ReplayConfig {
	return &ReplayConfig{
		showProgress:  showProgress,
		dailySnapshot: dailySnapshot,
	}
}

type ReportingConfig struct {
	printReport bool
	reportName  string
	filePath    string
}

// NewReportingConfig configures the end-of-run report. When filePath is set,
// every log row is written there as CSV.
func NewReportingConfig(printReport bool, reportName string, filePath string) *ReportingConfig {
	return &ReportingConfig{
		printReport: printReport,
		reportName:  reportName,
		filePath:    filePath,
	}
}
