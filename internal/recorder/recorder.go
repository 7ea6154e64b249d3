package recorder

import "LynchScreen/internal/model"

// Recorder archives run results for later analysis. Recording failures are
// logged by the caller and never fail the run.
type Recorder interface {
	RecordRun(snap *model.PortfolioSnapshot, delta model.HistoryDelta) error
	Close() error
}
