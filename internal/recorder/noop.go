package recorder

import "LynchScreen/internal/model"

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.PortfolioSnapshot, _ model.HistoryDelta) error { return nil }
func (n *NoopRecorder) Close() error                                                     { return nil }
