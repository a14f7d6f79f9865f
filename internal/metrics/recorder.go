package metrics

import "time"

// ResultLabel enumerates command result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for CLI commands and the errors they
// report.
type Recorder interface {
	IncErrorReported(category, kind string)
	ObserveCommandDuration(command string, d time.Duration)
	IncCommandResult(command string, result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncErrorReported(string, string)              {}
func (NoopRecorder) ObserveCommandDuration(string, time.Duration) {}
func (NoopRecorder) IncCommandResult(string, ResultLabel)         {}
