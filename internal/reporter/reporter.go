package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	TimelineLoaded(summary TimelineSummary)
	BreakdownStarted(totalShots int)
	ShotProgress(update ShotProgress)
	BreakdownComplete(summary BreakdownSummary)
	ChangesComplete(summary ChangeSummary)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) TimelineLoaded(TimelineSummary)      {}
func (NullReporter) BreakdownStarted(int)                {}
func (NullReporter) ShotProgress(ShotProgress)           {}
func (NullReporter) BreakdownComplete(BreakdownSummary)  {}
func (NullReporter) ChangesComplete(ChangeSummary)       {}
func (NullReporter) Warning(string)                      {}
func (NullReporter) Error(ReporterError)                 {}
func (NullReporter) OperationComplete(string)            {}
func (NullReporter) Verbose(string)                      {}
