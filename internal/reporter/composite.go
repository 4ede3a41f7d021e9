package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) TimelineLoaded(summary TimelineSummary) {
	for _, r := range c.reporters {
		r.TimelineLoaded(summary)
	}
}

func (c *CompositeReporter) BreakdownStarted(totalShots int) {
	for _, r := range c.reporters {
		r.BreakdownStarted(totalShots)
	}
}

func (c *CompositeReporter) ShotProgress(update ShotProgress) {
	for _, r := range c.reporters {
		r.ShotProgress(update)
	}
}

func (c *CompositeReporter) BreakdownComplete(summary BreakdownSummary) {
	for _, r := range c.reporters {
		r.BreakdownComplete(summary)
	}
}

func (c *CompositeReporter) ChangesComplete(summary ChangeSummary) {
	for _, r := range c.reporters {
		r.ChangesComplete(summary)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) OperationComplete(message string) {
	for _, r := range c.reporters {
		r.OperationComplete(message)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
