package reporter

import (
	"bytes"
	"strings"
	"testing"
)

type countingReporter struct {
	NullReporter
	events int
}

func (c *countingReporter) BreakdownStarted(int)      { c.events++ }
func (c *countingReporter) ShotProgress(ShotProgress) { c.events++ }
func (c *countingReporter) Warning(string)            { c.events++ }

func TestCompositeFansOut(t *testing.T) {
	a := &countingReporter{}
	b := &countingReporter{}
	comp := NewCompositeReporter(a, b)

	comp.BreakdownStarted(3)
	comp.ShotProgress(ShotProgress{ShotCode: "SH010", Index: 1, Total: 3})
	comp.Warning("counter clip ends early")

	if a.events != 3 || b.events != 3 {
		t.Fatalf("events = %d/%d, want 3/3", a.events, b.events)
	}
}

func TestCompositeMirrorsIntoWriter(t *testing.T) {
	var buf bytes.Buffer
	comp := NewCompositeReporter(NullReporter{}, NewJSONReporterWithWriter(&buf))

	comp.BreakdownStarted(2)
	comp.OperationComplete("2 shots reconstructed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d event lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "breakdown_started") {
		t.Errorf("first event = %s", lines[0])
	}
}
