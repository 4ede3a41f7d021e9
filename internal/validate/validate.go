// Package validate runs post-reconstruction consistency checks over a shot
// model before it is reported or persisted.
package validate

import (
	"fmt"
	"strings"

	"github.com/ming-qiu/theia/internal/config"
	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/model"
)

// Step is one named check with its outcome.
type Step struct {
	Name    string
	Passed  bool
	Details string
}

// Result aggregates every check across the model.
type Result struct {
	Passed bool
	Steps  []Step
}

func (r *Result) add(name string, passed bool, details string) {
	if !passed {
		r.Passed = false
	}
	r.Steps = append(r.Steps, Step{Name: name, Passed: passed, Details: details})
}

// Check runs all consistency checks and reports each outcome.
func Check(m *model.ShotModel, cfg *config.Config) *Result {
	res := &Result{Passed: true}

	ok, details := checkSpanOrder(m)
	res.add("span order", ok, details)
	ok, details = checkCutOrder(m)
	res.add("cut order", ok, details)
	ok, details = checkCutPoints(m)
	res.add("cut points", ok, details)
	ok, details = checkWorkHandles(m, cfg.WorkHandle)
	res.add("work handles", ok, details)
	ok, details = checkElementRanges(m)
	res.add("element ranges", ok, details)

	return res
}

// Model runs Check and converts any failure into a single error.
func Model(m *model.ShotModel, cfg *config.Config) error {
	res := Check(m, cfg)
	if res.Passed {
		return nil
	}
	var failed []string
	for _, s := range res.Steps {
		if !s.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", s.Name, s.Details))
		}
	}
	return errors.NewInconsistentModelError(strings.Join(failed, "; "), "")
}

// checkSpanOrder verifies shots are sorted by timeline position and do not
// overlap.
func checkSpanOrder(m *model.ShotModel) (bool, string) {
	for i := 1; i < len(m.Shots); i++ {
		prev, cur := m.Shots[i-1].Span, m.Shots[i].Span
		if cur.TimelineIn < prev.TimelineIn {
			return false, fmt.Sprintf("shot %s starts before %s", cur.ShotCode, prev.ShotCode)
		}
		if cur.TimelineIn < prev.TimelineOut {
			return false, fmt.Sprintf("shots %s and %s overlap on the timeline", prev.ShotCode, cur.ShotCode)
		}
	}
	return true, fmt.Sprintf("%d spans ordered and disjoint", len(m.Shots))
}

// checkCutOrder verifies cut order numbers increase monotonically.
func checkCutOrder(m *model.ShotModel) (bool, string) {
	for i := 1; i < len(m.Shots); i++ {
		if m.Shots[i].Span.CutOrder <= m.Shots[i-1].Span.CutOrder {
			return false, fmt.Sprintf("cut order not increasing at shot %s", m.Shots[i].Span.ShotCode)
		}
	}
	return true, "cut order monotonic"
}

// checkCutPoints verifies each shot's cut interval is well formed. Duration
// is deliberately not compared against the timeline span: a counter clip
// swap mid-shot makes the two differ legitimately.
func checkCutPoints(m *model.ShotModel) (bool, string) {
	for i := range m.Shots {
		s := &m.Shots[i]
		if s.Cut.CutOut < s.Cut.CutIn {
			return false, fmt.Sprintf("shot %s has inverted cut points %d-%d", s.Span.ShotCode, s.Cut.CutIn, s.Cut.CutOut)
		}
	}
	return true, "cut points consistent"
}

// checkWorkHandles verifies each shot's work range is its cut range padded
// by the configured handle.
func checkWorkHandles(m *model.ShotModel, workHandle int64) (bool, string) {
	for i := range m.Shots {
		s := &m.Shots[i]
		if s.WorkIn != s.Cut.CutIn-workHandle || s.WorkOut != s.Cut.CutOut+workHandle {
			return false, fmt.Sprintf("shot %s work range %d-%d does not match cut range %d-%d with handle %d",
				s.Span.ShotCode, s.WorkIn, s.WorkOut, s.Cut.CutIn, s.Cut.CutOut, workHandle)
		}
	}
	return true, "work handles applied"
}

// checkElementRanges verifies every element's VFX interval is well formed
// and overlaps its shot's cut range. An element may run past the shot
// boundary at either edge, so containment is not required.
func checkElementRanges(m *model.ShotModel) (bool, string) {
	count := 0
	for i := range m.Shots {
		s := &m.Shots[i]
		for j := range s.Elements {
			e := &s.Elements[j]
			count++
			if e.ClipOut < e.ClipIn {
				return false, fmt.Sprintf("shot %s element %s has inverted clip range %d-%d",
					s.Span.ShotCode, e.ElementName(), e.ClipIn, e.ClipOut)
			}
			if e.ClipOut < s.Cut.CutIn || e.ClipIn > s.Cut.CutOut {
				return false, fmt.Sprintf("shot %s element %s range %d-%d does not overlap cut range %d-%d",
					s.Span.ShotCode, e.ElementName(), e.ClipIn, e.ClipOut, s.Cut.CutIn, s.Cut.CutOut)
			}
		}
	}
	return true, fmt.Sprintf("%d element ranges consistent", count)
}
