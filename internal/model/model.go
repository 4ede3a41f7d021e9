// Package model defines the shot breakdown result structures. Everything
// here is assembled during a single reconstruction pass and is immutable
// once the ShotModel is returned; consumers (reporters, the store, the
// differ) only ever read it.
package model

import (
	"fmt"
	"strings"
)

// CutPoints are a shot's boundaries in VFX frame space: a project-global
// integer frame counter seeded by the counter track, unrelated to timeline
// position. Both ends are inclusive.
type CutPoints struct {
	CutIn  int64 `json:"cut_in"`
	CutOut int64 `json:"cut_out"`
}

// Duration returns the shot length in frames.
func (c CutPoints) Duration() int64 {
	return c.CutOut - c.CutIn + 1
}

// ShotSpan is one shot's identity and timeline interval. TimelineIn is
// inclusive, TimelineOut exclusive, both in timeline frames.
type ShotSpan struct {
	ShotCode    string `json:"shot_code"`
	TimelineIn  int64  `json:"timeline_in"`
	TimelineOut int64  `json:"timeline_out"`
	CutOrder    int    `json:"cut_order"`
}

// Role identifies an element's layer: RoleBackground or Foreground(n).
type Role int

// RoleBackground is the lowest usable element track.
const RoleBackground Role = 0

// Foreground returns the role for the nth foreground layer (1-based).
func Foreground(n int) Role {
	return Role(n)
}

// Name returns the editorial element name for the role.
func (r Role) Name() string {
	if r == RoleBackground {
		return "ScanBg"
	}
	return fmt.Sprintf("ScanFg%02d", int(r))
}

// IsBackground reports whether the role is the background layer.
func (r Role) IsBackground() bool {
	return r == RoleBackground
}

// RetimeKind tags a RetimeResult variant.
type RetimeKind int

const (
	// RetimeNone means source and timeline durations match exactly.
	RetimeNone RetimeKind = iota
	// RetimeConstant means a single constant speed change.
	RetimeConstant
	// RetimeNonLinear means per-segment speeds differ across a merged run.
	RetimeNonLinear
)

// FramePair maps a timeline frame to a source frame, both in VFX space.
type FramePair struct {
	Timeline int64 `json:"timeline"`
	Source   int64 `json:"source"`
}

// RetimeResult classifies an element's speed change. SpeedPercent is only
// meaningful for RetimeConstant (source frames consumed per 100 timeline
// frames; 200 = double speed, 50 = half speed). Mapping is only populated
// for RetimeNonLinear.
type RetimeResult struct {
	Kind         RetimeKind  `json:"kind"`
	SpeedPercent int64       `json:"speed_percent,omitempty"`
	Mapping      []FramePair `json:"mapping,omitempty"`
}

// Summary renders the human-readable retime column: empty for no retime, a
// percentage for constant speed, a frame mapping for non-linear.
func (r RetimeResult) Summary() string {
	switch r.Kind {
	case RetimeConstant:
		return fmt.Sprintf("%d%%", r.SpeedPercent)
	case RetimeNonLinear:
		pairs := make([]string, len(r.Mapping))
		for i, p := range r.Mapping {
			pairs[i] = fmt.Sprintf("%d -> %d", p.Timeline, p.Source)
		}
		return strings.Join(pairs, ", ")
	default:
		return ""
	}
}

// Equal reports whether two retime results have the same variant and
// parameters.
func (r RetimeResult) Equal(o RetimeResult) bool {
	if r.Kind != o.Kind {
		return false
	}
	switch r.Kind {
	case RetimeConstant:
		return r.SpeedPercent == o.SpeedPercent
	case RetimeNonLinear:
		if len(r.Mapping) != len(o.Mapping) {
			return false
		}
		for i := range r.Mapping {
			if r.Mapping[i] != o.Mapping[i] {
				return false
			}
		}
	}
	return true
}

// ScaleResult reports the zoom transform at an element's in-point. A nil
// *ScaleResult means the host exposed no transform data at all, which is
// distinct from an explicit unity zoom.
type ScaleResult struct {
	ZoomX float64 `json:"zoom_x"`
}

// Summary renders the scale column, empty at unity.
func (s *ScaleResult) Summary() string {
	if s == nil || s.ZoomX == 1 {
		return ""
	}
	p := s.ZoomX * 100
	if p == float64(int64(p)) {
		return fmt.Sprintf("Scale: %d%%", int64(p))
	}
	return fmt.Sprintf("Scale: %.2f%%", p)
}

// Segment is one merged-run constituent: how many timeline frames it
// occupies and how many source frames it consumes. Retained on the element
// so the retime classification stays reproducible from the model alone.
type Segment struct {
	TimelineFrames int64 `json:"timeline_frames"`
	SourceFrames   int64 `json:"source_frames"`
}

// Element is one visual layer contributing to a shot, possibly merged from
// several back-to-back source clips on the same track.
type Element struct {
	ShotCode   string `json:"shot_code"`
	Role       Role   `json:"role"`
	TrackIndex int    `json:"track_index"`
	ReelName   string `json:"reel"`

	// Timeline interval (frames, out exclusive)
	TimelineIn  int64 `json:"timeline_in"`
	TimelineOut int64 `json:"timeline_out"`

	// Source media interval (1-based frames, inclusive) and timecodes
	ClipInTC     string `json:"clip_in_tc"`
	ClipInFrame  int64  `json:"clip_in_frame"`
	ClipOutFrame int64  `json:"clip_out_frame"`
	ClipOutTC    string `json:"clip_out_tc"`

	// VFX frame space, relative to the shot's Cut In
	ClipIn  int64 `json:"clip_in"`
	ClipOut int64 `json:"clip_out"`
	HeadIn  int64 `json:"head_in"`
	TailOut int64 `json:"tail_out"`

	DurationFrames int64 `json:"duration_frames"`

	Segments []Segment    `json:"segments,omitempty"`
	Retime   RetimeResult `json:"retime"`
	Scale    *ScaleResult `json:"scale,omitempty"`
}

// ElementName returns the editorial name of the element's layer.
func (e *Element) ElementName() string {
	return e.Role.Name()
}

// Shot is one reconstructed shot with its cut points and ordered elements.
type Shot struct {
	Span ShotSpan  `json:"span"`
	Cut  CutPoints `json:"cut"`

	WorkIn  int64 `json:"work_in"`
	WorkOut int64 `json:"work_out"`

	CutInTC       string `json:"cut_in_tc"`
	EditorialName string `json:"editorial_name"`

	BgRetime bool `json:"bg_retime"`
	FgRetime bool `json:"fg_retime"`

	Elements []Element `json:"elements"`
}

// Background returns the shot's background element, or nil when the
// background track is empty across the span.
func (s *Shot) Background() *Element {
	for i := range s.Elements {
		if s.Elements[i].Role.IsBackground() {
			return &s.Elements[i]
		}
	}
	return nil
}

// ShotModel is the complete reconstruction of one timeline.
type ShotModel struct {
	Sequence string  `json:"sequence"`
	Timeline string  `json:"timeline"`
	FPS      float64 `json:"fps"`
	Shots    []Shot  `json:"shots"`
}

// Shot returns the nth occurrence (0-based) of a shot code, or nil.
// Repeated codes are legal: a shot split across two subtitle spans is two
// independent shots.
func (m *ShotModel) Shot(code string, occurrence int) *Shot {
	seen := 0
	for i := range m.Shots {
		if m.Shots[i].Span.ShotCode == code {
			if seen == occurrence {
				return &m.Shots[i]
			}
			seen++
		}
	}
	return nil
}

// ShotChange is the cut drift for one shot matched between two models.
// Positive deltas mean the boundary moved later.
type ShotChange struct {
	ShotCode      string `json:"shot_code"`
	DeltaCutIn    int64  `json:"delta_cut_in"`
	DeltaCutOut   int64  `json:"delta_cut_out"`
	RetimeChanged bool   `json:"retime_changed"`
}

// Changed reports whether anything moved for this shot.
func (c ShotChange) Changed() bool {
	return c.DeltaCutIn != 0 || c.DeltaCutOut != 0 || c.RetimeChanged
}

// ChangeReport describes how cut points shifted between two reconstructions
// of the same sequence.
type ChangeReport struct {
	CurrentTimeline string       `json:"current_timeline"`
	OldTimeline     string       `json:"old_timeline"`
	Matched         []ShotChange `json:"matched"`
	Added           []string     `json:"added"`
	Removed         []string     `json:"removed"`
}
