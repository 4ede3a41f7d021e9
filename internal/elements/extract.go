// Package elements walks the layered video tracks of a timeline, extracts
// the clips contributing to each shot, and merges back-to-back source runs
// into single logical elements.
package elements

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/source"
	"github.com/ming-qiu/theia/internal/timecode"
)

// mergeToleranceFrames is how far apart two clips' source frames may sit
// and still count as back-to-back.
const mergeToleranceFrames = 1

// RoleMap is the ordered mapping from usable track index to element role,
// computed once per run from the configured track range. The first usable
// track is the Background; the rest are Foreground(1), Foreground(2), … in
// ascending track order.
type RoleMap struct {
	tracks []int
}

// BuildRoleMap resolves the usable element tracks for a timeline: the
// configured [bottom, top] range minus the counter track and any track
// whose name contains "ref" (case-insensitive).
func BuildRoleMap(tl *source.Timeline, bottom, top, counterTrack int) (*RoleMap, error) {
	if top == 0 {
		top = tl.MaxTrackIndex()
	}

	var usable []int
	for i := range tl.Tracks {
		t := &tl.Tracks[i]
		if t.Index < bottom || t.Index > top {
			continue
		}
		if t.Index == counterTrack {
			continue
		}
		if strings.Contains(strings.ToLower(t.Name), "ref") {
			continue
		}
		usable = append(usable, t.Index)
	}
	sort.Ints(usable)

	if len(usable) == 0 {
		return nil, errors.NewAmbiguousTrackRoleError(
			fmt.Sprintf("track range %d-%d yields no usable element tracks on timeline %q", bottom, top, tl.Name))
	}
	return &RoleMap{tracks: usable}, nil
}

// Tracks returns the usable track indexes in ascending order.
func (m *RoleMap) Tracks() []int {
	return m.tracks
}

// Role returns the element role for a usable track index.
func (m *RoleMap) Role(trackIndex int) model.Role {
	for pos, idx := range m.tracks {
		if idx == trackIndex {
			return model.Role(pos)
		}
	}
	return model.Role(-1)
}

// frameClip is a raw clip reduced to integer frames. Source frames are
// 1-based and inclusive, matching the numbering burned into editorial
// counters; timeline frames keep the half-open convention.
type frameClip struct {
	timelineIn  int64
	timelineOut int64
	sourceIn    int64
	sourceOut   int64
	reel        string
	transform   map[string]float64
}

func toFrameClip(c source.RawClip, fps float64, halfFrame bool) frameClip {
	return frameClip{
		timelineIn:  timecode.FromSeconds(c.TimelineInSec, fps, halfFrame).Frames,
		timelineOut: timecode.FromSeconds(c.TimelineOutSec, fps, halfFrame).Frames,
		sourceIn:    timecode.FromSeconds(c.SourceInSec, fps, halfFrame).Frames + 1,
		sourceOut:   timecode.FromSeconds(c.SourceOutSec, fps, halfFrame).Frames,
		reel:        c.ReelName,
		transform:   c.Transform,
	}
}

// backToBack reports whether next's source frames continue prev's within
// the merge tolerance.
func backToBack(prev, next frameClip) bool {
	d := next.sourceIn - prev.sourceOut
	if d < 0 {
		d = -d
	}
	return d <= mergeToleranceFrames
}

// Extract collects and merges the elements of one shot across the usable
// tracks. Elements come back ordered by track, then timeline position.
func Extract(tl *source.Timeline, roles *RoleMap, span model.ShotSpan, cut model.CutPoints,
	fps float64, halfFrame bool, scanHandle int64) []model.Element {

	var out []model.Element
	for _, trackIdx := range roles.tracks {
		track := tl.Track(trackIdx)
		if track == nil {
			continue
		}

		var clips []frameClip
		for _, raw := range track.Clips {
			fc := toFrameClip(raw, fps, halfFrame)
			// Any overlap with the span counts; elements may run past the
			// shot boundary at either edge.
			if fc.timelineIn < span.TimelineOut && fc.timelineOut > span.TimelineIn {
				clips = append(clips, fc)
			}
		}
		if len(clips) == 0 {
			continue
		}

		sort.Slice(clips, func(i, j int) bool {
			if clips[i].timelineIn != clips[j].timelineIn {
				return clips[i].timelineIn < clips[j].timelineIn
			}
			return clips[i].timelineOut < clips[j].timelineOut
		})

		for _, run := range mergeRuns(clips) {
			out = append(out, buildElement(run, span, cut, trackIdx, roles.Role(trackIdx), fps, scanHandle))
		}
	}
	return out
}

// mergeRuns groups consecutive same-reel, source-contiguous clips.
func mergeRuns(clips []frameClip) [][]frameClip {
	var runs [][]frameClip
	i := 0
	for i < len(clips) {
		run := []frameClip{clips[i]}
		j := i + 1
		for j < len(clips) &&
			clips[j].reel == clips[i].reel &&
			backToBack(run[len(run)-1], clips[j]) {
			run = append(run, clips[j])
			j++
		}
		runs = append(runs, run)
		i = j
	}
	return runs
}

func buildElement(run []frameClip, span model.ShotSpan, cut model.CutPoints,
	trackIdx int, role model.Role, fps float64, scanHandle int64) model.Element {

	first, last := run[0], run[len(run)-1]

	segments := make([]model.Segment, len(run))
	for i, c := range run {
		segments[i] = model.Segment{
			TimelineFrames: c.timelineOut - c.timelineIn,
			SourceFrames:   c.sourceOut - c.sourceIn + 1,
		}
	}

	clipIn := cut.CutIn + (first.timelineIn - span.TimelineIn)
	clipOut := cut.CutIn + (last.timelineOut - 1 - span.TimelineIn)

	return model.Element{
		ShotCode:       span.ShotCode,
		Role:           role,
		TrackIndex:     trackIdx,
		ReelName:       first.reel,
		TimelineIn:     first.timelineIn,
		TimelineOut:    last.timelineOut,
		ClipInTC:       timecode.Format(first.sourceIn, fps),
		ClipInFrame:    first.sourceIn,
		ClipOutFrame:   last.sourceOut,
		ClipOutTC:      timecode.Format(last.sourceOut, fps),
		ClipIn:         clipIn,
		ClipOut:        clipOut,
		HeadIn:         clipIn - scanHandle,
		TailOut:        clipOut + scanHandle,
		DurationFrames: clipOut - clipIn + 1,
		Segments:       segments,
		Scale:          scaleOf(first.transform),
	}
}

// VisibleBackground picks the element supplying the shot's editorial name
// and Cut In TC: the earliest element on the lowest non-empty usable track.
// That is usually the Background role, but falls through to the lowest
// foreground when the background track is empty across the span.
func VisibleBackground(els []model.Element) *model.Element {
	var best *model.Element
	for i := range els {
		e := &els[i]
		if best == nil ||
			e.TrackIndex < best.TrackIndex ||
			(e.TrackIndex == best.TrackIndex && e.TimelineIn < best.TimelineIn) {
			best = e
		}
	}
	return best
}
