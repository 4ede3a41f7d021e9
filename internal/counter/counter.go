// Package counter resolves shot cut points in VFX frame space from the
// counter track: a dedicated video track whose clips encode an absolute
// frame number as their source position. The counter video's burned-in
// number for its first frame equals its 1-based source frame, so reading a
// clip's source in-point recovers the numbering origin.
package counter

import (
	"fmt"
	"strings"

	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/source"
	"github.com/ming-qiu/theia/internal/timecode"
)

// clip is a counter clip with times already reduced to integer frames.
type clip struct {
	timelineIn  int64 // inclusive
	timelineOut int64 // exclusive
	sourceStart int64 // 1-based counter frame at timelineIn
}

// Resolver computes VFX cut points for shot spans against one counter track.
type Resolver struct {
	trackIndex int
	clips      []clip
}

// FindTrack returns the counter track index for a timeline. An explicit
// configured index is used as-is; index 0 auto-detects the highest video
// track whose name contains "counter" (case-insensitive).
func FindTrack(tl *source.Timeline, configured int) (int, error) {
	if configured != 0 {
		if tl.Track(configured) == nil {
			return 0, errors.NewAmbiguousTrackRoleError(
				fmt.Sprintf("configured counter track %d does not exist on timeline %q", configured, tl.Name))
		}
		return configured, nil
	}

	best := 0
	for i := range tl.Tracks {
		t := &tl.Tracks[i]
		if strings.Contains(strings.ToLower(t.Name), "counter") && t.Index > best {
			best = t.Index
		}
	}
	if best == 0 {
		return 0, errors.NewAmbiguousTrackRoleError(
			fmt.Sprintf("no counter track found on timeline %q; name one \"counter\" or configure an index", tl.Name))
	}
	return best, nil
}

// NewResolver builds a resolver from the counter track's clips.
func NewResolver(track *source.Track, fps float64, halfFrame bool) *Resolver {
	r := &Resolver{trackIndex: track.Index}
	for _, c := range track.Clips {
		r.clips = append(r.clips, clip{
			timelineIn:  timecode.FromSeconds(c.TimelineInSec, fps, halfFrame).Frames,
			timelineOut: timecode.FromSeconds(c.TimelineOutSec, fps, halfFrame).Frames,
			sourceStart: timecode.FromSeconds(c.SourceInSec, fps, halfFrame).Frames + 1,
		})
	}
	return r
}

// covering returns the counter clip containing timeline frame f, or nil.
func (r *Resolver) covering(f int64) *clip {
	for i := range r.clips {
		if f >= r.clips[i].timelineIn && f < r.clips[i].timelineOut {
			return &r.clips[i]
		}
	}
	return nil
}

// frameAt maps a timeline frame to its counter frame number.
func (r *Resolver) frameAt(f int64) (int64, bool) {
	c := r.covering(f)
	if c == nil {
		return 0, false
	}
	return c.sourceStart + (f - c.timelineIn), true
}

// CutPoints resolves a shot span's Cut In/Out. The two boundaries resolve
// independently: a counter cut or gap mid-shot is fine as long as each
// boundary frame is covered by some counter clip.
func (r *Resolver) CutPoints(span model.ShotSpan) (model.CutPoints, error) {
	cutIn, ok := r.frameAt(span.TimelineIn)
	if !ok {
		return model.CutPoints{}, errors.NewNoCounterClipError(span.ShotCode, r.trackIndex)
	}

	// TimelineOut is exclusive; the cut-out frame is the last frame inside
	// the span.
	cutOut, ok := r.frameAt(span.TimelineOut - 1)
	if !ok {
		return model.CutPoints{}, errors.NewNoCounterClipError(span.ShotCode, r.trackIndex)
	}

	return model.CutPoints{CutIn: cutIn, CutOut: cutOut}, nil
}
