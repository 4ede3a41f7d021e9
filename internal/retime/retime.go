// Package retime classifies speed changes by comparing how many timeline
// frames an element occupies against how many source frames it consumes.
package retime

import (
	"math"

	"github.com/ming-qiu/theia/internal/model"
)

// Detect classifies an element's retime from its merged-run segments.
// clipIn anchors the non-linear frame mapping in VFX frame space.
//
// Exact duration match is no retime. A ratio that holds across every
// segment to within tolerance is a constant speed, reported as source
// frames consumed per 100 timeline frames (200 = double speed, 50 = slow
// motion). Anything else, including a ratio just outside tolerance, falls
// through to a non-linear mapping; ambiguity degrades, it never fails.
func Detect(segments []model.Segment, clipIn int64, tolerance float64) model.RetimeResult {
	var dt, ds int64
	for _, s := range segments {
		dt += s.TimelineFrames
		ds += s.SourceFrames
	}

	if dt <= 0 {
		return model.RetimeResult{Kind: model.RetimeNone}
	}
	if ds == dt {
		return model.RetimeResult{Kind: model.RetimeNone}
	}

	if constantAcross(segments, float64(ds)/float64(dt), tolerance) {
		return model.RetimeResult{
			Kind:         model.RetimeConstant,
			SpeedPercent: int64(math.Round(float64(ds) / float64(dt) * 100)),
		}
	}

	return model.RetimeResult{
		Kind:    model.RetimeNonLinear,
		Mapping: mapping(segments, clipIn),
	}
}

// constantAcross reports whether every segment's speed matches the overall
// ratio within the relative tolerance.
func constantAcross(segments []model.Segment, ratio, tolerance float64) bool {
	for _, s := range segments {
		if s.TimelineFrames <= 0 {
			return false
		}
		speed := float64(s.SourceFrames) / float64(s.TimelineFrames)
		if math.Abs(speed-ratio) > ratio*tolerance {
			return false
		}
	}
	return true
}

// mapping builds the ordered (timeline -> source) boundary pairs for a
// non-linear run. The first pair anchors both counters at the element's
// clip-in; each segment then advances them by its inclusive duration.
func mapping(segments []model.Segment, clipIn int64) []model.FramePair {
	pairs := make([]model.FramePair, 0, len(segments)+1)
	pairs = append(pairs, model.FramePair{Timeline: clipIn, Source: clipIn})

	t, s := clipIn-1, clipIn-1
	for _, seg := range segments {
		t += seg.TimelineFrames
		s += seg.SourceFrames
		pairs = append(pairs, model.FramePair{Timeline: t, Source: s})
	}
	return pairs
}
