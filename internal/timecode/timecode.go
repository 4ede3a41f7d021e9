// Package timecode provides frame-accurate time values and conversions
// between timecode strings, absolute seconds, and integer frame counts.
//
// Raw floating-point seconds from a timeline host are converted to integer
// frames exactly once, at the adapter boundary; everything downstream is
// integer arithmetic so floating-point error cannot re-accumulate.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TimeValue is an immutable point in timeline time: an exact frame count at
// a known frame rate.
type TimeValue struct {
	Frames int64
	FPS    float64
}

// FromFrames creates a TimeValue from an exact frame count.
func FromFrames(frames int64, fps float64) TimeValue {
	return TimeValue{Frames: frames, FPS: fps}
}

// FromSeconds converts floating-point seconds to a TimeValue, rounding to
// the nearest frame. When halfFrame is set, half a frame duration is
// subtracted before rounding. Some hosts report source times with a
// constant +0.5 frame bias of unknown origin; the flag compensates for it
// and is applied uniformly to every timestamp in a run, never auto-detected.
func FromSeconds(seconds, fps float64, halfFrame bool) TimeValue {
	if halfFrame {
		seconds -= 0.5 / fps
	}
	return TimeValue{Frames: int64(math.Round(seconds * fps)), FPS: fps}
}

// Seconds returns the time value as floating-point seconds. For display
// only; comparisons always go through frame counts.
func (t TimeValue) Seconds() float64 {
	return float64(t.Frames) / t.FPS
}

// Add returns a TimeValue offset by n frames.
func (t TimeValue) Add(n int64) TimeValue {
	return TimeValue{Frames: t.Frames + n, FPS: t.FPS}
}

// Sub returns the signed frame distance t - o. Both values must share a
// frame rate; mixed-rate timelines are not supported.
func (t TimeValue) Sub(o TimeValue) int64 {
	return t.Frames - o.Frames
}

// Before reports whether t is strictly earlier than o.
func (t TimeValue) Before(o TimeValue) bool {
	return t.Frames < o.Frames
}

// String formats the value as a non-drop timecode.
func (t TimeValue) String() string {
	return Format(t.Frames, t.FPS)
}

// Format renders an absolute frame count as HH:MM:SS:FF non-drop timecode.
// Fractional rates (23.976, 29.97) are formatted against their integer
// frame base, matching how editorial counters are burned in.
func Format(frames int64, fps float64) string {
	base := int64(math.Round(fps))
	if base <= 0 {
		base = 24
	}
	ff := frames % base
	totalSeconds := frames / base
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, ff)
}

// Parse converts an HH:MM:SS:FF timecode string to a TimeValue.
func Parse(tc string, fps float64) (TimeValue, error) {
	parts := strings.Split(strings.TrimSpace(tc), ":")
	if len(parts) != 4 {
		return TimeValue{}, fmt.Errorf("invalid timecode %q: expected HH:MM:SS:FF", tc)
	}

	var fields [4]int64
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return TimeValue{}, fmt.Errorf("invalid timecode %q: bad field %q", tc, p)
		}
		fields[i] = v
	}

	base := int64(math.Round(fps))
	if base <= 0 {
		return TimeValue{}, fmt.Errorf("invalid frame rate %v", fps)
	}
	if fields[3] >= base {
		return TimeValue{}, fmt.Errorf("invalid timecode %q: frame field %d exceeds rate %d", tc, fields[3], base)
	}

	frames := ((fields[0]*60+fields[1])*60+fields[2])*base + fields[3]
	return TimeValue{Frames: frames, FPS: fps}, nil
}

// FormatRate pretty-prints a frame rate: integers without decimals,
// fractional broadcast rates with up to three.
func FormatRate(fps float64) string {
	if fps == math.Trunc(fps) {
		return strconv.FormatInt(int64(fps), 10)
	}
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(fps, 'f', 3, 64), "0"), ".")
}
