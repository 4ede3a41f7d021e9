// Package source defines the timeline source adapter boundary: the data
// contract a host editing application (or an offline snapshot of one) must
// satisfy for reconstruction. The core never talks to a host directly and
// never mutates anything it receives from an adapter.
package source

import (
	"context"
)

// SubtitleItem is one subtitle track item as reported by the host. Each
// item spans exactly one shot; the first whitespace-delimited token of Text
// is the shot code.
type SubtitleItem struct {
	Text           string  `yaml:"text" json:"text"`
	TimelineInSec  float64 `yaml:"timeline_in" json:"timeline_in"`
	TimelineOutSec float64 `yaml:"timeline_out" json:"timeline_out"`
}

// RawClip is one video clip as reported by the host. Times are raw
// floating-point seconds exactly as the host reports them; conversion to
// integer frames happens once, at the pipeline boundary, under the
// configured half-frame correction. Read-only once handed to the core.
type RawClip struct {
	TimelineInSec  float64            `yaml:"timeline_in" json:"timeline_in"`
	TimelineOutSec float64            `yaml:"timeline_out" json:"timeline_out"`
	SourceInSec    float64            `yaml:"source_in" json:"source_in"`
	SourceOutSec   float64            `yaml:"source_out" json:"source_out"`
	ReelName       string             `yaml:"reel" json:"reel"`
	Transform      map[string]float64 `yaml:"transform,omitempty" json:"transform,omitempty"`
}

// Track is one video track with its ordered clips.
type Track struct {
	Index int       `yaml:"index" json:"index"`
	Name  string    `yaml:"name" json:"name"`
	Clips []RawClip `yaml:"clips" json:"clips"`
}

// Timeline is an immutable snapshot of one timeline, fetched in full before
// reconstruction starts so a run is never affected by concurrent edits.
type Timeline struct {
	Name      string         `yaml:"name" json:"name"`
	FPS       float64        `yaml:"fps" json:"fps"`
	Tracks    []Track        `yaml:"tracks" json:"tracks"`
	Subtitles []SubtitleItem `yaml:"subtitles" json:"subtitles"`
}

// Track returns the track with the given 1-based index, or nil.
func (t *Timeline) Track(index int) *Track {
	for i := range t.Tracks {
		if t.Tracks[i].Index == index {
			return &t.Tracks[i]
		}
	}
	return nil
}

// MaxTrackIndex returns the highest track index present.
func (t *Timeline) MaxTrackIndex() int {
	max := 0
	for i := range t.Tracks {
		if t.Tracks[i].Index > max {
			max = t.Tracks[i].Index
		}
	}
	return max
}

// Adapter supplies timeline snapshots. Implementations may be backed by a
// live host bridge, an offline project snapshot, or test fixtures; the core
// treats them interchangeably. An empty name requests the host's current
// timeline.
type Adapter interface {
	Timeline(ctx context.Context, name string) (*Timeline, error)
}
