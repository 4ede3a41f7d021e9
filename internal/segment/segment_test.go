package segment

import (
	"testing"

	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/source"
)

func timelineWith(subs ...source.SubtitleItem) *source.Timeline {
	return &source.Timeline{Name: "ep101_master", FPS: 24, Subtitles: subs}
}

func TestSpans(t *testing.T) {
	tl := timelineWith(
		source.SubtitleItem{Text: "SH020 paint out rig", TimelineInSec: 1.0, TimelineOutSec: 3.0},
		source.SubtitleItem{Text: "SH010", TimelineInSec: 0.0, TimelineOutSec: 1.0},
		source.SubtitleItem{Text: "SH030\nwire removal", TimelineInSec: 3.0, TimelineOutSec: 4.0},
	)

	spans, err := Spans(tl, false)
	if err != nil {
		t.Fatalf("Spans() error: %v", err)
	}

	if len(spans) != 3 {
		t.Fatalf("len(spans) = %d, want 3", len(spans))
	}

	wantCodes := []string{"SH010", "SH020", "SH030"}
	for i, want := range wantCodes {
		if spans[i].ShotCode != want {
			t.Errorf("spans[%d].ShotCode = %q, want %q", i, spans[i].ShotCode, want)
		}
		if spans[i].CutOrder != i+1 {
			t.Errorf("spans[%d].CutOrder = %d, want %d", i, spans[i].CutOrder, i+1)
		}
	}

	if spans[0].TimelineIn != 0 || spans[0].TimelineOut != 24 {
		t.Errorf("spans[0] interval = %d..%d, want 0..24", spans[0].TimelineIn, spans[0].TimelineOut)
	}
	if spans[1].TimelineIn != 24 || spans[1].TimelineOut != 72 {
		t.Errorf("spans[1] interval = %d..%d, want 24..72", spans[1].TimelineIn, spans[1].TimelineOut)
	}
}

func TestSpansOrderedAndNonOverlapping(t *testing.T) {
	tl := timelineWith(
		source.SubtitleItem{Text: "SH050", TimelineInSec: 10.0, TimelineOutSec: 12.0},
		source.SubtitleItem{Text: "SH030", TimelineInSec: 5.0, TimelineOutSec: 7.5},
		source.SubtitleItem{Text: "SH010", TimelineInSec: 0.0, TimelineOutSec: 5.0},
	)

	spans, err := Spans(tl, false)
	if err != nil {
		t.Fatalf("Spans() error: %v", err)
	}

	for i := 1; i < len(spans); i++ {
		if spans[i].TimelineIn < spans[i-1].TimelineOut {
			t.Errorf("spans %d and %d overlap", i-1, i)
		}
		if spans[i].CutOrder <= spans[i-1].CutOrder {
			t.Errorf("cut order not strictly increasing at %d", i)
		}
	}
}

func TestSpansRepeatedCodesKept(t *testing.T) {
	tl := timelineWith(
		source.SubtitleItem{Text: "SH010", TimelineInSec: 0.0, TimelineOutSec: 1.0},
		source.SubtitleItem{Text: "SH020", TimelineInSec: 1.0, TimelineOutSec: 2.0},
		source.SubtitleItem{Text: "SH010", TimelineInSec: 2.0, TimelineOutSec: 3.0},
	)

	spans, err := Spans(tl, false)
	if err != nil {
		t.Fatalf("Spans() error: %v", err)
	}
	if len(spans) != 3 {
		t.Fatalf("len(spans) = %d, want 3 (repeats are independent shots)", len(spans))
	}
	if spans[0].ShotCode != "SH010" || spans[2].ShotCode != "SH010" {
		t.Errorf("repeated code not preserved: %+v", spans)
	}
}

func TestSpansEmptyTrack(t *testing.T) {
	_, err := Spans(timelineWith(), false)
	if !errors.IsKind(err, errors.KindNoSubtitleItems) {
		t.Errorf("error = %v, want KindNoSubtitleItems", err)
	}
}

func TestSpansMalformedShotCode(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty text", ""},
		{"whitespace only", "   \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := timelineWith(source.SubtitleItem{Text: tt.text, TimelineInSec: 0, TimelineOutSec: 1})
			_, err := Spans(tl, false)
			if !errors.IsKind(err, errors.KindMalformedShotCode) {
				t.Errorf("error = %v, want KindMalformedShotCode", err)
			}
		})
	}
}

func TestSpansOverlapRejected(t *testing.T) {
	tl := timelineWith(
		source.SubtitleItem{Text: "SH010", TimelineInSec: 0.0, TimelineOutSec: 2.0},
		source.SubtitleItem{Text: "SH020", TimelineInSec: 1.0, TimelineOutSec: 3.0},
	)

	_, err := Spans(tl, false)
	if !errors.IsKind(err, errors.KindMalformedShotCode) {
		t.Errorf("error = %v, want KindMalformedShotCode", err)
	}
}

func TestSpansInvertedSpanRejected(t *testing.T) {
	tl := timelineWith(source.SubtitleItem{Text: "SH010", TimelineInSec: 2.0, TimelineOutSec: 2.0})

	_, err := Spans(tl, false)
	if !errors.IsKind(err, errors.KindMalformedShotCode) {
		t.Errorf("error = %v, want KindMalformedShotCode", err)
	}
}
