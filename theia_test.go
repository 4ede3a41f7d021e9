package theia

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/source"
)

const fps = 24.0

func sec(frames int64) float64 {
	return float64(frames) / fps
}

func clip(tlIn, tlOut, srcIn, srcOut int64, reel string) source.RawClip {
	return source.RawClip{
		TimelineInSec:  sec(tlIn),
		TimelineOutSec: sec(tlOut),
		SourceInSec:    sec(srcIn),
		SourceOutSec:   sec(srcOut),
		ReelName:       reel,
	}
}

func twoShotTimeline(name string, secondShotFrames int64) source.Timeline {
	split := int64(124)
	end := split + secondShotFrames
	return source.Timeline{
		Name: name,
		FPS:  fps,
		Subtitles: []source.SubtitleItem{
			{Text: "SH010", TimelineInSec: sec(100), TimelineOutSec: sec(split)},
			{Text: "SH020", TimelineInSec: sec(split), TimelineOutSec: sec(end)},
		},
		Tracks: []source.Track{
			{Index: 1, Name: "Video 1", Clips: []source.RawClip{
				clip(100, split, 240, 240+(split-100), "A001_C001"),
				clip(split, end, 400, 400+secondShotFrames, "A002_C001"),
			}},
			{Index: 2, Name: "counter", Clips: []source.RawClip{
				clip(100, end, 1008, 1008+(end-100), "COUNTER"),
			}},
		},
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(WithTrackRange(0, 0)); err == nil {
		t.Error("expected error for bottom track 0")
	}
	if _, err := New(WithRetimeTolerance(2)); err == nil {
		t.Error("expected error for tolerance out of range")
	}
}

func TestReconstruct(t *testing.T) {
	bd, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	adapter := source.NewFixtureAdapter(twoShotTimeline("SEQ010_v002", 24))
	m, err := bd.Reconstruct(context.Background(), adapter, nil)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	if m.Sequence != "SEQ010" || len(m.Shots) != 2 {
		t.Fatalf("model = %q with %d shots", m.Sequence, len(m.Shots))
	}
	if m.Shots[0].Cut != (model.CutPoints{CutIn: 1009, CutOut: 1032}) {
		t.Errorf("first cut = %+v", m.Shots[0].Cut)
	}
	if m.Shots[1].Cut != (model.CutPoints{CutIn: 1033, CutOut: 1056}) {
		t.Errorf("second cut = %+v", m.Shots[1].Cut)
	}
}

func TestCompare(t *testing.T) {
	bd, err := New(WithTimeline("SEQ010_v003"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	adapter := source.NewFixtureAdapter(
		twoShotTimeline("SEQ010_v003", 36),
		twoShotTimeline("SEQ010_v002", 24),
	)

	cur, report, err := bd.Compare(context.Background(), adapter, "SEQ010_v002", nil)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if cur.Timeline != "SEQ010_v003" {
		t.Errorf("current timeline = %q", cur.Timeline)
	}
	if report.OldTimeline != "SEQ010_v002" {
		t.Errorf("old timeline = %q", report.OldTimeline)
	}
	if len(report.Matched) != 2 {
		t.Fatalf("matched = %d, want 2", len(report.Matched))
	}
	if report.Matched[0].Changed() {
		t.Errorf("SH010 should be unchanged: %+v", report.Matched[0])
	}
	if report.Matched[1].DeltaCutOut != 12 {
		t.Errorf("SH020 DeltaCutOut = %d, want 12", report.Matched[1].DeltaCutOut)
	}
}

func TestCompareOldTimelineMissing(t *testing.T) {
	bd, err := New(WithTimeline("SEQ010_v003"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	adapter := source.NewFixtureAdapter(twoShotTimeline("SEQ010_v003", 24))
	cur, report, err := bd.Compare(context.Background(), adapter, "SEQ010_v001", nil)
	if !errors.IsOldTimelineNotFound(err) {
		t.Fatalf("error = %v, want old timeline not found", err)
	}
	if cur == nil || len(cur.Shots) != 2 {
		t.Errorf("current model should survive a missing old edit, got %+v", cur)
	}
	if report != nil {
		t.Errorf("report = %+v, want nil", report)
	}
}

func TestCompareSaved(t *testing.T) {
	st, err := OpenStore(filepath.Join(t.TempDir(), "theia.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	bd, err := New(WithTimeline("SEQ010_v002"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	oldAdapter := source.NewFixtureAdapter(twoShotTimeline("SEQ010_v002", 24))
	oldModel, err := bd.Reconstruct(ctx, oldAdapter, nil)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if err := st.Save(ctx, oldModel); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	bd, err = New(WithTimeline("SEQ010_v003"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	curAdapter := source.NewFixtureAdapter(twoShotTimeline("SEQ010_v003", 36))

	_, report, err := bd.CompareSaved(ctx, curAdapter, st, "SEQ010_v002", nil)
	if err != nil {
		t.Fatalf("CompareSaved() error = %v", err)
	}
	if report.Matched[1].DeltaCutOut != 12 {
		t.Errorf("SH020 DeltaCutOut = %d, want 12", report.Matched[1].DeltaCutOut)
	}

	cur, _, err := bd.CompareSaved(ctx, curAdapter, st, "missing", nil)
	if !errors.IsOldTimelineNotFound(err) {
		t.Fatalf("error = %v, want old timeline not found", err)
	}
	if cur == nil {
		t.Error("current model should survive a missing saved model")
	}
}
