package breakdown

import (
	"context"
	"reflect"
	"testing"

	"github.com/ming-qiu/theia/internal/config"
	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/reporter"
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

// threeShotTimeline is a 24+48+24 frame edit with a counter clip seeding
// VFX frame 1009 at the first cut.
func threeShotTimeline() source.Timeline {
	return source.Timeline{
		Name: "SEQ010_v002",
		FPS:  fps,
		Subtitles: []source.SubtitleItem{
			{Text: "SH010", TimelineInSec: sec(100), TimelineOutSec: sec(124)},
			{Text: "SH020", TimelineInSec: sec(124), TimelineOutSec: sec(172)},
			{Text: "SH030 some note", TimelineInSec: sec(172), TimelineOutSec: sec(196)},
		},
		Tracks: []source.Track{
			{Index: 1, Name: "Video 1", Clips: []source.RawClip{
				clip(100, 124, 240, 264, "A001_C001"),
				clip(124, 172, 400, 448, "A002_C001"),
				clip(172, 196, 600, 624, "A003_C001"),
			}},
			{Index: 4, Name: "counter", Clips: []source.RawClip{
				clip(100, 196, 1008, 1104, "COUNTER"),
			}},
		},
	}
}

func TestRunThreeShots(t *testing.T) {
	adapter := source.NewFixtureAdapter(threeShotTimeline())
	cfg := config.NewConfig()

	m, err := Run(context.Background(), adapter, cfg, reporter.NullReporter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Sequence != "SEQ010" || m.Timeline != "SEQ010_v002" || m.FPS != fps {
		t.Errorf("model header = %q/%q/%g", m.Sequence, m.Timeline, m.FPS)
	}
	if len(m.Shots) != 3 {
		t.Fatalf("got %d shots, want 3", len(m.Shots))
	}

	wantCuts := []model.CutPoints{
		{CutIn: 1009, CutOut: 1032},
		{CutIn: 1033, CutOut: 1080},
		{CutIn: 1081, CutOut: 1104},
	}
	for i, want := range wantCuts {
		if m.Shots[i].Cut != want {
			t.Errorf("shot %d cut = %+v, want %+v", i, m.Shots[i].Cut, want)
		}
	}

	sh := m.Shots[0]
	if sh.Span.ShotCode != "SH010" || sh.Span.CutOrder != 1 {
		t.Errorf("first shot span = %+v", sh.Span)
	}
	if sh.WorkIn != 1001 || sh.WorkOut != 1040 {
		t.Errorf("work range = %d-%d, want 1001-1040", sh.WorkIn, sh.WorkOut)
	}
	if sh.EditorialName != "A001_C001" {
		t.Errorf("editorial name = %q", sh.EditorialName)
	}

	bg := sh.Background()
	if bg == nil {
		t.Fatal("no background element")
	}
	if bg.ClipIn != 1009 || bg.ClipOut != 1032 {
		t.Errorf("bg clip range = %d-%d", bg.ClipIn, bg.ClipOut)
	}
	if bg.HeadIn != 985 || bg.TailOut != 1056 {
		t.Errorf("bg scan range = %d-%d", bg.HeadIn, bg.TailOut)
	}
	if bg.Retime.Kind != model.RetimeNone {
		t.Errorf("bg retime = %+v", bg.Retime)
	}
	if sh.BgRetime || sh.FgRetime {
		t.Errorf("retime flags = %v/%v, want false", sh.BgRetime, sh.FgRetime)
	}

	// Third shot keeps only the first subtitle token as its code.
	if m.Shots[2].Span.ShotCode != "SH030" {
		t.Errorf("third shot code = %q", m.Shots[2].Span.ShotCode)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	adapter := source.NewFixtureAdapter(threeShotTimeline())
	cfg := config.NewConfig()

	first, err := Run(context.Background(), adapter, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Run(context.Background(), adapter, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two runs over the same timeline differ")
	}
}

func TestRunRetimedShot(t *testing.T) {
	tl := threeShotTimeline()
	// Double-speed background on the second shot: 48 timeline frames
	// consuming 96 source frames.
	tl.Tracks[0].Clips[1] = clip(124, 172, 400, 496, "A002_C001")

	m, err := Run(context.Background(), source.NewFixtureAdapter(tl), config.NewConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sh := m.Shots[1]
	bg := sh.Background()
	if bg.Retime.Kind != model.RetimeConstant || bg.Retime.SpeedPercent != 200 {
		t.Fatalf("retime = %+v, want constant 200%%", bg.Retime)
	}
	if !sh.BgRetime || sh.FgRetime {
		t.Errorf("retime flags = %v/%v, want bg only", sh.BgRetime, sh.FgRetime)
	}
}

func TestRunElementOverhang(t *testing.T) {
	tl := threeShotTimeline()
	// The first background clip starts 40 frames before its shot span, the
	// way editorial often leaves handle media under a tightened cut.
	tl.Tracks[0].Clips[0] = clip(60, 124, 200, 264, "A001_C001")

	m, err := Run(context.Background(), source.NewFixtureAdapter(tl), config.NewConfig(), nil)
	if err != nil {
		t.Fatalf("overhanging clip should reconstruct: %v", err)
	}

	bg := m.Shots[0].Background()
	if bg == nil {
		t.Fatal("no background element")
	}
	if bg.ClipIn != 969 || bg.ClipOut != 1032 {
		t.Errorf("bg clip range = %d-%d, want 969-1032", bg.ClipIn, bg.ClipOut)
	}
	if m.Shots[0].Cut != (model.CutPoints{CutIn: 1009, CutOut: 1032}) {
		t.Errorf("cut = %+v", m.Shots[0].Cut)
	}
}

func TestRunNoCounterCoverage(t *testing.T) {
	tl := threeShotTimeline()
	// Counter stops before the last shot.
	tl.Tracks[1].Clips = []source.RawClip{clip(100, 172, 1008, 1080, "COUNTER")}

	_, err := Run(context.Background(), source.NewFixtureAdapter(tl), config.NewConfig(), nil)
	if !errors.IsKind(err, errors.KindNoCounterClip) {
		t.Fatalf("error = %v, want KindNoCounterClip", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, source.NewFixtureAdapter(threeShotTimeline()), config.NewConfig(), nil)
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestSequenceName(t *testing.T) {
	tests := []struct {
		name     string
		cfg      string
		timeline string
		want     string
	}{
		{"prefix before underscore", "", "SEQ010_v002", "SEQ010"},
		{"no underscore", "", "SEQ010", "SEQ010"},
		{"leading underscore kept whole", "", "_v002", "_v002"},
		{"config override", "SHOW_SEQ", "SEQ010_v002", "SHOW_SEQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.Sequence = tt.cfg
			if got := SequenceName(cfg, tt.timeline); got != tt.want {
				t.Errorf("SequenceName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	m, err := Run(context.Background(), source.NewFixtureAdapter(threeShotTimeline()), config.NewConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := Summarize(m)
	if sum.ShotCount != 3 || len(sum.Rows) != 3 {
		t.Fatalf("summary shape = %d shots, %d rows", sum.ShotCount, len(sum.Rows))
	}
	row := sum.Rows[0]
	if row.ShotCode != "SH010" || row.Element != "ScanBg" || row.Duration != 24 {
		t.Errorf("first row = %+v", row)
	}
	if row.Retime != "" || row.Scale != "" {
		t.Errorf("notes should be empty: %+v", row)
	}
}
