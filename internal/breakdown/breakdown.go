// Package breakdown runs the reconstruction pipeline: segment the subtitle
// track into shots, seed VFX frame space from the counter track, extract
// and merge elements per shot, then classify retimes and scales.
package breakdown

import (
	"context"
	"strings"

	"github.com/ming-qiu/theia/internal/config"
	"github.com/ming-qiu/theia/internal/counter"
	"github.com/ming-qiu/theia/internal/elements"
	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/reporter"
	"github.com/ming-qiu/theia/internal/retime"
	"github.com/ming-qiu/theia/internal/segment"
	"github.com/ming-qiu/theia/internal/source"
	"github.com/ming-qiu/theia/internal/timecode"
	"github.com/ming-qiu/theia/internal/validate"
)

// SequenceName derives the sequence from a timeline name: everything before
// the first underscore, or the whole name when there is none. A configured
// sequence always wins.
func SequenceName(cfg *config.Config, timelineName string) string {
	if cfg.Sequence != "" {
		return cfg.Sequence
	}
	if i := strings.Index(timelineName, "_"); i > 0 {
		return timelineName[:i]
	}
	return timelineName
}

// Run reconstructs the shot model for one timeline. The timeline named in
// cfg.Timeline is fetched through the adapter; empty means the host's
// current timeline. Any structural problem aborts the whole run.
func Run(ctx context.Context, adapter source.Adapter, cfg *config.Config, rep reporter.Reporter) (*model.ShotModel, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	tl, err := adapter.Timeline(ctx, cfg.Timeline)
	if err != nil {
		return nil, err
	}

	spans, err := segment.Spans(tl, cfg.HalfFrameCorrection)
	if err != nil {
		return nil, err
	}

	counterIdx, err := counter.FindTrack(tl, cfg.CounterTrack)
	if err != nil {
		return nil, err
	}
	resolver := counter.NewResolver(tl.Track(counterIdx), tl.FPS, cfg.HalfFrameCorrection)

	roles, err := elements.BuildRoleMap(tl, cfg.BottomTrack, cfg.TopTrack, counterIdx)
	if err != nil {
		return nil, err
	}

	seq := SequenceName(cfg, tl.Name)

	rep.TimelineLoaded(reporter.TimelineSummary{
		Timeline:     tl.Name,
		Sequence:     seq,
		FPS:          tl.FPS,
		VideoTracks:  len(tl.Tracks),
		CounterTrack: counterIdx,
		ShotCount:    len(spans),
	})
	rep.BreakdownStarted(len(spans))

	m := &model.ShotModel{
		Sequence: seq,
		Timeline: tl.Name,
		FPS:      tl.FPS,
		Shots:    make([]model.Shot, 0, len(spans)),
	}

	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shot, err := buildShot(tl, resolver, roles, span, cfg)
		if err != nil {
			return nil, err
		}
		m.Shots = append(m.Shots, shot)

		rep.ShotProgress(reporter.ShotProgress{
			Index:    i + 1,
			Total:    len(spans),
			ShotCode: span.ShotCode,
		})
	}

	if cfg.VerifyModel {
		if err := validate.Model(m, cfg); err != nil {
			return nil, err
		}
	}

	rep.BreakdownComplete(Summarize(m))
	return m, nil
}

func buildShot(tl *source.Timeline, resolver *counter.Resolver, roles *elements.RoleMap,
	span model.ShotSpan, cfg *config.Config) (model.Shot, error) {

	cut, err := resolver.CutPoints(span)
	if err != nil {
		return model.Shot{}, err
	}

	els := elements.Extract(tl, roles, span, cut, tl.FPS, cfg.HalfFrameCorrection, cfg.ScanHandle)

	shot := model.Shot{
		Span:     span,
		Cut:      cut,
		WorkIn:   cut.CutIn - cfg.WorkHandle,
		WorkOut:  cut.CutOut + cfg.WorkHandle,
		Elements: els,
	}

	for i := range shot.Elements {
		e := &shot.Elements[i]
		e.Retime = retime.Detect(e.Segments, e.ClipIn, cfg.RetimeTolerance)
		if e.Retime.Kind != model.RetimeNone {
			if e.Role.IsBackground() {
				shot.BgRetime = true
			} else {
				shot.FgRetime = true
			}
		}
	}

	if bg := elements.VisibleBackground(shot.Elements); bg != nil {
		shot.EditorialName = bg.ReelName
		shot.CutInTC = bg.ClipInTC
	} else {
		shot.CutInTC = timecode.Format(cut.CutIn, tl.FPS)
	}
	return shot, nil
}

// Summarize flattens a model into the reporter's table form. Each shot
// contributes one row per element, background first.
func Summarize(m *model.ShotModel) reporter.BreakdownSummary {
	var rows []reporter.ShotRow
	for i := range m.Shots {
		s := &m.Shots[i]
		if len(s.Elements) == 0 {
			rows = append(rows, reporter.ShotRow{
				CutOrder: s.Span.CutOrder,
				ShotCode: s.Span.ShotCode,
				CutInTC:  s.CutInTC,
				CutIn:    s.Cut.CutIn,
				CutOut:   s.Cut.CutOut,
				Duration: s.Cut.Duration(),
			})
			continue
		}
		for j := range s.Elements {
			e := &s.Elements[j]
			rows = append(rows, reporter.ShotRow{
				CutOrder: s.Span.CutOrder,
				ShotCode: s.Span.ShotCode,
				CutInTC:  e.ClipInTC,
				CutIn:    s.Cut.CutIn,
				CutOut:   s.Cut.CutOut,
				Duration: s.Cut.Duration(),
				Reel:     e.ReelName,
				Element:  e.ElementName(),
				Retime:   e.Retime.Summary(),
				Scale:    e.Scale.Summary(),
			})
		}
	}
	return reporter.BreakdownSummary{
		Timeline:  m.Timeline,
		Sequence:  m.Sequence,
		ShotCount: len(m.Shots),
		Rows:      rows,
	}
}

// SummarizeChanges flattens a change report for the reporter.
func SummarizeChanges(rep *model.ChangeReport) reporter.ChangeSummary {
	matched := make([]reporter.ChangeRow, len(rep.Matched))
	for i, c := range rep.Matched {
		matched[i] = reporter.ChangeRow{
			ShotCode:      c.ShotCode,
			DeltaCutIn:    c.DeltaCutIn,
			DeltaCutOut:   c.DeltaCutOut,
			RetimeChanged: c.RetimeChanged,
		}
	}
	return reporter.ChangeSummary{
		CurrentTimeline: rep.CurrentTimeline,
		OldTimeline:     rep.OldTimeline,
		Matched:         matched,
		Added:           rep.Added,
		Removed:         rep.Removed,
	}
}
