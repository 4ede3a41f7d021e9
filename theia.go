// Package theia reconstructs VFX shot breakdowns from editorial timelines.
//
// Theia reads a conformed timeline through a source adapter (a live host
// bridge or an offline snapshot), segments it into shots using the subtitle
// track, seeds VFX frame numbering from the counter track, and extracts the
// layered elements of every shot with retime and scale detection. Two edits
// of the same sequence can be diffed to report cut drift.
//
// Basic usage:
//
//	bd, err := theia.New(
//	    theia.WithWorkHandle(8),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	adapter := theia.NewSnapshotAdapter("project.yaml")
//	model, err := bd.Reconstruct(ctx, adapter, theia.NewTerminalReporter(false))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%s: %d shots\n", model.Timeline, len(model.Shots))
package theia

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ming-qiu/theia/internal/breakdown"
	"github.com/ming-qiu/theia/internal/config"
	"github.com/ming-qiu/theia/internal/diff"
	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/reporter"
	"github.com/ming-qiu/theia/internal/source"
	"github.com/ming-qiu/theia/internal/store"
)

// Re-export the result and adapter types callers work with.
type (
	ShotModel    = model.ShotModel
	Shot         = model.Shot
	Element      = model.Element
	CutPoints    = model.CutPoints
	RetimeResult = model.RetimeResult
	ChangeReport = model.ChangeReport
	Adapter      = source.Adapter
	Timeline     = source.Timeline
	Reporter     = reporter.Reporter
	Store        = store.Store
)

// NewSnapshotAdapter reads timelines from an offline YAML project snapshot.
func NewSnapshotAdapter(path string) Adapter {
	return source.NewSnapshotAdapter(path)
}

// NewBridgeAdapter fetches timelines from a host bridge over HTTP.
func NewBridgeAdapter(baseURL string) Adapter {
	return source.NewBridgeAdapter(baseURL)
}

// NewTerminalReporter reports progress as colored terminal output.
func NewTerminalReporter(verbose bool) Reporter {
	return reporter.NewTerminalReporter(verbose)
}

// NewJSONReporter reports progress as NDJSON on stdout.
func NewJSONReporter() Reporter {
	return reporter.NewJSONReporter()
}

// OpenStore opens (or creates) the local model database.
func OpenStore(path string) (*Store, error) {
	return store.Open(path, nil)
}

// Breakdown is the main entry point for timeline reconstruction.
type Breakdown struct {
	config *config.Config
}

// Option configures a Breakdown.
type Option func(*config.Config)

// New creates a Breakdown with the given options.
func New(opts ...Option) (*Breakdown, error) {
	cfg := config.NewConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Breakdown{config: cfg}, nil
}

// WithTimeline selects the timeline to reconstruct. Empty means the host's
// current timeline.
func WithTimeline(name string) Option {
	return func(c *config.Config) {
		c.Timeline = name
	}
}

// WithSequenceName overrides the sequence derived from the timeline name.
func WithSequenceName(name string) Option {
	return func(c *config.Config) {
		c.Sequence = name
	}
}

// WithTrackRange limits element extraction to video tracks [bottom, top].
// A top of 0 walks every track above bottom.
func WithTrackRange(bottom, top int) Option {
	return func(c *config.Config) {
		c.BottomTrack = bottom
		c.TopTrack = top
	}
}

// WithCounterTrack pins the counter track instead of detecting it by name.
func WithCounterTrack(index int) Option {
	return func(c *config.Config) {
		c.CounterTrack = index
	}
}

// WithWorkHandle sets the artist working-space padding in frames.
func WithWorkHandle(frames int64) Option {
	return func(c *config.Config) {
		c.WorkHandle = frames
	}
}

// WithScanHandle sets the scan-range padding in frames.
func WithScanHandle(frames int64) Option {
	return func(c *config.Config) {
		c.ScanHandle = frames
	}
}

// WithHalfFrameCorrection compensates for hosts that report clip times half
// a frame late.
func WithHalfFrameCorrection() Option {
	return func(c *config.Config) {
		c.HalfFrameCorrection = true
	}
}

// WithRetimeTolerance sets the relative tolerance for classifying a merged
// run as one constant speed.
func WithRetimeTolerance(tol float64) Option {
	return func(c *config.Config) {
		c.RetimeTolerance = tol
	}
}

// WithoutVerification skips the post-reconstruction consistency checks.
func WithoutVerification() Option {
	return func(c *config.Config) {
		c.VerifyModel = false
	}
}

// Reconstruct builds the shot model for the configured timeline.
func (b *Breakdown) Reconstruct(ctx context.Context, adapter Adapter, rep Reporter) (*ShotModel, error) {
	cfg := *b.config
	return breakdown.Run(ctx, adapter, &cfg, rep)
}

// Compare reconstructs both the configured timeline and an older edit of
// the same sequence, then diffs them. The two passes run concurrently; the
// reporter only sees the current edit's progress.
func (b *Breakdown) Compare(ctx context.Context, adapter Adapter, oldTimeline string, rep Reporter) (*ShotModel, *ChangeReport, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	var (
		cur, old *ShotModel
		oldErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg := *b.config
		m, err := breakdown.Run(gctx, adapter, &cfg, reporter.NullReporter{})
		if err != nil {
			return err
		}
		cur = m
		return nil
	})
	g.Go(func() error {
		cfg := *b.config
		cfg.Timeline = oldTimeline
		m, err := breakdown.Run(gctx, adapter, &cfg, reporter.NullReporter{})
		if errors.IsKind(err, errors.KindTimelineNotFound) {
			// Missing old edit fails the comparison, not the primary pass.
			oldErr = errors.NewOldTimelineNotFoundError(oldTimeline)
			return nil
		}
		if err != nil {
			return err
		}
		old = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if oldErr != nil {
		rep.BreakdownComplete(breakdown.Summarize(cur))
		return cur, nil, oldErr
	}

	report := diff.Compare(cur, old)
	rep.BreakdownComplete(breakdown.Summarize(cur))
	rep.ChangesComplete(breakdown.SummarizeChanges(report))
	return cur, report, nil
}

// CompareSaved reconstructs the configured timeline and diffs it against a
// model previously saved in the store.
func (b *Breakdown) CompareSaved(ctx context.Context, adapter Adapter, st *Store, oldTimeline string, rep Reporter) (*ShotModel, *ChangeReport, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	cfg := *b.config
	cur, err := breakdown.Run(ctx, adapter, &cfg, reporter.NullReporter{})
	if err != nil {
		return nil, nil, err
	}

	old, err := st.Load(ctx, oldTimeline)
	if err != nil {
		if errors.IsModelNotFound(err) {
			rep.BreakdownComplete(breakdown.Summarize(cur))
			return cur, nil, errors.NewOldTimelineNotFoundError(oldTimeline)
		}
		return nil, nil, err
	}

	report := diff.Compare(cur, old)
	rep.BreakdownComplete(breakdown.Summarize(cur))
	rep.ChangesComplete(breakdown.SummarizeChanges(report))
	return cur, report, nil
}
