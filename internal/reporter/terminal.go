package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu       sync.Mutex
	progress *progressbar.ProgressBar
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	red      *color.Color
	magenta  *color.Color
	bold     *color.Color
	verbose  bool
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		verbose: verbose,
	}
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
}

func (r *TerminalReporter) TimelineLoaded(summary TimelineSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("TIMELINE")
	r.printLabel(9, "Name:", summary.Timeline)
	r.printLabel(9, "Sequence:", summary.Sequence)
	r.printLabel(9, "Rate:", fmt.Sprintf("%g fps", summary.FPS))
	r.printLabel(9, "Tracks:", fmt.Sprintf("%d video (counter on V%d)", summary.VideoTracks, summary.CounterTrack))
	r.printLabel(9, "Shots:", fmt.Sprintf("%d", summary.ShotCount))
}

func (r *TerminalReporter) BreakdownStarted(totalShots int) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		int64(totalShots),
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Shots [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) ShotProgress(update ShotProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}
	_ = r.progress.Set64(int64(update.Index))
	r.progress.Describe(update.ShotCode)
}

func (r *TerminalReporter) BreakdownComplete(summary BreakdownSummary) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("BREAKDOWN")

	// Column widths track the widest cell so the table stays aligned.
	codeW, reelW := len("Shot"), len("Reel")
	for _, row := range summary.Rows {
		if len(row.ShotCode) > codeW {
			codeW = len(row.ShotCode)
		}
		if len(row.Reel) > reelW {
			reelW = len(row.Reel)
		}
	}

	fmt.Printf("  %s\n", r.bold.Sprintf("%4s  %-*s  %-11s  %7s  %7s  %5s  %-*s  %-8s  %s",
		"Cut", codeW, "Shot", "Cut In TC", "Cut In", "Cut Out", "Dur", reelW, "Reel", "Element", "Notes"))

	for _, row := range summary.Rows {
		notes := row.Retime
		if row.Scale != "" {
			if notes != "" {
				notes += "; "
			}
			notes += row.Scale
		}
		fmt.Printf("  %4d  %-*s  %-11s  %7d  %7d  %5d  %-*s  %-8s  %s\n",
			row.CutOrder, codeW, row.ShotCode, row.CutInTC,
			row.CutIn, row.CutOut, row.Duration,
			reelW, row.Reel, row.Element, notes)
	}

	fmt.Printf("\n  %s %s\n", r.bold.Sprint("Shots:"),
		r.bold.Sprintf("%d in %s", summary.ShotCount, summary.Timeline))
}

func (r *TerminalReporter) ChangesComplete(summary ChangeSummary) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("CHANGES")
	r.printLabel(9, "Current:", summary.CurrentTimeline)
	r.printLabel(9, "Previous:", summary.OldTimeline)

	moved := 0
	for _, row := range summary.Matched {
		if row.DeltaCutIn == 0 && row.DeltaCutOut == 0 && !row.RetimeChanged {
			continue
		}
		moved++
		var notes string
		if row.RetimeChanged {
			notes = r.yellow.Sprint("retime changed")
		}
		fmt.Printf("  - %s: in %s, out %s %s\n",
			r.bold.Sprint(row.ShotCode),
			signedFrames(row.DeltaCutIn), signedFrames(row.DeltaCutOut), notes)
	}
	if moved == 0 {
		fmt.Printf("  %s\n", r.green.Sprint("No cut changes"))
	}

	for _, code := range summary.Added {
		fmt.Printf("  + %s %s\n", r.green.Sprint(code), "(new shot)")
	}
	for _, code := range summary.Removed {
		fmt.Printf("  x %s %s\n", r.red.Sprint(code), "(omitted)")
	}
}

func signedFrames(n int64) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	r.finishProgress()
	fmt.Println()
	fmt.Printf("%s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	fmt.Printf("  %s %s\n", r.magenta.Sprint("›"), message)
}
