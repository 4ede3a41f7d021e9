package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON events for machine consumers.
type JSONReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{writer: os.Stdout}
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) TimelineLoaded(summary TimelineSummary) {
	r.write(map[string]interface{}{
		"type":          "timeline_loaded",
		"timeline":      summary.Timeline,
		"sequence":      summary.Sequence,
		"fps":           summary.FPS,
		"video_tracks":  summary.VideoTracks,
		"counter_track": summary.CounterTrack,
		"shot_count":    summary.ShotCount,
		"timestamp":     r.timestamp(),
	})
}

func (r *JSONReporter) BreakdownStarted(totalShots int) {
	r.write(map[string]interface{}{
		"type":        "breakdown_started",
		"total_shots": totalShots,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) ShotProgress(update ShotProgress) {
	r.write(map[string]interface{}{
		"type":      "shot_progress",
		"index":     update.Index,
		"total":     update.Total,
		"shot_code": update.ShotCode,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) BreakdownComplete(summary BreakdownSummary) {
	rows := make([]map[string]interface{}, len(summary.Rows))
	for i, row := range summary.Rows {
		rows[i] = map[string]interface{}{
			"cut_order": row.CutOrder,
			"shot_code": row.ShotCode,
			"cut_in_tc": row.CutInTC,
			"cut_in":    row.CutIn,
			"cut_out":   row.CutOut,
			"duration":  row.Duration,
			"reel":      row.Reel,
			"element":   row.Element,
			"retime":    row.Retime,
			"scale":     row.Scale,
		}
	}

	r.write(map[string]interface{}{
		"type":       "breakdown_complete",
		"timeline":   summary.Timeline,
		"sequence":   summary.Sequence,
		"shot_count": summary.ShotCount,
		"shots":      rows,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) ChangesComplete(summary ChangeSummary) {
	matched := make([]map[string]interface{}, len(summary.Matched))
	for i, row := range summary.Matched {
		matched[i] = map[string]interface{}{
			"shot_code":      row.ShotCode,
			"delta_cut_in":   row.DeltaCutIn,
			"delta_cut_out":  row.DeltaCutOut,
			"retime_changed": row.RetimeChanged,
		}
	}

	r.write(map[string]interface{}{
		"type":             "changes_complete",
		"current_timeline": summary.CurrentTimeline,
		"old_timeline":     summary.OldTimeline,
		"matched":          matched,
		"added":            summary.Added,
		"removed":          summary.Removed,
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]interface{}{
		"type":      "operation_complete",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
