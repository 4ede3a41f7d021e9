package reporter

// TimelineSummary describes the timeline a breakdown is about to walk.
type TimelineSummary struct {
	Timeline     string
	Sequence     string
	FPS          float64
	VideoTracks  int
	CounterTrack int
	ShotCount    int
}

// ShotProgress is emitted once per reconstructed shot.
type ShotProgress struct {
	Index    int
	Total    int
	ShotCode string
}

// ShotRow is one line of the final breakdown table.
type ShotRow struct {
	CutOrder int
	ShotCode string
	CutInTC  string
	CutIn    int64
	CutOut   int64
	Duration int64
	Reel     string
	Element  string
	Retime   string
	Scale    string
}

// BreakdownSummary is the completed reconstruction, flattened for output.
type BreakdownSummary struct {
	Timeline  string
	Sequence  string
	ShotCount int
	Rows      []ShotRow
}

// ChangeRow is one matched shot in a compare run.
type ChangeRow struct {
	ShotCode      string
	DeltaCutIn    int64
	DeltaCutOut   int64
	RetimeChanged bool
}

// ChangeSummary is the completed comparison against an older edit.
type ChangeSummary struct {
	CurrentTimeline string
	OldTimeline     string
	Matched         []ChangeRow
	Added           []string
	Removed         []string
}

// ReporterError carries a classified failure for display.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}
