package source

import (
	"context"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ming-qiu/theia/internal/errors"
)

// Snapshot is the on-disk form of one or more timeline snapshots. A
// comparison run needs both the current and the old edit in one file.
type Snapshot struct {
	Timelines []Timeline `yaml:"timelines"`
}

// SnapshotAdapter serves timelines from a YAML snapshot file. It is both
// the offline production path (project exports) and the fixture path for
// tests. The file is read once, on first use.
type SnapshotAdapter struct {
	path string

	once sync.Once
	snap *Snapshot
	err  error
}

// NewSnapshotAdapter creates an adapter over a snapshot file.
func NewSnapshotAdapter(path string) *SnapshotAdapter {
	return &SnapshotAdapter{path: path}
}

// NewFixtureAdapter wraps in-memory timelines, for tests and embedding.
func NewFixtureAdapter(timelines ...Timeline) *SnapshotAdapter {
	a := &SnapshotAdapter{}
	a.once.Do(func() {})
	a.snap = &Snapshot{Timelines: timelines}
	return a
}

func (a *SnapshotAdapter) load() {
	data, err := os.ReadFile(a.path)
	if err != nil {
		a.err = errors.NewSnapshotError("reading snapshot file", err)
		return
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		a.err = errors.NewSnapshotError("parsing snapshot file", err)
		return
	}
	if len(snap.Timelines) == 0 {
		a.err = errors.NewSnapshotError("snapshot file contains no timelines", nil)
		return
	}
	a.snap = &snap
}

// Timeline returns the named timeline from the snapshot. An empty name
// returns the first timeline in the file, mirroring a host's notion of the
// current timeline.
func (a *SnapshotAdapter) Timeline(_ context.Context, name string) (*Timeline, error) {
	a.once.Do(a.load)
	if a.err != nil {
		return nil, a.err
	}

	if name == "" {
		return &a.snap.Timelines[0], nil
	}
	for i := range a.snap.Timelines {
		if a.snap.Timelines[i].Name == name {
			return &a.snap.Timelines[i], nil
		}
	}
	return nil, errors.NewTimelineNotFoundError(name)
}

// WriteSnapshot writes timelines to a YAML snapshot file.
func WriteSnapshot(path string, snap *Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return errors.NewSnapshotError("encoding snapshot", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewSnapshotError("writing snapshot file", err)
	}
	return nil
}
