// Package diff compares two reconstructions of the same sequence and
// reports how each shot's cut points drifted between edits.
package diff

import "github.com/ming-qiu/theia/internal/model"

// occurrenceKey distinguishes repeated uses of a shot code within one
// timeline. The nth occurrence in the current edit is matched against the
// nth occurrence in the old edit.
type occurrenceKey struct {
	code string
	n    int
}

func index(m *model.ShotModel) (map[occurrenceKey]*model.Shot, []occurrenceKey) {
	byKey := make(map[occurrenceKey]*model.Shot, len(m.Shots))
	order := make([]occurrenceKey, 0, len(m.Shots))
	seen := make(map[string]int)
	for i := range m.Shots {
		s := &m.Shots[i]
		k := occurrenceKey{code: s.Span.ShotCode, n: seen[s.Span.ShotCode]}
		seen[s.Span.ShotCode]++
		byKey[k] = s
		order = append(order, k)
	}
	return byKey, order
}

func retimeChanged(cur, old *model.Shot) bool {
	cb, ob := cur.Background(), old.Background()
	if cb == nil || ob == nil {
		return (cb == nil) != (ob == nil)
	}
	return !cb.Retime.Equal(ob.Retime)
}

// Compare matches shots between a current and an old model and computes per
// shot cut drift. Matched shots keep the current edit's cut order; shots
// present only on one side land in Added or Removed.
func Compare(cur, old *model.ShotModel) *model.ChangeReport {
	curIdx, curOrder := index(cur)
	oldIdx, oldOrder := index(old)

	rep := &model.ChangeReport{
		CurrentTimeline: cur.Timeline,
		OldTimeline:     old.Timeline,
	}

	for _, k := range curOrder {
		c := curIdx[k]
		o, ok := oldIdx[k]
		if !ok {
			rep.Added = append(rep.Added, c.Span.ShotCode)
			continue
		}
		rep.Matched = append(rep.Matched, model.ShotChange{
			ShotCode:      c.Span.ShotCode,
			DeltaCutIn:    c.Cut.CutIn - o.Cut.CutIn,
			DeltaCutOut:   c.Cut.CutOut - o.Cut.CutOut,
			RetimeChanged: retimeChanged(c, o),
		})
	}

	for _, k := range oldOrder {
		if _, ok := curIdx[k]; !ok {
			rep.Removed = append(rep.Removed, oldIdx[k].Span.ShotCode)
		}
	}
	return rep
}
