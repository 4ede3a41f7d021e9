// Package segment turns subtitle track items into ordered shot spans. One
// subtitle item spans exactly one shot; the first whitespace-delimited token
// of its text is the shot code.
package segment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/source"
	"github.com/ming-qiu/theia/internal/timecode"
)

// Spans builds the ordered shot span list for a timeline. It fails fast on
// an empty subtitle track, an empty shot code token, or overlapping spans;
// downstream consumers assume complete, ordered shot coverage, so a partial
// list is worse than no list.
//
// Repeated shot codes are legal and kept as independent shots: a shot split
// across two subtitle spans is two entries, matched by occurrence later.
func Spans(tl *source.Timeline, halfFrame bool) ([]model.ShotSpan, error) {
	if len(tl.Subtitles) == 0 {
		return nil, errors.NewNoSubtitleItemsError(tl.Name)
	}

	spans := make([]model.ShotSpan, 0, len(tl.Subtitles))
	for _, item := range tl.Subtitles {
		fields := strings.Fields(item.Text)
		if len(fields) == 0 {
			return nil, errors.NewMalformedShotCodeError(
				fmt.Sprintf("subtitle item at %v has no shot code token",
					timecode.FromSeconds(item.TimelineInSec, tl.FPS, halfFrame)), "")
		}

		in := timecode.FromSeconds(item.TimelineInSec, tl.FPS, halfFrame)
		out := timecode.FromSeconds(item.TimelineOutSec, tl.FPS, halfFrame)
		if out.Frames <= in.Frames {
			return nil, errors.NewMalformedShotCodeError(
				fmt.Sprintf("subtitle span is empty or inverted (%d..%d)", in.Frames, out.Frames),
				fields[0])
		}

		spans = append(spans, model.ShotSpan{
			ShotCode:    fields[0],
			TimelineIn:  in.Frames,
			TimelineOut: out.Frames,
		})
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].TimelineIn < spans[j].TimelineIn
	})

	for i := 1; i < len(spans); i++ {
		if spans[i].TimelineIn < spans[i-1].TimelineOut {
			return nil, errors.NewMalformedShotCodeError(
				fmt.Sprintf("shot spans %s and %s overlap on the timeline",
					spans[i-1].ShotCode, spans[i].ShotCode),
				spans[i].ShotCode)
		}
	}

	for i := range spans {
		spans[i].CutOrder = i + 1
	}
	return spans, nil
}
