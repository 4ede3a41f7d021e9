package elements

import "github.com/ming-qiu/theia/internal/model"

// zoomKey is the transform property carrying horizontal scale. Hosts that
// never touched the clip omit it entirely.
const zoomKey = "ZoomX"

// scaleOf reads the scale of a clip's in-point transform. A missing key or
// unity zoom means no resize was applied.
func scaleOf(transform map[string]float64) *model.ScaleResult {
	if transform == nil {
		return nil
	}
	z, ok := transform[zoomKey]
	if !ok {
		return nil
	}
	return &model.ScaleResult{ZoomX: z}
}
