// Package perception holds the value types shared by the perception providers
// and the pipeline that combines their outputs.
package perception

// Zone names, left to right across the image.
const (
	ZoneLeft   = "left"
	ZoneCenter = "center"
	ZoneRight  = "right"
)

// Zones lists the zone names in reading order.
var Zones = []string{ZoneLeft, ZoneCenter, ZoneRight}

// Proximity labels.
const (
	LabelVeryClose = "Very Close"
	LabelClose     = "Close"
	LabelMedium    = "Medium"
	LabelClear     = "Clear"
	LabelUnknown   = "Unknown"
)

// DetectionResult is one detected object. Box is x0,y0,x1,y1 in image pixels.
type DetectionResult struct {
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	Box        [4]float64 `json:"box"`
}

// ZoneVerdict classifies how close the nearest obstacle is within one zone.
type ZoneVerdict struct {
	Label   string  `json:"label"`
	Warning string  `json:"warning"`
	Percent float64 `json:"percent"`
}

// DepthResult is the three-zone proximity analysis of one image.
type DepthResult struct {
	Zones          map[string]ZoneVerdict `json:"zones"`
	OverallWarning string                 `json:"overall_warning"`
	SafeToWalk     bool                   `json:"safe_to_walk"`
}

// ZoneLabel returns the label for zone, or Unknown when the zone is absent.
func (d DepthResult) ZoneLabel(zone string) string {
	if v, ok := d.Zones[zone]; ok && v.Label != "" {
		return v.Label
	}
	return LabelUnknown
}

// Outcome is a provider result. When Degraded is set, Value holds the
// documented fallback and Err the cause.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

// OK wraps a successful value.
func OK[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degrade wraps a fallback value together with the failure that produced it.
func Degrade[T any](fallback T, err error) Outcome[T] {
	return Outcome[T]{Value: fallback, Degraded: true, Err: err}
}
