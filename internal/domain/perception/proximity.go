package perception

import "math"

type proximityLevel struct {
	threshold float64
	label     string
	warning   string
}

var proximityLevels = []proximityLevel{
	{70, LabelVeryClose, "🚨 STOP — obstacle very close, do not move forward"},
	{45, LabelClose, "⚠️  Caution — obstacle ahead, proceed slowly"},
	{25, LabelMedium, "🟡 Some objects nearby, stay alert"},
	{0, LabelClear, "✅ Path appears clear"},
}

const (
	unknownWarning   = "Cannot determine"
	depthUnavailable = "Depth estimation unavailable."
	clearWarning     = "✅ Path appears clear"
)

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// ClassifyProximity maps a 0-100 proximity percent to a zone verdict.
// Boundary values fall into the more severe bucket.
func ClassifyProximity(percent float64) ZoneVerdict {
	for _, lvl := range proximityLevels {
		if percent >= lvl.threshold {
			return ZoneVerdict{Label: lvl.label, Warning: lvl.warning, Percent: Round(percent, 1)}
		}
	}
	// 负数或 NaN
	return ZoneVerdict{Label: LabelClear, Warning: clearWarning, Percent: 0}
}

// SafeLabel reports whether a worst-zone label still allows walking forward.
func SafeLabel(label string) bool {
	return label == LabelClear || label == LabelMedium
}

// NewDepthResult builds the result from per-zone percents. The worst zone is
// the one with the highest rounded percent.
func NewDepthResult(left, center, right float64) DepthResult {
	zones := map[string]ZoneVerdict{
		ZoneLeft:   ClassifyProximity(left),
		ZoneCenter: ClassifyProximity(center),
		ZoneRight:  ClassifyProximity(right),
	}
	worst := math.Inf(-1)
	for _, name := range Zones {
		if p := zones[name].Percent; p > worst {
			worst = p
		}
	}
	overall := ClassifyProximity(worst)
	return DepthResult{
		Zones:          zones,
		OverallWarning: overall.Warning,
		SafeToWalk:     SafeLabel(overall.Label),
	}
}

// UnknownDepth is the fallback when depth estimation fails.
func UnknownDepth() DepthResult {
	zones := make(map[string]ZoneVerdict, len(Zones))
	for _, name := range Zones {
		zones[name] = ZoneVerdict{Label: LabelUnknown, Warning: unknownWarning, Percent: 0}
	}
	return DepthResult{
		Zones:          zones,
		OverallWarning: depthUnavailable,
		SafeToWalk:     false,
	}
}
