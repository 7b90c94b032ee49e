package pipeline

import (
	"strings"

	"accessworld-server-go/internal/domain/perception"
)

var hazardLabels = map[string]struct{}{
	"car": {}, "truck": {}, "bus": {}, "motorcycle": {}, "bicycle": {}, "train": {},
	"fire hydrant": {}, "stop sign": {}, "traffic light": {},
	"person": {}, "dog": {}, "cat": {}, "horse": {},
	"stairs": {}, "step": {},
}

// IsHazard reports whether label belongs to the pedestrian hazard vocabulary.
func IsHazard(label string) bool {
	_, ok := hazardLabels[strings.ToLower(label)]
	return ok
}

// HazardsIn returns the labels of hazardous detections in input order.
// Duplicates are kept.
func HazardsIn(detections []perception.DetectionResult) []string {
	hazards := make([]string, 0, len(detections))
	for _, d := range detections {
		if IsHazard(d.Label) {
			hazards = append(hazards, d.Label)
		}
	}
	return hazards
}

// IsSafe is the only place the walk verdict is decided: depth must be safe
// and no hazard may be present.
func IsSafe(depth perception.DepthResult, hazards []string) bool {
	return depth.SafeToWalk && len(hazards) == 0
}
