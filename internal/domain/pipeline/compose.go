package pipeline

import (
	"strings"

	"accessworld-server-go/internal/domain/perception"
	"accessworld-server-go/internal/utils"
)

const (
	maxListedObjects = 5

	verdictSafe   = "It appears safe to walk forward."
	verdictUnsafe = "Do not walk forward — obstacle detected."
)

// Compose assembles the English answer. It falls back to the bare
// description when no sentence applies to the intent.
func Compose(intent Intent, description string, objects []perception.DetectionResult, hazards []string, depth perception.DepthResult, safe bool) string {
	parts := make([]string, 0, 5)

	if intent.describesScene() {
		if s := sentence(description); s != "" {
			parts = append(parts, s)
		}
		if len(objects) > 0 {
			parts = append(parts, "I can see: "+strings.Join(distinctLabels(objects, maxListedObjects), ", ")+".")
		}
	}

	if len(hazards) > 0 {
		parts = append(parts, "Warning: "+strings.Join(hazards, ", ")+" detected nearby.")
	}

	if intent.describesDepth() {
		parts = append(parts, "Depth analysis — Left: "+depth.ZoneLabel(perception.ZoneLeft)+
			". Center: "+depth.ZoneLabel(perception.ZoneCenter)+
			". Right: "+depth.ZoneLabel(perception.ZoneRight)+".")
		if safe {
			parts = append(parts, verdictSafe)
		} else {
			parts = append(parts, verdictUnsafe)
		}
	}

	if len(parts) == 0 {
		return description
	}
	return strings.Join(parts, " ")
}

// sentence capitalizes the caption and terminates it with exactly one period.
// Fallback captions already end with "." and must not render as "..", an empty
// caption renders as nothing rather than a lone ".".
func sentence(description string) string {
	d := strings.TrimRight(strings.TrimSpace(description), ".")
	if d == "" {
		return ""
	}
	return utils.CapitalizeSentence(d) + "."
}

// distinctLabels returns unique labels among the first n objects in first-seen order.
func distinctLabels(objects []perception.DetectionResult, n int) []string {
	if len(objects) > n {
		objects = objects[:n]
	}
	seen := make(map[string]struct{}, len(objects))
	labels := make([]string, 0, len(objects))
	for _, o := range objects {
		if _, ok := seen[o.Label]; ok {
			continue
		}
		seen[o.Label] = struct{}{}
		labels = append(labels, o.Label)
	}
	return labels
}
