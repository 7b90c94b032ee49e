package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"accessworld-server-go/internal/domain/perception"
)

func TestComposeFull(t *testing.T) {
	depth := perception.NewDepthResult(10, 80, 30)
	objects := detections("car", "person", "car", "tree", "bench", "dog", "bicycle")
	hazards := HazardsIn(objects)

	got := Compose(IntentFull, "a busy STREET with people walking", objects, hazards, depth, IsSafe(depth, hazards))

	assert.Equal(t, "A busy street with people walking. "+
		"I can see: car, person, tree, bench. "+
		"Warning: car, person, car, dog, bicycle detected nearby. "+
		"Depth analysis — Left: Clear. Center: Very Close. Right: Medium. "+
		"Do not walk forward — obstacle detected.", got)
}

func TestComposeDistinctLabelsFirstSeenOrder(t *testing.T) {
	objects := detections("tree", "bench", "tree", "cup", "bench", "dog")
	assert.Equal(t, []string{"tree", "bench", "cup"}, distinctLabels(objects, 5))
	// deterministic across calls
	for i := 0; i < 20; i++ {
		assert.Equal(t, []string{"tree", "bench", "cup"}, distinctLabels(objects, 5))
	}
}

func TestComposeDepthIntentSkipsDescription(t *testing.T) {
	depth := perception.NewDepthResult(0, 0, 0)
	got := Compose(IntentDepth, "a hallway", detections("chair"), nil, depth, true)
	assert.Equal(t, "Depth analysis — Left: Clear. Center: Clear. Right: Clear. It appears safe to walk forward.", got)
}

func TestComposeMissingZonesAreUnknown(t *testing.T) {
	got := Compose(IntentDepth, "", nil, nil, perception.DepthResult{}, false)
	assert.Contains(t, got, "Left: Unknown. Center: Unknown. Right: Unknown.")
}

func TestComposeTranslateFallsBackToDescription(t *testing.T) {
	got := Compose(IntentTranslate, "a quiet park", detections("bench"), nil, perception.NewDepthResult(0, 0, 0), true)
	assert.Equal(t, "a quiet park", got)
}

func TestComposeTranslateStillWarnsAboutHazards(t *testing.T) {
	got := Compose(IntentTranslate, "a road", detections("truck"), []string{"truck"}, perception.NewDepthResult(0, 0, 0), false)
	assert.Equal(t, "Warning: truck detected nearby.", got)
}

func TestComposeVehiclesOmitsDepth(t *testing.T) {
	got := Compose(IntentVehicles, "a parking lot", detections("car"), []string{"car"}, perception.NewDepthResult(90, 90, 90), false)
	assert.Equal(t, "A parking lot. I can see: car. Warning: car detected nearby.", got)
}

func TestComposeFallbackCaptionHasSinglePeriod(t *testing.T) {
	got := Compose(IntentObjects, "Unable to describe the scene.", nil, nil, perception.UnknownDepth(), false)
	assert.Equal(t, "Unable to describe the scene.", got)
}

func TestSentenceTrimsTrailingPeriods(t *testing.T) {
	assert.Equal(t, "A dog on a leash.", sentence("a dog on a leash.."))
	assert.Equal(t, "", sentence("  "))
	assert.Equal(t, "", sentence("."))
}

func TestComposeNonEmptyWheneverDescriptionIs(t *testing.T) {
	intents := []Intent{IntentFull, IntentObjects, IntentVehicles, IntentDepth, IntentTranslate}
	for _, intent := range intents {
		got := Compose(intent, "something", nil, nil, perception.DepthResult{}, false)
		assert.NotEmpty(t, strings.TrimSpace(got), "intent=%s", intent)
	}
}
