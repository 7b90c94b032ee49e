package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  Intent
	}{
		{"", IntentFull},
		{"   ", IntentFull},
		{"What's in front of me?", IntentFull},
		{"Describe the room", IntentFull},
		{"Tell me about this place", IntentFull},
		{"Any items on the table", IntentObjects},
		{"is there a thing on my left", IntentObjects},
		{"Is the road busy", IntentVehicles},
		{"any TRAFFIC", IntentVehicles},
		{"Is it safe to walk", IntentDepth},
		{"how far is the wall", IntentDepth},
		{"in Hindi please", IntentTranslate},
		{"translate to german", IntentTranslate},
		{"hello", IntentFull},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.query), "query=%q", tt.query)
	}
}

func TestClassifyFullWinsOverLaterRules(t *testing.T) {
	for _, q := range []string{
		"describe whether it is safe to walk forward",
		"scene with a car near the obstacle",
		"can you see a step close to me",
		"DESCRIBE the street in french",
	} {
		assert.Equal(t, IntentFull, Classify(q), "query=%q", q)
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// objects before vehicles, vehicles before depth, depth before translate
	assert.Equal(t, IntentObjects, Classify("any object on the road"))
	assert.Equal(t, IntentVehicles, Classify("is the bus close"))
	assert.Equal(t, IntentDepth, Classify("step forward in spanish"))
}
