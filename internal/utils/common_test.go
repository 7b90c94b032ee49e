package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMinDuration(t *testing.T) {
	assert.Equal(t, time.Second, MinDuration(time.Second, 2*time.Second))
	assert.Equal(t, time.Second, MinDuration(0, time.Second))
	assert.Equal(t, time.Second, MinDuration(time.Second, 0))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "what is in front of me", CleanText("  what\tis \x00in\n\nfront of   me "))
	assert.Equal(t, "", CleanText("\x01\x02"))
}

func TestCapitalizeSentence(t *testing.T) {
	assert.Equal(t, "A busy street with people", CapitalizeSentence("a busy Street with People"))
	assert.Equal(t, "Über alles", CapitalizeSentence("über ALLES"))
	assert.Equal(t, "", CapitalizeSentence(""))
}

func TestTruncateRunes(t *testing.T) {
	short := "short answer"
	assert.Equal(t, short, TruncateRunes(short, 580, "..."))

	long := strings.Repeat("a", 600)
	got := TruncateRunes(long, 580, "...")
	assert.Len(t, got, 580)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 577), strings.TrimSuffix(got, "..."))

	exact := strings.Repeat("b", 580)
	assert.Equal(t, exact, TruncateRunes(exact, 580, "..."))
}

func TestHashKeyIsStableAndSeparated(t *testing.T) {
	assert.Equal(t, HashKey("voice", "text"), HashKey("voice", "text"))
	assert.NotEqual(t, HashKey("ab", "c"), HashKey("a", "bc"))
}
