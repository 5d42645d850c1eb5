package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_KeepsOrderedWords(t *testing.T) {
	words := []Word{
		{Text: "hello", StartSec: 0.0, EndSec: 0.4},
		{Text: "world", StartSec: 0.5, EndSec: 0.9},
	}

	got := Sanitize(words)

	assert.Equal(t, words, got)
}

func TestSanitize_DropsMalformedEntries(t *testing.T) {
	words := []Word{
		{Text: "", StartSec: 0.0, EndSec: 0.2},     // empty text
		{Text: "ok", StartSec: -0.5, EndSec: 0.2},  // negative start
		{Text: "fine", StartSec: 1.0, EndSec: 0.5}, // end before start
		{Text: "keeper", StartSec: 1.0, EndSec: 1.3},
	}

	got := Sanitize(words)

	assert.Len(t, got, 1)
	assert.Equal(t, "keeper", got[0].Text)
}

func TestSanitize_DropsOutOfOrderEntries(t *testing.T) {
	words := []Word{
		{Text: "one", StartSec: 1.0, EndSec: 1.2},
		{Text: "zero", StartSec: 0.1, EndSec: 0.3}, // regresses in time
		{Text: "two", StartSec: 2.0, EndSec: 2.2},
	}

	got := Sanitize(words)

	assert.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Text)
	assert.Equal(t, "two", got[1].Text)
}

func TestSanitize_EmptyInput(t *testing.T) {
	assert.Empty(t, Sanitize(nil))
	assert.Empty(t, Sanitize([]Word{}))
}

func TestWord_DurationSec(t *testing.T) {
	w := Word{Text: "um", StartSec: 0.5, EndSec: 0.8}
	assert.InDelta(t, 0.3, w.DurationSec(), 1e-9)
}
