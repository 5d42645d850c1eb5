// Package transcript defines the word-level transcript model consumed by
// the edit planner. Words are produced by the transcription collaborator
// and are treated as read-only by the rest of the engine.
package transcript

import (
	"github.com/go-playground/validator/v10"
)

// Word is a single transcribed word with its timestamps in seconds.
// The JSON tags match the wire format used by the transcription service.
type Word struct {
	// Text is the transcribed text of the word.
	Text string `json:"word" validate:"required"`
	// StartSec is when the word begins, in seconds from the start of the audio.
	StartSec float64 `json:"start" validate:"gte=0"`
	// EndSec is when the word ends, in seconds.
	EndSec float64 `json:"end" validate:"gte=0"`
}

// DurationSec returns the spoken duration of the word.
func (w Word) DurationSec() float64 {
	return w.EndSec - w.StartSec
}

var validate = validator.New()

// Sanitize filters out malformed or out-of-order entries so that
// downstream planning can assume a clean, start-time-ordered word list.
// Dropped entries are never an error: a transcript that sanitizes to
// empty simply produces an empty edit plan.
func Sanitize(words []Word) []Word {
	out := make([]Word, 0, len(words))
	for _, w := range words {
		if err := validate.Struct(w); err != nil {
			continue
		}
		if w.EndSec < w.StartSec {
			continue
		}
		// Keep the list monotonic by start time.
		if len(out) > 0 && w.StartSec < out[len(out)-1].StartSec {
			continue
		}
		out = append(out, w)
	}
	return out
}
