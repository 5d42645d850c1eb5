// Package plan builds time-indexed edit plans from word-level transcripts.
// It combines filler classification (LLM-assisted or rule-based) with
// deterministic pause detection, and finalizes the result with a safety
// pass that keeps removals from clipping neighboring speech.
package plan

import "fmt"

// ReasonKind identifies why a segment was scheduled for editing.
type ReasonKind int

const (
	// ReasonFiller marks a non-meaningful interjection or filler phrase.
	ReasonFiller ReasonKind = iota
	// ReasonLongPause marks a gap between words that will be compressed.
	ReasonLongPause
	// ReasonLeadingSilence marks dead air before the first word.
	ReasonLeadingSilence
)

// String returns the canonical tag for the kind.
func (k ReasonKind) String() string {
	switch k {
	case ReasonFiller:
		return "FILLER_WORD"
	case ReasonLongPause:
		return "LONG_PAUSE"
	case ReasonLeadingSilence:
		return "LEADING_SILENCE"
	default:
		return "UNKNOWN"
	}
}

// Reason is a tagged description of an edit. Word is set for filler
// segments, TargetSec for pause segments; the other fields are zero.
type Reason struct {
	Kind      ReasonKind
	Word      string
	TargetSec float64
}

// FillerReason builds a reason for removing a filler word or phrase.
func FillerReason(word string) Reason {
	return Reason{Kind: ReasonFiller, Word: word}
}

// LongPauseReason builds a reason for compressing a pause down to
// targetSec seconds.
func LongPauseReason(targetSec float64) Reason {
	return Reason{Kind: ReasonLongPause, TargetSec: targetSec}
}

// LeadingSilenceReason builds a reason for trimming silence before the
// first word.
func LeadingSilenceReason() Reason {
	return Reason{Kind: ReasonLeadingSilence}
}

// String renders the reason for logs and transcripts.
func (r Reason) String() string {
	switch r.Kind {
	case ReasonFiller:
		if r.Word != "" {
			return fmt.Sprintf("%s: %s", r.Kind, r.Word)
		}
		return r.Kind.String()
	case ReasonLongPause:
		return fmt.Sprintf("%s (target %.2fs)", r.Kind, r.TargetSec)
	default:
		return r.Kind.String()
	}
}
