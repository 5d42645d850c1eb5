package plan

import (
	"context"
	"strings"

	"github.com/tanush/cleanspeech/internal/transcript"
)

// fillerWords are interjections that are always safe to remove.
var fillerWords = map[string]struct{}{
	"um": {}, "uh": {}, "uhm": {}, "umm": {}, "uhh": {},
	"er": {}, "err": {}, "ah": {}, "ahh": {},
	"hmm": {}, "hm": {}, "mhm": {},
}

// sentenceOpeners are only fillers at the start of an utterance.
var sentenceOpeners = map[string]struct{}{
	"so": {}, "well": {}, "okay": {}, "ok": {},
}

// openerGapSec is the preceding gap that marks an utterance boundary for
// sentence-opener fillers.
const openerGapSec = 0.5

// RuleClassifier flags filler words with fixed word lists. It is the
// deterministic fallback when the LLM classifier is unavailable or
// returns garbage, and the default when no LLM is configured.
type RuleClassifier struct{}

// Classify returns a removal segment for every word matched by the filler
// rules. It never fails; the error return exists to satisfy Classifier.
func (RuleClassifier) Classify(_ context.Context, words []transcript.Word) ([]Segment, error) {
	var segs []Segment
	for i, w := range words {
		normalized := normalizeWord(w.Text)
		if !isFiller(normalized, i, words) {
			continue
		}
		segs = append(segs, Segment{
			StartSec: w.StartSec,
			EndSec:   w.EndSec,
			Reason:   FillerReason(normalized),
		})
	}
	return segs, nil
}

func isFiller(normalized string, i int, words []transcript.Word) bool {
	if _, ok := fillerWords[normalized]; ok {
		return true
	}
	if _, ok := sentenceOpeners[normalized]; !ok {
		return false
	}
	// Sentence openers count only at the very start or after a pause
	// long enough to suggest an utterance boundary.
	if i == 0 {
		return true
	}
	gap := words[i].StartSec - words[i-1].EndSec
	return gap > openerGapSec
}

// normalizeWord lower-cases a token and strips everything but letters and
// spaces, so "Um," and "um" match the same rule.
func normalizeWord(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
