package plan

import "github.com/tanush/cleanspeech/internal/transcript"

const (
	// pauseThresholdSec is the minimum word-to-word gap considered a
	// long pause worth compressing.
	pauseThresholdSec = 0.75
	// pauseTargetSec is the duration long pauses are compressed to.
	pauseTargetSec = 0.4
	// leadingSilenceMinSec is how much dead air before the first word
	// triggers a leading-silence trim.
	leadingSilenceMinSec = 0.5
	// leadingSilencePreRollSec is the pre-roll kept before the first word.
	leadingSilencePreRollSec = 0.1
)

// DetectPauses scans the word list for dead air. It returns leading-silence
// removal segments and long-pause compression segments, both derived purely
// from timestamps. Zero or negative gaps never produce a segment.
func DetectPauses(words []transcript.Word) (removals, pauses []Segment) {
	if len(words) == 0 {
		return nil, nil
	}

	if first := words[0].StartSec; first > leadingSilenceMinSec {
		removals = append(removals, Segment{
			StartSec: 0,
			EndSec:   first - leadingSilencePreRollSec,
			Reason:   LeadingSilenceReason(),
		})
	}

	for i := 0; i < len(words)-1; i++ {
		gap := words[i+1].StartSec - words[i].EndSec
		if gap > pauseThresholdSec {
			pauses = append(pauses, Segment{
				StartSec: words[i].EndSec,
				EndSec:   words[i+1].StartSec,
				Reason:   LongPauseReason(pauseTargetSec),
			})
		}
	}

	return removals, pauses
}
