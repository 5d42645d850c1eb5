// Package audio is the sample-domain engine: it executes finalized edit
// plans against mono float buffers, re-stitching the surviving fragments
// with constant-power crossfades, and levels the result for consistent
// perceived loudness.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tanush/cleanspeech/internal/plan"
)

const (
	// crossfadeSec is the overlap blended at every fragment junction.
	crossfadeSec = 0.03
	// fallbackPauseTargetSec is used when a pause operation carries no
	// target duration.
	fallbackPauseTargetSec = 0.5
)

// ErrOverlappingOps is returned when edit operations overlap. Overlap is
// an invariant violation in the finalized plan; silently reordering could
// corrupt audio, so the splice fails fast instead.
var ErrOverlappingOps = errors.New("audio: overlapping edit operations")

type opKind int

const (
	opRemove opKind = iota
	opShortenPause
)

// editOp is a single sweep operation over the sample buffer.
type editOp struct {
	startSec  float64
	endSec    float64
	kind      opKind
	targetSec float64
}

// Splice applies a finalized edit plan to a mono sample buffer and
// returns the edited buffer. An empty plan returns an exact copy.
func Splice(samples []float64, sampleRate int, p plan.Plan) ([]float64, error) {
	ops := buildOps(p)
	if len(ops) == 0 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out, nil
	}

	for i := 1; i < len(ops); i++ {
		if ops[i].startSec < ops[i-1].endSec {
			return nil, fmt.Errorf("%w: [%.3f, %.3f) overlaps [%.3f, %.3f)",
				ErrOverlappingOps,
				ops[i-1].startSec, ops[i-1].endSec,
				ops[i].startSec, ops[i].endSec)
		}
	}

	// Fragments are slices into the original buffer; stitch copies them
	// into the output, so no fragment is ever mutated in place.
	var fragments [][]float64
	cursor := 0

	for _, op := range ops {
		opStart := clampIndex(toSample(op.startSec, sampleRate), len(samples))
		opEnd := clampIndex(toSample(op.endSec, sampleRate), len(samples))

		if opStart > cursor {
			fragments = append(fragments, samples[cursor:opStart])
			cursor = opStart
		}

		switch op.kind {
		case opRemove:
			if opEnd > cursor {
				cursor = opEnd
			}

		case opShortenPause:
			target := op.targetSec
			if target <= 0 {
				target = fallbackPauseTargetSec
			}

			if op.endSec-op.startSec > target {
				// Keep room tone from both edges of the gap and drop
				// the middle.
				keep := toSample(target/2, sampleRate)

				keepStart := opStart + keep
				if keepStart > len(samples) {
					keepStart = len(samples)
				}
				if keepStart > opStart {
					fragments = append(fragments, samples[opStart:keepStart])
				}

				resume := opEnd - keep
				if resume < keepStart {
					resume = keepStart
				}
				cursor = resume
			} else {
				if opEnd > opStart {
					fragments = append(fragments, samples[opStart:opEnd])
				}
				cursor = opEnd
			}
		}
	}

	if cursor < len(samples) {
		fragments = append(fragments, samples[cursor:])
	}

	return stitch(fragments, sampleRate), nil
}

// Render splices the plan into the buffer and levels the result. This is
// the full sample-domain pipeline for one recording.
func Render(samples []float64, sampleRate int, p plan.Plan) ([]float64, error) {
	spliced, err := Splice(samples, sampleRate, p)
	if err != nil {
		return nil, err
	}
	return Level(spliced, sampleRate), nil
}

// buildOps merges both plan lists into one operation sweep sorted by
// start time.
func buildOps(p plan.Plan) []editOp {
	ops := make([]editOp, 0, p.TotalEditCount())
	for _, s := range p.Removals {
		ops = append(ops, editOp{
			startSec: s.StartSec,
			endSec:   s.EndSec,
			kind:     opRemove,
		})
	}
	for _, s := range p.Pauses {
		ops = append(ops, editOp{
			startSec:  s.StartSec,
			endSec:    s.EndSec,
			kind:      opShortenPause,
			targetSec: s.Reason.TargetSec,
		})
	}
	sort.Slice(ops, func(i, j int) bool {
		return ops[i].startSec < ops[j].startSec
	})
	return ops
}

// stitch concatenates fragments with a constant-power crossfade at every
// junction. The first fragment is copied verbatim; each subsequent
// fragment's lead-in blends over the trailing samples already written.
func stitch(fragments [][]float64, sampleRate int) []float64 {
	if len(fragments) == 0 {
		return []float64{}
	}
	if len(fragments) == 1 {
		out := make([]float64, len(fragments[0]))
		copy(out, fragments[0])
		return out
	}

	fadeMax := toSample(crossfadeSec, sampleRate)

	// The overlap consumed at a junction depends on how much has been
	// written so far, so size for the full concatenation and trim to the
	// write position at the end.
	total := 0
	for _, f := range fragments {
		total += len(f)
	}

	out := make([]float64, total)
	writePos := 0

	for i, f := range fragments {
		if i == 0 {
			copy(out[writePos:], f)
			writePos += len(f)
			continue
		}

		fadeLen := minInt(fadeMax, minInt(len(f), writePos))
		fadeStart := writePos - fadeLen

		for j := 0; j < fadeLen; j++ {
			progress := float64(j) / float64(fadeLen)
			fadeOut := math.Cos(progress * 0.5 * math.Pi)
			fadeIn := math.Sin(progress * 0.5 * math.Pi)
			out[fadeStart+j] = out[fadeStart+j]*fadeOut + f[j]*fadeIn
		}

		if len(f) > fadeLen {
			copy(out[writePos:], f[fadeLen:])
			writePos += len(f) - fadeLen
		}
	}

	return out[:writePos]
}

// toSample truncates a time in seconds onto the sample grid.
func toSample(sec float64, sampleRate int) int {
	return int(sec * float64(sampleRate))
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
