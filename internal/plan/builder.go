package plan

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/tanush/cleanspeech/internal/transcript"
)

// paddingSec is the symmetric padding added around filler removals so
// the cut lands in room tone rather than on a plosive edge.
const paddingSec = 0.05

// Builder assembles a finalized Plan from transcript words. One
// classification strategy is selected per run: the configured classifier
// when it succeeds, otherwise the rule-based fallback. Strategies are
// never mixed within a single plan.
type Builder struct {
	classifier Classifier
	fallback   RuleClassifier
	logger     *slog.Logger
}

// NewBuilder creates a Builder. classifier may be nil, in which case the
// rule-based path is used directly.
func NewBuilder(classifier Classifier, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		classifier: classifier,
		logger:     logger,
	}
}

// Build produces a finalized edit plan for the given transcript. Invalid
// or empty input yields an empty plan rather than an error; downstream
// splicing then degrades to a copy.
func (b *Builder) Build(ctx context.Context, words []transcript.Word) Plan {
	words = transcript.Sanitize(words)
	if len(words) == 0 {
		return Plan{}
	}

	removals := b.classifyFillers(ctx, words)

	leading, pauses := DetectPauses(words)

	raw := Plan{
		Removals: append(removals, leading...),
		Pauses:   pauses,
	}

	return finalize(raw, words)
}

// classifyFillers runs the selected strategy, falling back to rules when
// the classifier fails. Classification failure is recovered here and
// never surfaced to the caller.
func (b *Builder) classifyFillers(ctx context.Context, words []transcript.Word) []Segment {
	if b.classifier != nil {
		segs, err := b.classifier.Classify(ctx, words)
		if err == nil {
			b.logger.Debug("filler classification via LLM",
				slog.Int("segments", len(segs)),
			)
			return segs
		}
		b.logger.Warn("filler classification failed, using rule-based fallback",
			slog.String("error", err.Error()),
		)
	}

	segs, _ := b.fallback.Classify(ctx, words)
	return segs
}

// finalize runs the safety and padding pass: filler removals are padded
// symmetrically, then clamped so the padding never eats into a word the
// raw segment did not already cover. Padded removals that grew into each
// other are coalesced, and pause boundaries are pulled back to the edge
// of any removal the padding reached, so the finalized lists are always
// pairwise non-overlapping.
func finalize(raw Plan, words []transcript.Word) Plan {
	var final Plan

	for _, seg := range raw.Removals {
		if seg.Reason.Kind == ReasonLeadingSilence {
			final.Removals = append(final.Removals, seg)
			continue
		}

		paddedStart := math.Max(0, seg.StartSec-paddingSec)
		paddedEnd := seg.EndSec + paddingSec

		for _, w := range words {
			// A word fully inside the unpadded segment is assumed to be
			// the filler itself; everything else is a neighbor whose
			// edges the padding must respect.
			originallyCovered := w.StartSec >= seg.StartSec && w.EndSec <= seg.EndSec
			if originallyCovered {
				continue
			}
			if paddedStart < w.EndSec && paddedEnd > w.StartSec {
				if w.EndSec <= seg.StartSec {
					paddedStart = math.Max(paddedStart, w.EndSec)
				}
				if w.StartSec >= seg.EndSec {
					paddedEnd = math.Min(paddedEnd, w.StartSec)
				}
			}
		}

		if paddedEnd > paddedStart {
			final.Removals = append(final.Removals, Segment{
				StartSec: paddedStart,
				EndSec:   paddedEnd,
				Reason:   seg.Reason,
			})
		}
	}

	final.Pauses = append(final.Pauses, raw.Pauses...)

	sortSegments(final.Removals)
	sortSegments(final.Pauses)

	final.Removals = mergeOverlaps(final.Removals)
	final.Pauses = trimPauses(final.Pauses, final.Removals)

	return final
}

// mergeOverlaps coalesces sorted removals whose boundaries touch or
// cross. Back-to-back fillers pad into each other on ordinary speech;
// the splicer treats overlap as corruption, so it must never see one.
func mergeOverlaps(segs []Segment) []Segment {
	if len(segs) < 2 {
		return segs
	}

	merged := segs[:1]
	for _, seg := range segs[1:] {
		last := &merged[len(merged)-1]
		if seg.StartSec <= last.EndSec {
			if seg.EndSec > last.EndSec {
				last.EndSec = seg.EndSec
			}
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}

// trimPauses pulls each pause boundary back to the edge of any removal
// overlapping it. A filler at the edge of a long gap pads into the gap;
// the pause then starts where that cut ends. A pause the removals
// swallow entirely is dropped, the cut already takes the time.
func trimPauses(pauses, removals []Segment) []Segment {
	if len(pauses) == 0 || len(removals) == 0 {
		return pauses
	}

	kept := pauses[:0]
	for _, p := range pauses {
		for _, r := range removals {
			if r.EndSec <= p.StartSec || r.StartSec >= p.EndSec {
				continue
			}
			switch {
			case r.StartSec <= p.StartSec && r.EndSec >= p.EndSec:
				p.EndSec = p.StartSec
			case r.StartSec <= p.StartSec:
				p.StartSec = r.EndSec
			case r.EndSec >= p.EndSec:
				p.EndSec = r.StartSec
			default:
				// Removal strictly inside the gap; keeping the pause
				// would need a split, and the cut shortens it anyway.
				p.EndSec = p.StartSec
			}
			if p.EndSec <= p.StartSec {
				break
			}
		}
		if p.EndSec > p.StartSec {
			kept = append(kept, p)
		}
	}
	return kept
}

func sortSegments(segs []Segment) {
	sort.Slice(segs, func(i, j int) bool {
		return segs[i].StartSec < segs[j].StartSec
	})
}
