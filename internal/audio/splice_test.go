package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanush/cleanspeech/internal/plan"
)

const testRate = 16000

// ramp builds a deterministic non-trivial buffer of n samples.
func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*float64(i)/100)
	}
	return out
}

func TestSplice_EmptyPlanIsIdentity(t *testing.T) {
	in := ramp(testRate)

	out, err := Splice(in, testRate, plan.Plan{})

	require.NoError(t, err)
	require.Len(t, out, len(in))
	assert.Equal(t, in, out)

	// The copy must be independent of the input buffer.
	out[0] = 42
	assert.NotEqual(t, in[0], out[0])
}

func TestSplice_RemovalShortensBuffer(t *testing.T) {
	in := ramp(2 * testRate) // 2.0s
	p := plan.Plan{
		Removals: []plan.Segment{
			{StartSec: 0.5, EndSec: 1.0, Reason: plan.FillerReason("um")},
		},
	}

	out, err := Splice(in, testRate, p)

	require.NoError(t, err)
	// 0.5s removed, one junction crossfaded over 0.03s.
	want := 2*testRate - toSample(0.5, testRate) - toSample(crossfadeSec, testRate)
	assert.Equal(t, want, len(out))
}

func TestSplice_LeadingFragmentShorterThanFade(t *testing.T) {
	// A padded removal of a filler near the start leaves a first fragment
	// far shorter than the 0.03s crossfade; the fade shrinks to the
	// fragment instead of overrunning the output.
	in := ramp(2 * testRate)
	p := plan.Plan{
		Removals: []plan.Segment{
			{StartSec: 0.01, EndSec: 0.35, Reason: plan.FillerReason("um")},
		},
	}

	out, err := Splice(in, testRate, p)

	require.NoError(t, err)
	// The first fragment is 160 samples, so all of it is blended into
	// the second fragment's lead-in and the output is exactly the
	// second fragment's length.
	second := 2*testRate - toSample(0.35, testRate)
	assert.Equal(t, second, len(out))
}

func TestSplice_ShortenPauseKeepsRoomTone(t *testing.T) {
	in := ramp(3 * testRate) // 3.0s
	p := plan.Plan{
		Pauses: []plan.Segment{
			{StartSec: 1.0, EndSec: 2.4, Reason: plan.LongPauseReason(0.4)},
		},
	}

	out, err := Splice(in, testRate, p)

	require.NoError(t, err)
	// A 1.4s gap shrinks to 0.4s (0.2s kept from each edge). Two
	// junctions are crossfaded.
	removed := toSample(1.4-0.4, testRate)
	fades := 2 * toSample(crossfadeSec, testRate)
	assert.Equal(t, 3*testRate-removed-fades, len(out))
}

func TestSplice_PauseShorterThanTargetIsUntouched(t *testing.T) {
	in := ramp(testRate)
	p := plan.Plan{
		Pauses: []plan.Segment{
			{StartSec: 0.3, EndSec: 0.6, Reason: plan.LongPauseReason(0.4)},
		},
	}

	out, err := Splice(in, testRate, p)

	require.NoError(t, err)
	// Gap (0.3s) already under target, the fragment passes through, but
	// fragment boundaries still crossfade.
	fades := 2 * toSample(crossfadeSec, testRate)
	assert.Equal(t, len(in)-fades, len(out))
}

func TestSplice_OverlappingOpsFailFast(t *testing.T) {
	in := ramp(testRate)
	p := plan.Plan{
		Removals: []plan.Segment{
			{StartSec: 0.1, EndSec: 0.5, Reason: plan.FillerReason("um")},
		},
		Pauses: []plan.Segment{
			{StartSec: 0.4, EndSec: 0.9, Reason: plan.LongPauseReason(0.4)},
		},
	}

	_, err := Splice(in, testRate, p)

	assert.ErrorIs(t, err, ErrOverlappingOps)
}

func TestSplice_TimestampsBeyondBufferAreClamped(t *testing.T) {
	in := ramp(testRate) // 1.0s
	p := plan.Plan{
		Removals: []plan.Segment{
			{StartSec: 0.9, EndSec: 5.0, Reason: plan.FillerReason("um")},
		},
	}

	out, err := Splice(in, testRate, p)

	require.NoError(t, err)
	assert.Equal(t, toSample(0.9, testRate), len(out))
}

func TestSplice_RemovalAtStart(t *testing.T) {
	in := ramp(testRate)
	p := plan.Plan{
		Removals: []plan.Segment{
			{StartSec: 0, EndSec: 0.25, Reason: plan.LeadingSilenceReason()},
		},
	}

	out, err := Splice(in, testRate, p)

	require.NoError(t, err)
	// A single surviving fragment has no junction, so no fade is consumed.
	assert.Equal(t, len(in)-toSample(0.25, testRate), len(out))
	assert.InDelta(t, in[toSample(0.25, testRate)], out[0], 1e-12)
}

func TestStitch_CrossfadeIsConstantPower(t *testing.T) {
	// Two constant-amplitude fragments. At every point of the blend the
	// cos/sin weights satisfy w1^2+w2^2 = 1, so equal-power material must
	// keep its energy through the junction.
	const amp = 0.5
	a := make([]float64, testRate/2)
	b := make([]float64, testRate/2)
	for i := range a {
		a[i] = amp
		b[i] = amp
	}

	out := stitch([][]float64{a, b}, testRate)

	fade := toSample(crossfadeSec, testRate)
	for j := 0; j < fade; j++ {
		s := out[len(a)-fade+j]
		assert.LessOrEqual(t, s, amp*math.Sqrt2+1e-9)
		assert.GreaterOrEqual(t, s, amp-1e-9)
	}

	// Power check with phase-coherent content: blending a signal with
	// itself must reproduce it within floating-point noise at the weights'
	// crossover point.
	mid := out[len(a)-fade+fade/2]
	assert.InDelta(t, amp*(math.Cos(0.25*math.Pi)+math.Sin(0.25*math.Pi)), mid, 1e-9)
}

func TestStitch_FragmentShorterThanFade(t *testing.T) {
	a := ramp(testRate / 10)
	b := []float64{0.1, 0.2} // far shorter than the 480-sample fade

	out := stitch([][]float64{a, b}, testRate)

	// The short fragment blends entirely into the tail of the first.
	assert.Equal(t, len(a), len(out))
}

func TestRender_AppliesSpliceAndLevel(t *testing.T) {
	in := ramp(2 * testRate)
	p := plan.Plan{
		Removals: []plan.Segment{
			{StartSec: 0.5, EndSec: 1.0, Reason: plan.FillerReason("um")},
		},
	}

	out, err := Render(in, testRate, p)

	require.NoError(t, err)
	spliced, err := Splice(in, testRate, p)
	require.NoError(t, err)
	assert.Len(t, out, len(spliced))
	for _, s := range out {
		assert.LessOrEqual(t, math.Abs(s), 1.0)
	}
}
