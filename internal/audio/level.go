package audio

import "math"

const (
	// targetLoudnessDBFS is the leveling target, a common value for
	// podcast voice.
	targetLoudnessDBFS = -13.0
	// maxGainDB bounds per-window adjustment to avoid aggressive leveling.
	maxGainDB = 4.0
	// levelWindowSec is the RMS analysis window.
	levelWindowSec = 0.5
	// minRMS is the near-silence floor; quieter windows are never boosted.
	minRMS = 0.001
	// headroom is the linear ceiling the soft limiter protects.
	headroom = 0.95
	// silenceFloorDBFS stands in for the dBFS of numerically zero RMS.
	silenceFloorDBFS = -100.0
)

// Level normalizes perceived loudness without pumping or clipping. It is
// a pure function of (samples, sampleRate) and returns a buffer of
// identical length.
func Level(samples []float64, sampleRate int) []float64 {
	if len(samples) == 0 {
		return samples
	}

	windowSamples := int(levelWindowSec * float64(sampleRate))
	if windowSamples <= 0 {
		windowSamples = 1
	}
	numWindows := (len(samples) + windowSamples - 1) / windowSamples

	gains := make([]float64, numWindows)
	for w := 0; w < numWindows; w++ {
		start := w * windowSamples
		end := minInt(start+windowSamples, len(samples))
		gains[w] = windowGain(rms(samples[start:end]))
	}

	smoothed := smoothGains(gains)

	leveled := make([]float64, len(samples))
	for i := range samples {
		windowIndex := i / windowSamples
		nextIndex := minInt(windowIndex+1, numWindows-1)

		// Interpolate between adjoining window gains so the multiplier
		// varies continuously instead of stepping at window edges.
		pos := float64(i%windowSamples) / float64(windowSamples)
		gain := smoothed[windowIndex]*(1-pos) + smoothed[nextIndex]*pos

		leveled[i] = samples[i] * gain
	}

	applyLimiter(leveled)

	return leveled
}

// rms computes the root-mean-square amplitude of a window.
func rms(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range window {
		sumSquares += s * s
	}
	return math.Sqrt(sumSquares / float64(len(window)))
}

// windowGain returns the linear gain that moves a window toward the
// target loudness, clamped to the maximum adjustment. Near-silent
// windows stay at unity so the noise floor is never amplified.
func windowGain(r float64) float64 {
	if r < minRMS {
		return 1.0
	}

	neededDB := targetLoudnessDBFS - linearToDB(r)
	if neededDB > maxGainDB {
		neededDB = maxGainDB
	}
	if neededDB < -maxGainDB {
		neededDB = -maxGainDB
	}

	return dbToLinear(neededDB)
}

// smoothGains applies a 3-point moving average; the edge windows average
// with their single neighbor.
func smoothGains(gains []float64) []float64 {
	if len(gains) <= 2 {
		out := make([]float64, len(gains))
		copy(out, gains)
		return out
	}

	smoothed := make([]float64, len(gains))
	smoothed[0] = (gains[0] + gains[1]) / 2
	smoothed[len(gains)-1] = (gains[len(gains)-2] + gains[len(gains)-1]) / 2
	for i := 1; i < len(gains)-1; i++ {
		smoothed[i] = (gains[i-1] + gains[i] + gains[i+1]) / 3
	}
	return smoothed
}

// applyLimiter compresses samples above the headroom toward the boundary
// with a saturating curve, preventing hard clips while keeping the
// spectral shape.
func applyLimiter(samples []float64) {
	for i, s := range samples {
		switch {
		case s > headroom:
			samples[i] = headroom + (1-headroom)*softClip(s-headroom)
		case s < -headroom:
			samples[i] = -headroom - (1-headroom)*softClip(-s-headroom)
		}
	}
}

// softClip approaches 1.0 asymptotically.
func softClip(x float64) float64 {
	return x / (1 + math.Abs(x))
}

func linearToDB(linear float64) float64 {
	if linear <= 0 {
		return silenceFloorDBFS
	}
	return 20 * math.Log10(linear)
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}
