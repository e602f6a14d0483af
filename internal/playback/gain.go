package playback

import "math"

// Perceptual maps a linear control value to amplitude: x^1.6
func Perceptual(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Pow(x, PerceptualExponent)
}

// InversePerceptual maps amplitude back to a control value: x^(1/1.6)
func InversePerceptual(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Pow(x, 1/PerceptualExponent)
}

// PitchMultiplier converts semitones to a playback rate multiplier
func PitchMultiplier(semitones float64) float64 {
	return math.Exp2(semitones / 12)
}

// Semitones converts a playback rate multiplier back to semitones
func Semitones(multiplier float64) float64 {
	if multiplier <= 0 {
		return math.Inf(-1)
	}
	return 12 * math.Log2(multiplier)
}

// fadeFactor is clamp(elapsed/duration, 0, 1); a zero duration is complete
func fadeFactor(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	return clamp01(elapsed / duration)
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
