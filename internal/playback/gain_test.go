package playback

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPerceptual(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, Perceptual(0), 1e-12)
	assert.InDelta(t, 1.0, Perceptual(1), 1e-12)
	assert.InDelta(t, math.Pow(0.5, 1.6), Perceptual(0.5), 1e-12)
	assert.InDelta(t, 0.0, Perceptual(-0.3), 1e-12)
}

func TestPitchMultiplier(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, PitchMultiplier(12), 1e-12)
	assert.InDelta(t, 0.5, PitchMultiplier(-12), 1e-12)
	assert.InDelta(t, 1.0, PitchMultiplier(0), 1e-12)
	assert.True(t, math.IsInf(Semitones(0), -1))
}

func TestGainRoundTrips(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float64Range(0.001, 1).Draw(t, "x")
		if got := InversePerceptual(Perceptual(x)); math.Abs(got-x) > 1e-9 {
			t.Fatalf("inverse(perceptual(%v)) = %v", x, got)
		}

		st := rapid.Float64Range(-24, 24).Draw(t, "semitones")
		if got := Semitones(PitchMultiplier(st)); math.Abs(got-st) > 1e-9 {
			t.Fatalf("semitones(multiplier(%v)) = %v", st, got)
		}
	})
}

func TestPerceptualMonotonic(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(0, 1).Draw(t, "a")
		b := rapid.Float64Range(0, 1).Draw(t, "b")
		if a < b && Perceptual(a) > Perceptual(b) {
			t.Fatalf("perceptual not monotonic at %v < %v", a, b)
		}
	})
}
