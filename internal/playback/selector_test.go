package playback

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tphakala/soundbank/internal/soundbank"
)

var threeClips = map[string]time.Duration{"a": time.Second, "b": time.Second, "c": time.Second}

func weightedSubs(probabilities ...float64) []*soundbank.SubItem {
	names := []string{"a", "b", "c"}
	subs := make([]*soundbank.SubItem, len(probabilities))
	for i, p := range probabilities {
		subs[i] = clipSub(names[i])
		subs[i].Probability = p
	}
	return subs
}

func pickIndices(t *testing.T, s *Selector, item *soundbank.Item) []int {
	t.Helper()
	picks, err := s.Select(item)
	require.NoError(t, err)
	out := make([]int, len(picks))
	for i, p := range picks {
		out[i] = p.Index
	}
	return out
}

func TestSelectSequence(t *testing.T) {
	t.Parallel()

	item := newItem("Seq", soundbank.PickSequence, weightedSubs(1, 1, 1)...)
	newTestRegistry(t, threeClips, newCategory("C", 1, item))
	s := NewSelector(1, 0)

	var got []int
	for range 5 {
		got = append(got, pickIndices(t, s, item)...)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1}, got)

	s.Reset()
	assert.Equal(t, []int{0}, pickIndices(t, s, item))
}

func TestSelectSequenceRandomStart(t *testing.T) {
	t.Parallel()

	item := newItem("Seq", soundbank.PickSequenceRandomStart, weightedSubs(1, 1, 1)...)
	newTestRegistry(t, threeClips, newCategory("C", 1, item))
	s := NewSelector(7, 0)

	first := pickIndices(t, s, item)[0]
	for i := 1; i <= 4; i++ {
		assert.Equal(t, (first+i)%3, pickIndices(t, s, item)[0])
	}
}

func TestSelectRandomFollowsWeights(t *testing.T) {
	t.Parallel()

	item := newItem("Rnd", soundbank.PickRandom, weightedSubs(5, 3, 2)...)
	newTestRegistry(t, threeClips, newCategory("C", 1, item))
	s := NewSelector(3, 0)

	const draws = 20000
	counts := make([]int, 3)
	for range draws {
		counts[pickIndices(t, s, item)[0]]++
	}
	assert.InDelta(t, 0.5, float64(counts[0])/draws, 0.03)
	assert.InDelta(t, 0.3, float64(counts[1])/draws, 0.03)
	assert.InDelta(t, 0.2, float64(counts[2])/draws, 0.03)
}

func TestSelectZeroWeightsAreUniform(t *testing.T) {
	t.Parallel()

	item := newItem("Zero", soundbank.PickRandom, weightedSubs(0, 0, 0)...)
	newTestRegistry(t, threeClips, newCategory("C", 1, item))
	s := NewSelector(5, 0)

	seen := map[int]bool{}
	for range 300 {
		seen[pickIndices(t, s, item)[0]] = true
	}
	assert.Len(t, seen, 3)
}

func TestSelectRandomNotSameTwiceNeverRepeats(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		pa := rapid.Float64Range(0, 10).Draw(t, "pa")
		pb := rapid.Float64Range(0, 10).Draw(t, "pb")
		pc := rapid.Float64Range(0, 10).Draw(t, "pc")
		item := newItem("NoRepeat", soundbank.PickRandomNotSameTwice, weightedSubs(pa, pb, pc)...)
		if _, err := soundbank.NewRegistry(threeClips, newCategory("C", 1, item)); err != nil {
			t.Fatal(err)
		}
		s := NewSelector(rapid.Uint64().Draw(t, "seed"), 0)

		last := -1
		for range 50 {
			picks, err := s.Select(item)
			if err != nil {
				t.Fatal(err)
			}
			if picks[0].Index == last {
				t.Fatalf("index %d picked twice in a row", last)
			}
			last = picks[0].Index
		}
	})
}

func TestSelectExplosionScenario(t *testing.T) {
	t.Parallel()

	weights := []float64{0.5, 0.3, 0.2}
	item := newItem("Explosion", soundbank.PickRandomNotSameTwice, weightedSubs(weights...)...)
	newTestRegistry(t, threeClips, newCategory("SFX", 1, item))
	s := NewSelector(11, 0)

	const draws = 10000
	counts := make([]int, 3)
	last := -1
	for range draws {
		idx := pickIndices(t, s, item)[0]
		require.NotEqual(t, last, idx)
		counts[idx]++
		last = idx
	}

	// excluding the previous pick makes the long run share of i
	// proportional to w(i) * (1 - w(i))
	var norm float64
	for _, w := range weights {
		norm += w * (1 - w)
	}
	for i, w := range weights {
		assert.InDelta(t, w*(1-w)/norm, float64(counts[i])/draws, 0.03, "index %d", i)
	}
}

func TestSelectZeroWeightsSkipRedirects(t *testing.T) {
	t.Parallel()

	target := newItem("Target", soundbank.PickRandom, clipSub("c"))
	item := newItem("Mixed", soundbank.PickRandom, clipSub("a"), redirectSub("Target"), clipSub("b"))
	for _, sub := range item.SubItems {
		sub.Probability = 0
	}
	newTestRegistry(t, threeClips, newCategory("C", 1, item, target))
	s := NewSelector(9, 0)

	seen := map[int]bool{}
	for range 300 {
		picks, err := s.Select(item)
		require.NoError(t, err)
		require.Len(t, picks, 1)
		assert.Zero(t, picks[0].Depth, "redirect drawn by the uniform fallback")
		seen[picks[0].Index] = true
	}
	assert.Equal(t, map[int]bool{0: true, 2: true}, seen)
}

func TestSelectAllAndTwoSimultaneously(t *testing.T) {
	t.Parallel()

	all := newItem("All", soundbank.PickAllSimultaneously, weightedSubs(1, 1, 1)...)
	two := newItem("Two", soundbank.PickTwoSimultaneously, weightedSubs(1, 1, 1)...)
	newTestRegistry(t, threeClips, newCategory("C", 1, all, two))
	s := NewSelector(9, 0)

	assert.Equal(t, []int{0, 1, 2}, pickIndices(t, s, all))
	for range 100 {
		got := pickIndices(t, s, two)
		require.Len(t, got, 2)
		assert.NotEqual(t, got[0], got[1])
	}
}

func TestSelectSingleSubItemShortCircuits(t *testing.T) {
	t.Parallel()

	item := newItem("One", soundbank.PickRandomNotSameTwice, clipSub("a"))
	newTestRegistry(t, threeClips, newCategory("C", 1, item))
	s := NewSelector(1, 0)

	for range 3 {
		assert.Equal(t, []int{0}, pickIndices(t, s, item))
	}
}

func TestSelectDisabled(t *testing.T) {
	t.Parallel()

	item := newItem("Manual", soundbank.PickDisabled, weightedSubs(1, 1)...)
	newTestRegistry(t, threeClips, newCategory("C", 1, item))
	s := NewSelector(1, 0)

	_, err := s.Select(item)
	require.ErrorIs(t, err, ErrPickDisabled)

	picks, err := s.SelectIndex(item, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", picks[0].SubItem.Clip)

	_, err = s.SelectIndex(item, 2)
	require.ErrorIs(t, err, ErrSubItemIndex)
}

// redirectChain builds I0 -> I1 -> ... -> I(n) where the last item plays clip a
func redirectChain(t *testing.T, n int) *soundbank.Item {
	t.Helper()
	items := make([]*soundbank.Item, n+1)
	for i := range n {
		items[i] = newItem(fmt.Sprintf("I%d", i), soundbank.PickRandom, redirectSub(fmt.Sprintf("I%d", i+1)))
	}
	items[n] = newItem(fmt.Sprintf("I%d", n), soundbank.PickRandom, clipSub("a"))
	newTestRegistry(t, threeClips, newCategory("C", 1, items...))
	return items[0]
}

func TestSelectRedirectDepth(t *testing.T) {
	t.Parallel()

	picks, err := NewSelector(1, DefaultMaxRedirectDepth).Select(redirectChain(t, 8))
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "I8", picks[0].Item.Name)
	assert.Equal(t, 8, picks[0].Depth)

	_, err = NewSelector(1, DefaultMaxRedirectDepth).Select(redirectChain(t, 9))
	require.ErrorIs(t, err, ErrRedirectDepthExceeded)
}

func TestSelectRedirectCycle(t *testing.T) {
	t.Parallel()

	ping := newItem("Ping", soundbank.PickRandom, redirectSub("Pong"))
	pong := newItem("Pong", soundbank.PickRandom, redirectSub("Ping"))
	newTestRegistry(t, threeClips, newCategory("C", 1, ping, pong))

	_, err := NewSelector(1, 0).Select(ping)
	require.ErrorIs(t, err, ErrRedirectDepthExceeded)
}

func TestJitterBounds(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		sub := &soundbank.SubItem{
			Clip:         "a",
			Volume:       rapid.Float64Range(0, 1).Draw(t, "volume"),
			RandomVolume: rapid.Float64Range(0, 1).Draw(t, "random_volume"),
			PitchShift:   rapid.Float64Range(-12, 12).Draw(t, "pitch_shift"),
			RandomPitch:  rapid.Float64Range(0, 12).Draw(t, "random_pitch"),
		}
		s := NewSelector(rapid.Uint64().Draw(t, "seed"), 0)

		vol, st := s.Jitter(sub)
		if vol < 0 || vol > 1 {
			t.Fatalf("volume %v outside [0,1]", vol)
		}
		if st < sub.PitchShift-sub.RandomPitch || st > sub.PitchShift+sub.RandomPitch {
			t.Fatalf("semitones %v outside %v±%v", st, sub.PitchShift, sub.RandomPitch)
		}
	})
}
