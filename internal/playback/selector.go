package playback

import (
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/tphakala/soundbank/internal/errors"
	"github.com/tphakala/soundbank/internal/soundbank"
)

// Pick is one clip sub-item chosen for a trigger
type Pick struct {
	// Item owns SubItem; after a redirect it is the redirect target
	Item    *soundbank.Item
	SubItem *soundbank.SubItem
	Index   int
	// Depth is the number of redirects followed to reach Item
	Depth int
}

// pickState is the per-item memory used by sequence and no-repeat modes
type pickState struct {
	last    int
	started bool
}

// Selector chooses sub-items. Not safe for concurrent use.
type Selector struct {
	rng      *rand.Rand
	maxDepth int
	states   map[*soundbank.Item]*pickState
}

// NewSelector returns a selector seeded deterministically from seed
func NewSelector(seed uint64, maxDepth int) *Selector {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRedirectDepth
	}
	return &Selector{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		maxDepth: maxDepth,
		states:   make(map[*soundbank.Item]*pickState),
	}
}

// Select resolves a trigger of item into the clip sub-items to start
func (s *Selector) Select(item *soundbank.Item) ([]Pick, error) {
	return s.selectAt(item, 0, []string{item.Name})
}

// SelectIndex resolves an explicit pick, bypassing the pick mode of item.
// A redirect at index is still followed using the target's own mode.
func (s *Selector) SelectIndex(item *soundbank.Item, index int) ([]Pick, error) {
	if index < 0 || index >= len(item.SubItems) {
		return nil, errors.New(ErrSubItemIndex).
			Context("item", item.Name).
			Context("index", index).
			Build()
	}
	s.state(item).last = index
	s.state(item).started = true
	return s.expand(item, index, 0, []string{item.Name})
}

// Reset forgets sequence and no-repeat history
func (s *Selector) Reset() {
	clear(s.states)
}

func (s *Selector) state(item *soundbank.Item) *pickState {
	st, ok := s.states[item]
	if !ok {
		st = &pickState{last: -1}
		s.states[item] = st
	}
	return st
}

func (s *Selector) selectAt(item *soundbank.Item, depth int, chain []string) ([]Pick, error) {
	indices, err := s.indices(item)
	if err != nil {
		return nil, err
	}

	var picks []Pick
	for _, idx := range indices {
		p, err := s.expand(item, idx, depth, chain)
		if err != nil {
			return nil, err
		}
		picks = append(picks, p...)
	}
	return picks, nil
}

func (s *Selector) expand(item *soundbank.Item, idx, depth int, chain []string) ([]Pick, error) {
	sub := item.SubItems[idx]
	if !sub.IsRedirect() {
		return []Pick{{Item: item, SubItem: sub, Index: idx, Depth: depth}}, nil
	}
	if depth >= s.maxDepth {
		return nil, errors.New(ErrRedirectDepthExceeded).
			Context("item", chain[0]).
			Context("chain", append(slices.Clone(chain), sub.Redirect)).
			Context("max_depth", s.maxDepth).
			Build()
	}
	return s.selectAt(sub.Target, depth+1, append(chain, sub.Redirect))
}

// indices applies the pick mode of item
func (s *Selector) indices(item *soundbank.Item) ([]int, error) {
	n := len(item.SubItems)
	if item.PickMode == soundbank.PickDisabled {
		return nil, errors.New(ErrPickDisabled).Context("item", item.Name).Build()
	}
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		return []int{0}, nil
	}

	st := s.state(item)
	var out []int
	switch item.PickMode {
	case soundbank.PickSequence:
		out = []int{(st.last + 1) % n}
	case soundbank.PickSequenceRandomStart:
		if !st.started {
			out = []int{s.rng.IntN(n)}
		} else {
			out = []int{(st.last + 1) % n}
		}
	case soundbank.PickRandom:
		out = []int{s.weighted(item, -1)}
	case soundbank.PickRandomNotSameTwice:
		out = []int{s.weighted(item, st.last)}
	case soundbank.PickAllSimultaneously:
		out = make([]int, n)
		for i := range out {
			out[i] = i
		}
	case soundbank.PickTwoSimultaneously:
		first := s.weighted(item, st.last)
		out = []int{first, s.weighted(item, first)}
	default:
		return nil, errors.New(soundbank.ErrUnknownPickMode).
			Context("item", item.Name).
			Context("pick_mode", int(item.PickMode)).
			Build()
	}

	st.last = out[len(out)-1]
	st.started = true
	return out, nil
}

// weighted draws an index by normalised weight, never returning exclude.
// With no weight left it draws uniformly over the remaining indices.
func (s *Selector) weighted(item *soundbank.Item, exclude int) int {
	subs := item.SubItems
	n := len(subs)
	if exclude < 0 || exclude >= n {
		exclude = -1
	}

	if exclude < 0 && subs[n-1].Cumulative > 0 {
		r := s.rng.Float64()
		i := sort.Search(n, func(i int) bool { return r < subs[i].Cumulative })
		if i < n {
			return i
		}
		return s.lastWeighted(item, -1)
	}

	var total float64
	for i, sub := range subs {
		if i != exclude {
			total += sub.Weight
		}
	}
	if total <= 0 {
		return s.uniform(item, exclude)
	}

	r := s.rng.Float64() * total
	var acc float64
	for i, sub := range subs {
		if i == exclude || sub.Weight <= 0 {
			continue
		}
		acc += sub.Weight
		if r < acc {
			return i
		}
	}
	return s.lastWeighted(item, exclude)
}

// uniform draws evenly over the clip sub-items other than exclude, or
// over every other index when only redirects remain
func (s *Selector) uniform(item *soundbank.Item, exclude int) int {
	candidates := make([]int, 0, len(item.SubItems))
	for i, sub := range item.SubItems {
		if i != exclude && !sub.IsRedirect() {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		for i := range item.SubItems {
			if i != exclude {
				candidates = append(candidates, i)
			}
		}
	}
	if len(candidates) == 0 {
		return 0
	}
	return candidates[s.rng.IntN(len(candidates))]
}

// lastWeighted absorbs floating point shortfall in a cumulative walk
func (s *Selector) lastWeighted(item *soundbank.Item, exclude int) int {
	for i := len(item.SubItems) - 1; i >= 0; i-- {
		if i != exclude && item.SubItems[i].Weight > 0 {
			return i
		}
	}
	return 0
}

// Jitter returns the randomised linear volume and pitch in semitones for sub
func (s *Selector) Jitter(sub *soundbank.SubItem) (volume, semitones float64) {
	volume = clamp01(sub.Volume + s.spread(sub.RandomVolume))
	semitones = sub.PitchShift + s.spread(sub.RandomPitch)
	return volume, semitones
}

// spread is uniform in [-r, r]
func (s *Selector) spread(r float64) float64 {
	if r <= 0 {
		return 0
	}
	return (s.rng.Float64()*2 - 1) * r
}
