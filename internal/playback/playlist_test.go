package playback

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func newTestPlaylist(n int, opts PlaylistOptions, seed uint64) *Playlist {
	p := NewPlaylist(opts, rand.New(rand.NewPCG(seed, seed+1)))
	tracks := make([]string, n)
	for i := range tracks {
		tracks[i] = string(rune('A' + i))
	}
	p.SetTracks(tracks)
	return p
}

func nextN(p *Playlist, n int) []int {
	var out []int
	for range n {
		i, ok := p.Next()
		if !ok {
			break
		}
		out = append(out, i)
	}
	return out
}

func TestPlaylistSequential(t *testing.T) {
	t.Parallel()

	p := newTestPlaylist(3, PlaylistOptions{}, 1)
	assert.Equal(t, []int{0, 1, 2}, nextN(p, 5))

	looping := newTestPlaylist(3, PlaylistOptions{Loop: true}, 1)
	assert.Equal(t, []int{0, 1, 2, 0, 1}, nextN(looping, 5))
}

func TestPlaylistPreviousSequential(t *testing.T) {
	t.Parallel()

	p := newTestPlaylist(3, PlaylistOptions{}, 1)
	_, ok := p.Previous()
	assert.False(t, ok, "nothing before the first track without loop")

	nextN(p, 2)
	prev, ok := p.Previous()
	assert.True(t, ok)
	assert.Equal(t, 0, prev)

	_, ok = p.Previous()
	assert.False(t, ok)

	looping := newTestPlaylist(3, PlaylistOptions{Loop: true}, 1)
	nextN(looping, 1)
	prev, ok = looping.Previous()
	assert.True(t, ok)
	assert.Equal(t, 2, prev, "looping wraps to the last track")
}

func TestPlaylistForwardBackForward(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 12).Draw(t, "n")
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		p := newTestPlaylist(n, PlaylistOptions{Loop: true}, 1)

		nextN(p, steps)
		forward, _ := p.Next()
		p.Previous()
		again, _ := p.Next()
		if forward != again {
			t.Fatalf("next after back returned %d, want %d", again, forward)
		}
	})
}

func TestPlaylistWindow(t *testing.T) {
	t.Parallel()

	cases := map[int]int{1: 0, 2: 1, 3: 2, 8: 2, 12: 3, 40: 10, 100: 10}
	for n, want := range cases {
		assert.Equal(t, want, newTestPlaylist(n, PlaylistOptions{}, 1).Window(), "n=%d", n)
	}
}

func TestPlaylistShuffleLoopAvoidsWindow(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 30).Draw(t, "n")
		p := newTestPlaylist(n, PlaylistOptions{Loop: true, Shuffle: true}, rapid.Uint64().Draw(t, "seed"))
		w := p.Window()

		var history []int
		for range 100 {
			next, ok := p.Next()
			if !ok {
				t.Fatal("looping shuffle ran out of tracks")
			}
			recent := map[int]bool{}
			for i := len(history) - 1; i >= 0 && len(recent) < w; i-- {
				recent[history[i]] = true
			}
			if recent[next] {
				t.Fatalf("track %d repeated inside window %d: %v", next, w, history)
			}
			history = append(history, next)
		}
	})
}

func TestPlaylistShuffleOnceThrough(t *testing.T) {
	t.Parallel()

	p := newTestPlaylist(6, PlaylistOptions{Shuffle: true}, 11)
	got := nextN(p, 10)
	assert.Len(t, got, 6)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, got)

	p.Reset()
	assert.Len(t, nextN(p, 10), 6, "reset starts a new pass")
}

func TestPlaylistShufflePrevious(t *testing.T) {
	t.Parallel()

	p := newTestPlaylist(8, PlaylistOptions{Loop: true, Shuffle: true}, 3)
	first, _ := p.Next()
	_, ok := p.Previous()
	assert.True(t, ok)
	last, _ := p.Current()
	assert.Equal(t, 7, last, "fewer than two entries wraps to the last track when looping")

	p = newTestPlaylist(8, PlaylistOptions{Shuffle: true}, 3)
	first, _ = p.Next()
	second, _ := p.Next()
	prev, ok := p.Previous()
	assert.True(t, ok)
	assert.Equal(t, first, prev)
	assert.Equal(t, []int{first}, p.History())

	_, ok = p.Previous()
	assert.False(t, ok)

	again := nextN(p, 10)
	assert.Contains(t, again, second, "the skipped track is playable again")
}

func TestPlaylistEnqueue(t *testing.T) {
	t.Parallel()

	p := newTestPlaylist(1, PlaylistOptions{}, 1)
	p.Enqueue("Z")
	assert.Equal(t, []string{"A", "Z"}, p.Tracks())
	assert.Equal(t, []int{0, 1}, nextN(p, 3))
}
