package playback

import (
	"math/rand/v2"
	"slices"
	"time"
)

// PlaylistOptions configures music sequencing
type PlaylistOptions struct {
	Loop               bool
	Shuffle            bool
	Crossfade          bool
	CrossfadeDuration  time.Duration
	DelayBetweenTracks time.Duration
}

// crossfade returns the cross-fade duration, 0 when disabled
func (o PlaylistOptions) crossfade() time.Duration {
	if !o.Crossfade || o.CrossfadeDuration <= 0 {
		return 0
	}
	return o.CrossfadeDuration
}

// Playlist decides which track plays next. It only deals in indices into
// its track list; the engine turns them into music voices.
type Playlist struct {
	tracks  []string
	opts    PlaylistOptions
	history []int
	// played marks indices used in the current non-looping shuffle pass
	played  []bool
	playing bool
	rng     *rand.Rand
}

// NewPlaylist returns an empty playlist drawing shuffles from rng
func NewPlaylist(opts PlaylistOptions, rng *rand.Rand) *Playlist {
	return &Playlist{opts: opts, rng: rng}
}

// Options returns the current options
func (p *Playlist) Options() PlaylistOptions { return p.opts }

// SetOptions replaces the options. Toggling shuffle keeps the history.
func (p *Playlist) SetOptions(opts PlaylistOptions) { p.opts = opts }

// SetTracks replaces the track list and forgets the history
func (p *Playlist) SetTracks(tracks []string) {
	p.tracks = slices.Clone(tracks)
	p.Reset()
}

// Enqueue appends a track
func (p *Playlist) Enqueue(track string) {
	p.tracks = append(p.tracks, track)
	p.played = append(p.played, false)
}

// Tracks returns a copy of the track list
func (p *Playlist) Tracks() []string { return slices.Clone(p.tracks) }

// Len is the number of tracks
func (p *Playlist) Len() int { return len(p.tracks) }

// Track returns the track at index i
func (p *Playlist) Track(i int) string { return p.tracks[i] }

// Reset forgets the history and the shuffle pass
func (p *Playlist) Reset() {
	p.history = p.history[:0]
	p.played = make([]bool, len(p.tracks))
}

// History returns a copy of the played indices, oldest first
func (p *Playlist) History() []int { return slices.Clone(p.history) }

// Current returns the index of the most recent track
func (p *Playlist) Current() (int, bool) {
	if len(p.history) == 0 {
		return 0, false
	}
	return p.history[len(p.history)-1], true
}

// Playing reports whether the playlist drives the music
func (p *Playlist) Playing() bool { return p.playing }

func (p *Playlist) setPlaying(playing bool) { p.playing = playing }

// Window is the number of recent tracks a looping shuffle avoids:
// clamp(n/4, 2, 10), never more than n-1.
func (p *Playlist) Window() int {
	n := len(p.tracks)
	w := min(max(n/4, minShuffleWindow), maxShuffleWindow)
	return max(min(w, n-1), 0)
}

// Next advances and returns the new current index. ok is false when the
// list is empty or a non-looping list is exhausted.
func (p *Playlist) Next() (int, bool) {
	n := len(p.tracks)
	if n == 0 {
		return 0, false
	}

	var next int
	switch {
	case p.opts.Shuffle && p.opts.Loop:
		next = p.drawExcluding(p.recent(p.Window()))
	case p.opts.Shuffle:
		var unplayed []int
		for i, done := range p.played {
			if !done {
				unplayed = append(unplayed, i)
			}
		}
		if len(unplayed) == 0 {
			return 0, false
		}
		next = unplayed[p.rng.IntN(len(unplayed))]
	default:
		last, ok := p.Current()
		switch {
		case !ok:
			next = 0
		case last+1 < n:
			next = last + 1
		case p.opts.Loop:
			next = 0
		default:
			return 0, false
		}
	}

	p.push(next)
	return next, true
}

// Previous steps back and returns the new current index
func (p *Playlist) Previous() (int, bool) {
	n := len(p.tracks)
	if n == 0 {
		return 0, false
	}

	if p.opts.Shuffle {
		if len(p.history) < 2 {
			if !p.opts.Loop {
				return 0, false
			}
			p.push(n - 1)
			return n - 1, true
		}
		cur := p.pop()
		prev := p.pop()
		if cur != prev {
			p.played[cur] = false
		}
		p.push(prev)
		return prev, true
	}

	last, ok := p.Current()
	var prev int
	switch {
	case ok && last > 0:
		prev = last - 1
	case p.opts.Loop:
		prev = n - 1
	default:
		return 0, false
	}
	if ok {
		p.pop()
	}
	if cur, ok := p.Current(); !ok || cur != prev {
		p.push(prev)
	}
	return prev, true
}

func (p *Playlist) push(i int) {
	p.history = append(p.history, i)
	if i < len(p.played) {
		p.played[i] = true
	}
	if limit := max(minHistory, 2*len(p.tracks)); len(p.history) > limit {
		p.history = slices.Delete(p.history, 0, len(p.history)-limit)
	}
}

func (p *Playlist) pop() int {
	last := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	return last
}

// recent returns up to w most recent distinct indices
func (p *Playlist) recent(w int) map[int]bool {
	out := make(map[int]bool, w)
	for i := len(p.history) - 1; i >= 0 && len(out) < w; i-- {
		out[p.history[i]] = true
	}
	return out
}

func (p *Playlist) drawExcluding(exclude map[int]bool) int {
	candidates := make([]int, 0, len(p.tracks))
	for i := range p.tracks {
		if !exclude[i] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return p.rng.IntN(len(p.tracks))
	}
	return candidates[p.rng.IntN(len(candidates))]
}
