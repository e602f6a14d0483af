package playback

import (
	"sync"
	"time"

	"github.com/tphakala/soundbank/internal/errors"
)

// Clip is one playable audio source owned by a voice
type Clip interface {
	// Play starts playback at offset into the clip
	Play(offset time.Duration)
	Stop()
	Pause()
	Resume()
	// IsPlaying reports whether the clip was started and has neither been
	// stopped nor reached its end. A paused clip is still playing.
	IsPlaying() bool
	// Position is the playback offset into the clip
	Position() time.Duration
	// Length is the clip duration, 0 for streams without an end
	Length() time.Duration
	SetVolume(gain float64)
	SetPitch(multiplier float64)
	SetPan(pan float64)
	SetLoop(loop bool)
}

// Backend opens clips by name
type Backend interface {
	Open(name string) (Clip, error)
}

// SimulatedBackend produces clips that advance with a Clock instead of
// rendering audio. Clip lengths usually come from Registry.Clips.
type SimulatedBackend struct {
	clock   Clock
	mu      sync.RWMutex
	lengths map[string]time.Duration
}

// NewSimulatedBackend returns a backend knowing the given clip lengths
func NewSimulatedBackend(clock Clock, lengths map[string]time.Duration) *SimulatedBackend {
	b := &SimulatedBackend{clock: clock, lengths: make(map[string]time.Duration, len(lengths))}
	for name, l := range lengths {
		b.lengths[name] = l
	}
	return b
}

// SetLength registers or replaces a clip
func (b *SimulatedBackend) SetLength(name string, length time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lengths[name] = length
}

// Open implements Backend
func (b *SimulatedBackend) Open(name string) (Clip, error) {
	b.mu.RLock()
	length, ok := b.lengths[name]
	b.mu.RUnlock()
	if !ok {
		return nil, errors.New(ErrClipNotFound).Context("clip", name).Build()
	}
	return &SimulatedClip{name: name, length: length, clock: b.clock, pitch: 1, volume: 1}, nil
}

// SimulatedClip tracks position from clock time scaled by pitch
type SimulatedClip struct {
	name   string
	length time.Duration
	clock  Clock

	playing bool
	paused  bool
	loop    bool
	pitch   float64
	volume  float64
	pan     float64

	// position at anchorAt; the clip advances from there while unpaused
	anchorPos time.Duration
	anchorAt  time.Time
}

// Name returns the clip name
func (c *SimulatedClip) Name() string { return c.name }

func (c *SimulatedClip) rawPosition(now time.Time) time.Duration {
	if !c.playing || c.paused {
		return c.anchorPos
	}
	elapsed := float64(now.Sub(c.anchorAt)) * c.pitch
	return c.anchorPos + time.Duration(elapsed)
}

func (c *SimulatedClip) rebase() {
	now := c.clock.Now()
	c.anchorPos = c.rawPosition(now)
	c.anchorAt = now
}

func (c *SimulatedClip) Play(offset time.Duration) {
	c.playing = true
	c.paused = false
	c.anchorPos = offset
	c.anchorAt = c.clock.Now()
}

func (c *SimulatedClip) Stop() {
	c.playing = false
	c.paused = false
	c.anchorPos = 0
}

func (c *SimulatedClip) Pause() {
	if !c.playing || c.paused {
		return
	}
	c.rebase()
	c.paused = true
}

func (c *SimulatedClip) Resume() {
	if !c.paused {
		return
	}
	c.anchorAt = c.clock.Now()
	c.paused = false
}

func (c *SimulatedClip) IsPlaying() bool {
	if !c.playing {
		return false
	}
	if c.loop || c.length <= 0 {
		return true
	}
	return c.rawPosition(c.clock.Now()) < c.length
}

func (c *SimulatedClip) Position() time.Duration {
	p := c.rawPosition(c.clock.Now())
	switch {
	case c.length <= 0:
		return p
	case c.loop:
		return p % c.length
	case p > c.length:
		return c.length
	default:
		return p
	}
}

func (c *SimulatedClip) Length() time.Duration { return c.length }

func (c *SimulatedClip) SetVolume(gain float64) { c.volume = gain }

// Volume returns the last gain pushed by the voice
func (c *SimulatedClip) Volume() float64 { return c.volume }

func (c *SimulatedClip) SetPitch(multiplier float64) {
	if multiplier <= 0 {
		return
	}
	c.rebase()
	c.pitch = multiplier
}

// Pitch returns the playback rate multiplier
func (c *SimulatedClip) Pitch() float64 { return c.pitch }

func (c *SimulatedClip) SetPan(pan float64) { c.pan = pan }

// Pan returns the stereo position
func (c *SimulatedClip) Pan() float64 { return c.pan }

func (c *SimulatedClip) SetLoop(loop bool) {
	c.rebase()
	c.loop = loop
}
