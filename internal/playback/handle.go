package playback

import (
	"time"

	"github.com/google/uuid"
)

// Handle refers to one lease of a voice. Once the voice is released the
// handle goes stale and every method becomes a no-op returning zero values.
// Handles must be used from the goroutine driving the engine.
type Handle struct {
	v   *Voice
	gen uint64
}

// Valid reports whether the handle still refers to a live voice
func (h Handle) Valid() bool {
	return h.v != nil && h.v.generation == h.gen && h.v.state != StateIdle
}

// ID is unique per lease
func (h Handle) ID() uuid.UUID {
	if !h.Valid() {
		return uuid.Nil
	}
	return h.v.id
}

// Item is the name of the item that was triggered
func (h Handle) Item() string {
	if !h.Valid() {
		return ""
	}
	return h.v.trigger.Name
}

// Clip is the clip name being played
func (h Handle) Clip() string {
	if !h.Valid() {
		return ""
	}
	return h.v.pick.SubItem.Clip
}

// Category is the category whose gain applies
func (h Handle) Category() string {
	if !h.Valid() {
		return ""
	}
	return h.v.category()
}

// State returns StateStopped for stale handles
func (h Handle) State() VoiceState {
	if !h.Valid() {
		return StateStopped
	}
	return h.v.publicState()
}

// IsPlaying reports whether the voice is audible or about to be
func (h Handle) IsPlaying() bool {
	return h.Valid() && h.v.state != StateStopped
}

// Volume is the linear volume including the category gain
func (h Handle) Volume() float64 {
	if !h.Valid() {
		return 0
	}
	return h.v.volume()
}

// SetVolume sets the linear volume including the category gain
func (h Handle) SetVolume(vol float64) {
	if !h.Valid() {
		return
	}
	h.v.setVolume(h.now(), clamp01(vol))
}

// Gain is the amplitude last pushed to the clip
func (h Handle) Gain() float64 {
	if !h.Valid() {
		return 0
	}
	return h.v.gain
}

// Pitch is the playback rate multiplier
func (h Handle) Pitch() float64 {
	if !h.Valid() {
		return 0
	}
	return PitchMultiplier(h.v.semitones)
}

// SetPitch changes the playback rate multiplier
func (h Handle) SetPitch(multiplier float64) {
	if !h.Valid() || multiplier <= 0 {
		return
	}
	h.v.semitones = Semitones(multiplier)
	h.v.clip.SetPitch(multiplier)
}

// Position is the offset into the clip
func (h Handle) Position() time.Duration {
	if !h.Valid() {
		return 0
	}
	return h.v.clip.Position()
}

// Stop ends the voice after fade, or immediately when fade is 0
func (h Handle) Stop(fade time.Duration) {
	if !h.Valid() {
		return
	}
	h.v.stop(h.now(), fade)
}

// Pause freezes the clip position
func (h Handle) Pause() {
	if h.Valid() {
		h.v.pause()
	}
}

// Resume continues a paused voice
func (h Handle) Resume() {
	if h.Valid() {
		h.v.resume()
	}
}

// Replay restarts the clip from its start offset. A completion callback
// calling Replay keeps the voice alive.
func (h Handle) Replay() {
	if !h.Valid() || h.v.state == StateStopped || h.v.state == StateStarting {
		return
	}
	h.v.finishing = false
	h.v.clip.Play(h.v.offset)
	if h.v.paused {
		h.v.clip.Pause()
	}
}

func (h Handle) now() time.Time {
	return h.v.mix.now()
}
