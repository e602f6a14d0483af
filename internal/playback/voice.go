package playback

import (
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/soundbank/internal/soundbank"
)

// VoiceState is the lifecycle stage of a voice
type VoiceState int

const (
	// StateIdle voices sit in the instance pool
	StateIdle VoiceState = iota
	// StateStarting voices wait for their delayed start
	StateStarting
	StatePlaying
	StatePaused
	StateFadingOut
	// StateStopped voices have released their clip
	StateStopped
)

var voiceStateNames = [...]string{"idle", "starting", "playing", "paused", "fading_out", "stopped"}

func (s VoiceState) String() string {
	if s < 0 || int(s) >= len(voiceStateNames) {
		return "unknown"
	}
	return voiceStateNames[s]
}

// mixer is what a voice needs from its engine
type mixer interface {
	now() time.Time
	categoryGain(category string) float64
	globalGain() float64
	// crossfadeWindow is the about-to-finish window for v, 0 when none applies
	crossfadeWindow(v *Voice) time.Duration
	aboutToFinish(v *Voice)
	release(v *Voice, completed bool)
}

// Voice is one playing instance of a clip sub-item
type Voice struct {
	kind       string
	generation uint64
	mix        mixer

	id      uuid.UUID
	trigger *soundbank.Item // item passed to Play
	pick    Pick
	clip    Clip
	state   VoiceState
	paused  bool
	loop    bool

	startAt   time.Time
	startedAt time.Time
	offset    time.Duration

	// pre is the linear gain before the category: sub-item x item x caller
	pre       float64
	semitones float64
	pan       float64

	fadeInActive bool
	fadeInStart  time.Time
	fadeInDur    time.Duration

	fadeOutActive bool
	fadeOutStart  time.Time
	fadeOutDur    time.Duration

	finishing   bool // about-to-finish already signalled
	stopAtEnd   bool // the running fade-out ends the clip at its stop offset
	onCompleted func(Handle)
	gain        float64
}

func newVoice(kind string) *Voice {
	return &Voice{kind: kind, state: StateIdle}
}

// reset returns the voice to the idle state and invalidates its handles
func (v *Voice) reset() {
	gen := v.generation + 1
	*v = Voice{kind: v.kind, generation: gen, state: StateIdle}
}

// Handle returns a handle to the current lease of v
func (v *Voice) handle() Handle {
	return Handle{v: v, gen: v.generation}
}

// startTime is when the clip started, or is scheduled to start
func (v *Voice) startTime() time.Time {
	if v.startedAt.IsZero() {
		return v.startAt
	}
	return v.startedAt
}

// category is the category whose gain applies to the voice
func (v *Voice) category() string {
	return v.pick.Item.CategoryName()
}

// begin starts the clip; called once startAt has passed
func (v *Voice) begin(now time.Time) {
	v.state = StatePlaying
	v.startedAt = now
	v.clip.Play(v.offset)
	if v.fadeInDur > 0 {
		v.fadeInActive = true
		v.fadeInStart = now
	}
	if v.paused {
		v.clip.Pause()
	}
}

// update advances the voice to now. It returns false once the voice has
// been released.
func (v *Voice) update(now time.Time) bool {
	gen := v.generation
	switch v.state {
	case StateStopped, StateIdle:
		return false
	case StateStarting:
		if v.paused || now.Before(v.startAt) {
			return true
		}
		v.begin(now)
	}
	if v.paused {
		v.applyGain(now)
		return true
	}

	if v.fadeInActive && fadeFactor(now.Sub(v.fadeInStart).Seconds(), v.fadeInDur.Seconds()) >= 1 {
		v.fadeInActive = false
	}
	if v.fadeOutActive && fadeFactor(now.Sub(v.fadeOutStart).Seconds(), v.fadeOutDur.Seconds()) >= 1 {
		v.finish(v.stopAtEnd)
		return false
	}

	if !v.clip.IsPlaying() {
		if v.onCompleted != nil {
			v.onCompleted(v.handle())
			if !v.live(gen) {
				return false
			}
		}
		if !v.clip.IsPlaying() {
			v.finish(true)
			return false
		}
	}

	v.checkClipStop(now)
	if !v.live(gen) {
		return false
	}
	v.checkAboutToFinish()
	if !v.live(gen) {
		return false
	}

	v.applyGain(now)
	return true
}

// checkClipStop fades out ahead of an explicit clip stop offset
func (v *Voice) checkClipStop(now time.Time) {
	stopAt := v.pick.SubItem.ClipStop
	if stopAt <= 0 || v.fadeOutActive {
		return
	}
	remaining := v.remaining(stopAt)
	fade := v.pick.SubItem.FadeOut
	if remaining > fade {
		return
	}
	if remaining <= 0 || fade <= 0 {
		v.finish(true)
		return
	}
	v.startFadeOut(now, fade)
	v.stopAtEnd = true
}

// live reports whether v still holds the lease identified by gen
func (v *Voice) live(gen uint64) bool {
	return v.generation == gen && v.state != StateStopped && v.state != StateIdle
}

func (v *Voice) checkAboutToFinish() {
	if v.finishing {
		return
	}
	window := v.mix.crossfadeWindow(v)
	if window <= 0 {
		return
	}
	end := v.clip.Length()
	if stop := v.pick.SubItem.ClipStop; stop > 0 && (end <= 0 || stop < end) {
		end = stop
	}
	if end <= 0 || v.remaining(end) > window {
		return
	}
	v.finishing = true
	v.mix.aboutToFinish(v)
}

// remaining is the wall time until the clip position reaches end
func (v *Voice) remaining(end time.Duration) time.Duration {
	left := end - v.clip.Position()
	return time.Duration(float64(left) / PitchMultiplier(v.semitones))
}

// stop ends the voice, immediately or after a fade
func (v *Voice) stop(now time.Time, fade time.Duration) {
	switch v.state {
	case StateStopped, StateIdle:
		return
	case StateStarting:
		v.finish(false)
		return
	}
	v.stopAtEnd = false
	if fade <= 0 {
		v.finish(false)
		return
	}
	if v.fadeOutActive && v.fadeOutStart.Add(v.fadeOutDur).Before(now.Add(fade)) {
		return
	}
	v.startFadeOut(now, fade)
}

// startFadeOut cancels any fade-in and anchors a new fade-out at now
func (v *Voice) startFadeOut(now time.Time, fade time.Duration) {
	v.fadeInActive = false
	v.fadeOutActive = true
	v.fadeOutStart = now
	v.fadeOutDur = fade
	v.state = StateFadingOut
	v.applyGain(now)
}

// finish stops the clip and hands the voice back to its pool
func (v *Voice) finish(completed bool) {
	if v.state == StateStopped || v.state == StateIdle {
		return
	}
	v.state = StateStopped
	v.gain = 0
	if v.clip != nil {
		v.clip.Stop()
	}
	v.mix.release(v, completed)
}

func (v *Voice) pause() {
	if v.paused || v.state == StateStopped || v.state == StateIdle {
		return
	}
	v.paused = true
	if v.state != StateStarting {
		v.clip.Pause()
	}
}

func (v *Voice) resume() {
	if !v.paused {
		return
	}
	v.paused = false
	if v.state != StateStarting {
		v.clip.Resume()
	}
}

// volume is the caller-facing linear volume including the category gain
func (v *Voice) volume() float64 {
	return v.pre * v.mix.categoryGain(v.category())
}

// setVolume stores v so that volume() returns it under the current category gain
func (v *Voice) setVolume(now time.Time, vol float64) {
	cat := v.mix.categoryGain(v.category())
	if cat > 0 {
		v.pre = vol / cat
	} else {
		v.pre = vol
	}
	v.applyGain(now)
}

// effectiveGain composes the amplitude pushed to the clip
func (v *Voice) effectiveGain(now time.Time) float64 {
	if v.state == StateStarting || v.state == StateStopped || v.state == StateIdle {
		return 0
	}
	g := Perceptual(clamp01(v.volume()))
	if v.fadeInActive {
		g *= fadeFactor(now.Sub(v.fadeInStart).Seconds(), v.fadeInDur.Seconds())
	}
	if v.fadeOutActive {
		g *= 1 - fadeFactor(now.Sub(v.fadeOutStart).Seconds(), v.fadeOutDur.Seconds())
	}
	return g * v.mix.globalGain()
}

func (v *Voice) applyGain(now time.Time) {
	v.gain = v.effectiveGain(now)
	if v.clip != nil && v.state != StateStarting {
		v.clip.SetVolume(v.gain)
	}
}

// publicState folds the pause flag into the lifecycle state
func (v *Voice) publicState() VoiceState {
	if v.paused && v.state != StateStopped && v.state != StateIdle {
		return StatePaused
	}
	return v.state
}
