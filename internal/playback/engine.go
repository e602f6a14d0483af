package playback

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/soundbank/internal/errors"
	"github.com/tphakala/soundbank/internal/logger"
	"github.com/tphakala/soundbank/internal/observability/metrics"
	"github.com/tphakala/soundbank/internal/soundbank"
)

// Engine plays items from a registry. Methods are not safe for concurrent
// use; goroutines other than the one ticking the engine go through Do.
type Engine struct {
	mu sync.Mutex

	registry *soundbank.Registry
	backend  Backend
	clock    Clock
	log      logger.Logger
	metrics  *MetricsCollector
	cfg      Config

	selector *Selector
	voices   *VoicePool
	pool     *InstancePool
	playlist *Playlist
	music    Handle

	gains    map[string]float64 // category gains
	global   float64
	warnings *cache.Cache

	lastSweep time.Time
	closed    bool
}

// Stats is a snapshot of engine state
type Stats struct {
	Voices           int
	VoicesByCategory map[string]int
	Music            string
	PlaylistPlaying  bool
	PlaylistTracks   int
	Pool             map[string]PoolStats
}

// New builds an engine over reg. A nil backend simulates clips using the
// registry's clip lengths.
func New(reg *soundbank.Registry, backend Backend, cfg Config, opts ...EngineOption) (*Engine, error) {
	if reg == nil {
		return nil, errors.Newf("registry is required").
			Component(ComponentPlayback).
			Category(errors.CategoryValidation).
			Build()
	}
	if cfg.GlobalVolume < 0 || cfg.GlobalVolume > 1 {
		return nil, errors.Newf("global volume %v outside [0,1]", cfg.GlobalVolume).
			Component(ComponentPlayback).
			Category(errors.CategoryValidation).
			Build()
	}
	if cfg.DefaultPrefab == "" {
		cfg.DefaultPrefab = DefaultPrefab
	}
	if cfg.EvictionFade < 0 {
		cfg.EvictionFade = 0
	}

	e := &Engine{
		registry: reg,
		backend:  backend,
		clock:    SystemClock{},
		log:      logger.Global().Module("playback"),
		cfg:      cfg,
		gains:    make(map[string]float64),
		global:   cfg.GlobalVolume,
		voices:   NewVoicePool(),
		// no janitor goroutine; expired keys are swept from Tick
		warnings: cache.New(cfg.WarningInterval, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backend == nil {
		e.backend = NewSimulatedBackend(e.clock, reg.Clips())
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	e.selector = NewSelector(seed, cfg.MaxRedirectDepth)
	e.playlist = NewPlaylist(cfg.Playlist, rand.New(rand.NewPCG(seed+1, seed^0x5bd1e995)))
	e.pool = NewInstancePool(cfg.Pool.Enabled, cfg.Pool.MaxInstances, e.metrics, e.log.Module("pool"))

	for _, c := range reg.Categories() {
		e.gains[c.Name] = clamp01(c.Volume)
	}
	if cfg.Pool.Preallocate > 0 {
		for _, kind := range e.prefabKinds() {
			e.pool.Preallocate(kind, cfg.Pool.Preallocate)
		}
	}
	if len(cfg.Tracks) > 0 {
		e.SetMusicPlaylist(cfg.Tracks)
	}

	e.log.Info("engine ready",
		logger.Int("categories", len(e.gains)),
		logger.Uint64("seed", seed),
		logger.Bool("pool", cfg.Pool.Enabled))
	return e, nil
}

// Do runs fn while holding the engine lock
func (e *Engine) Do(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Registry returns the definitions the engine plays
func (e *Engine) Registry() *soundbank.Registry { return e.registry }

// mixer implementation

func (e *Engine) now() time.Time { return e.clock.Now() }

func (e *Engine) categoryGain(category string) float64 {
	if g, ok := e.gains[category]; ok {
		return g
	}
	return 1
}

func (e *Engine) globalGain() float64 { return e.global }

func (e *Engine) isMusic(v *Voice) bool {
	return e.music.v == v && e.music.gen == v.generation
}

func (e *Engine) crossfadeWindow(v *Voice) time.Duration {
	if !e.isMusic(v) || !e.playlist.Playing() {
		return 0
	}
	return e.playlist.Options().crossfade()
}

func (e *Engine) aboutToFinish(v *Voice) {
	e.log.Debug("music track about to finish", logger.String("item", v.trigger.Name))
	e.advance(metrics.DirectionAuto)
}

func (e *Engine) release(v *Voice, completed bool) {
	wasMusic := e.isMusic(v)
	e.voices.remove(v)
	e.pool.Release(v, v.pick.Item.DestroyOnSceneChange)
	if !wasMusic {
		return
	}
	e.music = Handle{}
	if completed && e.playlist.Playing() {
		e.advance(metrics.DirectionAuto)
	}
}

// Play triggers item id and returns a handle to the first voice started
func (e *Engine) Play(id string, opts ...PlayOption) (Handle, bool) {
	item, ok := e.lookupTrigger(id)
	if !ok {
		return Handle{}, false
	}
	h, err := e.trigger(item, -1, collectPlayOptions(opts))
	return h, e.outcome(item, err)
}

// PlaySubItem plays the sub-item at index regardless of the pick mode
func (e *Engine) PlaySubItem(id string, index int, opts ...PlayOption) (Handle, bool) {
	item, ok := e.lookupTrigger(id)
	if !ok {
		return Handle{}, false
	}
	h, err := e.trigger(item, index, collectPlayOptions(opts))
	return h, e.outcome(item, err)
}

// PlayMusic replaces the current music, cross-fading when the playlist
// options enable it. It takes the music out of playlist control.
func (e *Engine) PlayMusic(id string, opts ...PlayOption) (Handle, bool) {
	item, ok := e.lookupTrigger(id)
	if !ok {
		return Handle{}, false
	}
	h, err := e.playMusic(item, collectPlayOptions(opts))
	ok = e.outcome(item, err)
	if ok {
		e.playlist.setPlaying(false)
	}
	return h, ok
}

func (e *Engine) playMusic(item *soundbank.Item, o playOptions) (Handle, error) {
	cross := e.playlist.Options().crossfade()
	if old := e.music; old.Valid() {
		e.music = Handle{}
		old.v.stop(e.clock.Now(), cross)
	}
	if cross > 0 && o.fadeIn == 0 {
		o.fadeIn = cross
	}
	h, err := e.trigger(item, -1, o)
	if err != nil {
		return Handle{}, err
	}
	e.music = h
	return h, nil
}

// Music returns the current music voice
func (e *Engine) Music() Handle {
	if !e.music.Valid() {
		return Handle{}
	}
	return e.music
}

func (e *Engine) trigger(item *soundbank.Item, index int, o playOptions) (Handle, error) {
	if e.closed {
		return Handle{}, ErrEngineClosed
	}
	now := e.clock.Now()
	if !e.voices.Allow(item, now) {
		return Handle{}, ErrRateLimited
	}

	var picks []Pick
	var err error
	if index >= 0 {
		picks, err = e.selector.SelectIndex(item, index)
	} else {
		picks, err = e.selector.Select(item)
	}
	if err != nil {
		return Handle{}, err
	}

	var first Handle
	var firstErr error
	for _, pk := range picks {
		if ev := e.voices.Evictee(item); ev != nil {
			e.log.Debug("evicting voice",
				logger.String("item", item.Name),
				logger.Int("max_instances", item.MaxInstances))
			ev.stop(now, e.cfg.EvictionFade)
			e.metrics.eviction(item.Name)
		}
		h, err := e.startVoice(item, pk, o, now)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !first.Valid() {
			first = h
		}
	}
	if !first.Valid() {
		if firstErr == nil {
			firstErr = errors.New(soundbank.ErrInvalidSubItem).
				Context("item", item.Name).
				Context("reason", "no sub-items").
				Build()
		}
		return Handle{}, firstErr
	}

	e.voices.MarkTriggered(item, now)
	return first, nil
}

func (e *Engine) startVoice(trigger *soundbank.Item, pk Pick, o playOptions, now time.Time) (Handle, error) {
	v, err := e.pool.Acquire(e.prefabFor(pk.Item))
	if err != nil {
		return Handle{}, err
	}
	sub := pk.SubItem
	clip, err := e.backend.Open(sub.Clip)
	if err != nil {
		e.pool.Release(v, true)
		return Handle{}, err
	}

	vol, semitones := e.selector.Jitter(sub)
	delay := pk.Item.Delay + sub.Delay + o.delay
	if trigger != pk.Item {
		delay += trigger.Delay
	}

	v.mix = e
	v.id = uuid.New()
	v.trigger = trigger
	v.pick = pk
	v.clip = clip
	v.loop = pk.Item.Loop
	v.pre = vol * pk.Item.Volume * o.volume
	v.semitones = semitones
	v.pan = sub.Pan
	v.offset = sub.ClipStart + o.startTime
	v.fadeInDur = sub.FadeIn
	if o.fadeIn > 0 {
		v.fadeInDur = o.fadeIn
	}
	v.onCompleted = o.onCompleted
	v.startAt = now.Add(delay)
	v.state = StateStarting

	clip.SetPitch(PitchMultiplier(semitones))
	clip.SetPan(sub.Pan)
	clip.SetLoop(v.loop)

	e.voices.add(v)
	if !now.Before(v.startAt) {
		v.begin(now)
	}
	v.applyGain(now)

	e.log.Trace("voice started",
		logger.String("item", trigger.Name),
		logger.String("clip", sub.Clip),
		logger.Duration("delay", delay),
		logger.Float64("volume", v.pre))
	return v.handle(), nil
}

// outcome records the result of a trigger and reports whether it started
func (e *Engine) outcome(item *soundbank.Item, err error) bool {
	switch {
	case err == nil:
		e.metrics.trigger(item.Name, metrics.OutcomeStarted)
		return true
	case errors.Is(err, ErrRateLimited):
		e.metrics.trigger(item.Name, metrics.OutcomeRateLimited)
		e.log.Trace("trigger rate limited", logger.String("item", item.Name))
	case errors.Is(err, ErrPickDisabled):
		e.metrics.trigger(item.Name, metrics.OutcomeDisabled)
		e.warn("pick_disabled", item.Name, "item has automatic picking disabled", logger.Error(err))
	case errors.Is(err, ErrEngineClosed):
		e.metrics.trigger(item.Name, metrics.OutcomeFailed)
	default:
		e.metrics.trigger(item.Name, metrics.OutcomeFailed)
		e.warn(warningKind(err), item.Name, "trigger failed", logger.Error(err))
	}
	return false
}

func warningKind(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetCategory()
	}
	return string(errors.CategoryGeneric)
}

// warn logs a configuration problem at most once per warning interval
func (e *Engine) warn(kind, id, msg string, fields ...logger.Field) {
	e.metrics.configError(kind)
	if e.cfg.WarningInterval > 0 {
		if err := e.warnings.Add(kind+":"+id, struct{}{}, e.cfg.WarningInterval); err != nil {
			return
		}
	}
	fields = append(fields, logger.String("kind", kind), logger.String("id", id))
	e.log.Warn(msg, fields...)
}

func (e *Engine) lookupItem(id string) (*soundbank.Item, bool) {
	item, ok := e.registry.Item(id)
	if !ok {
		err := errors.New(ErrItemNotFound).Context("item", id).Build()
		e.warn("unknown_item", id, "unknown item", logger.String("item", id), logger.Error(err))
	}
	return item, ok
}

// lookupTrigger is lookupItem for the play operations
func (e *Engine) lookupTrigger(id string) (*soundbank.Item, bool) {
	item, ok := e.lookupItem(id)
	if !ok {
		e.metrics.trigger(id, metrics.OutcomeNotFound)
	}
	return item, ok
}

func (e *Engine) lookupCategory(name string) bool {
	if _, ok := e.registry.Category(name); ok {
		return true
	}
	err := errors.New(ErrCategoryNotFound).Context("category", name).Build()
	e.warn("unknown_category", name, "unknown category", logger.String("category", name), logger.Error(err))
	return false
}

func (e *Engine) prefabFor(item *soundbank.Item) string {
	if item.Category != nil && item.Category.Prefab != "" {
		return item.Category.Prefab
	}
	return e.cfg.DefaultPrefab
}

func (e *Engine) prefabKinds() []string {
	seen := map[string]bool{e.cfg.DefaultPrefab: true}
	kinds := []string{e.cfg.DefaultPrefab}
	for _, c := range e.registry.Categories() {
		if c.Prefab != "" && !seen[c.Prefab] {
			seen[c.Prefab] = true
			kinds = append(kinds, c.Prefab)
		}
	}
	return kinds
}

// Stop ends every voice of item id and reports whether any was live
func (e *Engine) Stop(id string, fade time.Duration) bool {
	item, ok := e.lookupItem(id)
	if !ok {
		return false
	}
	return e.stopVoices(e.voices.Voices(item), fade) > 0
}

// StopAll ends every voice, music included, and halts the playlist
func (e *Engine) StopAll(fade time.Duration) {
	e.playlist.setPlaying(false)
	e.music = Handle{}
	e.stopVoices(e.voices.All(), fade)
}

// StopCategory ends every voice whose gain comes from category name
func (e *Engine) StopCategory(name string, fade time.Duration) bool {
	if !e.lookupCategory(name) {
		return false
	}
	return e.stopVoices(e.categoryVoices(name), fade) > 0
}

// StopMusic ends the current music and halts the playlist
func (e *Engine) StopMusic(fade time.Duration) bool {
	e.playlist.setPlaying(false)
	h := e.music
	e.music = Handle{}
	if !h.Valid() {
		return false
	}
	h.v.stop(e.clock.Now(), fade)
	return true
}

func (e *Engine) stopVoices(handles []Handle, fade time.Duration) int {
	now := e.clock.Now()
	n := 0
	for _, h := range handles {
		if h.Valid() {
			h.v.stop(now, fade)
			n++
		}
	}
	return n
}

func (e *Engine) categoryVoices(name string) []Handle {
	var out []Handle
	for _, h := range e.voices.All() {
		if h.v.category() == name {
			out = append(out, h)
		}
	}
	return out
}

// ChangeScene stops every voice of items marked destroy_on_scene_change and
// forgets sequence and no-repeat pick history
func (e *Engine) ChangeScene() {
	now := e.clock.Now()
	n := 0
	for _, h := range e.voices.All() {
		if h.Valid() && h.v.pick.Item.DestroyOnSceneChange {
			h.v.stop(now, 0)
			n++
		}
	}
	e.selector.Reset()
	e.log.Debug("scene changed", logger.Int("stopped", n))
}

// PauseAll pauses every live voice
func (e *Engine) PauseAll() {
	for _, h := range e.voices.All() {
		h.Pause()
	}
}

// ResumeAll resumes every paused voice
func (e *Engine) ResumeAll() {
	for _, h := range e.voices.All() {
		h.Resume()
	}
}

// PauseCategory pauses the voices of category name
func (e *Engine) PauseCategory(name string) bool {
	if !e.lookupCategory(name) {
		return false
	}
	for _, h := range e.categoryVoices(name) {
		h.Pause()
	}
	return true
}

// ResumeCategory resumes the voices of category name
func (e *Engine) ResumeCategory(name string) bool {
	if !e.lookupCategory(name) {
		return false
	}
	for _, h := range e.categoryVoices(name) {
		h.Resume()
	}
	return true
}

// SetCategoryVolume sets a category gain and applies it to live voices at once
func (e *Engine) SetCategoryVolume(name string, volume float64) bool {
	if !e.lookupCategory(name) {
		return false
	}
	e.gains[name] = clamp01(volume)
	e.refreshGains()
	return true
}

// CategoryVolume returns the current gain of category name
func (e *Engine) CategoryVolume(name string) (float64, bool) {
	g, ok := e.gains[name]
	return g, ok
}

// SetGlobalVolume sets the master gain
func (e *Engine) SetGlobalVolume(volume float64) {
	e.global = clamp01(volume)
	e.refreshGains()
}

// GlobalVolume returns the master gain
func (e *Engine) GlobalVolume() float64 { return e.global }

func (e *Engine) refreshGains() {
	now := e.clock.Now()
	for _, h := range e.voices.All() {
		h.v.applyGain(now)
	}
}

// IsPlaying reports whether item id has any live voice
func (e *Engine) IsPlaying(id string) bool {
	return e.GetPlayingVoicesCount(id) > 0
}

// GetPlayingVoices returns handles to the live voices of item id
func (e *Engine) GetPlayingVoices(id string) []Handle {
	item, ok := e.lookupItem(id)
	if !ok {
		return nil
	}
	return e.voices.Voices(item)
}

// GetPlayingVoicesCount counts the live voices of item id
func (e *Engine) GetPlayingVoicesCount(id string) int {
	return len(e.GetPlayingVoices(id))
}

// Tick advances fades, delayed starts, completions and the playlist
func (e *Engine) Tick() {
	start := time.Now()
	now := e.clock.Now()

	for _, h := range e.voices.All() {
		if h.Valid() {
			h.v.update(now)
		}
	}

	e.metrics.voices(e.voiceCounts())
	if now.Sub(e.lastSweep) >= warningSweepInterval {
		e.warnings.DeleteExpired()
		e.lastSweep = now
	}
	e.metrics.tick(time.Since(start))
}

// voiceCounts includes every category so idle ones report zero
func (e *Engine) voiceCounts() map[string]int {
	counts := e.voices.countByCategory()
	for name := range e.gains {
		if _, ok := counts[name]; !ok {
			counts[name] = 0
		}
	}
	return counts
}

// Stats returns a snapshot of engine state
func (e *Engine) Stats() Stats {
	s := Stats{
		Voices:           e.voices.Len(),
		VoicesByCategory: e.voiceCounts(),
		PlaylistPlaying:  e.playlist.Playing(),
		PlaylistTracks:   e.playlist.Len(),
		Pool:             e.pool.Stats(),
	}
	if m := e.Music(); m.Valid() {
		s.Music = m.Item()
	}
	return s
}

// Close stops every voice and drops pooled instances. Later triggers fail.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.StopAll(0)
	e.pool.Drain()
	e.warnings.Flush()
	e.closed = true
	e.log.Info("engine closed")
	return nil
}

// Closed reports whether Close has run
func (e *Engine) Closed() bool { return e.closed }
