package playback

import (
	"time"

	"github.com/tphakala/soundbank/internal/conf"
	"github.com/tphakala/soundbank/internal/logger"
	"github.com/tphakala/soundbank/internal/observability/metrics"
)

// PoolConfig controls voice recycling
type PoolConfig struct {
	Enabled      bool
	MaxInstances int
	Preallocate  int
}

// Config holds engine tunables
type Config struct {
	GlobalVolume     float64
	Seed             uint64 // 0 seeds from the clock
	MaxRedirectDepth int
	EvictionFade     time.Duration
	WarningInterval  time.Duration
	DefaultPrefab    string
	Pool             PoolConfig
	Playlist         PlaylistOptions
	Tracks           []string
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		GlobalVolume:     1,
		MaxRedirectDepth: DefaultMaxRedirectDepth,
		EvictionFade:     DefaultEvictionFade,
		WarningInterval:  DefaultWarningInterval,
		DefaultPrefab:    DefaultPrefab,
		Pool:             PoolConfig{Enabled: true},
		Playlist: PlaylistOptions{
			Loop:              true,
			Crossfade:         true,
			CrossfadeDuration: 2 * time.Second,
		},
	}
}

// ConfigFromSettings maps loaded settings onto an engine config
func ConfigFromSettings(s *conf.Settings) Config {
	return Config{
		GlobalVolume:     s.Engine.GlobalVolume,
		Seed:             s.Engine.Seed,
		MaxRedirectDepth: s.Engine.MaxRedirectDepth,
		EvictionFade:     s.Engine.EvictionFade,
		WarningInterval:  s.Engine.WarningInterval,
		DefaultPrefab:    s.Engine.DefaultPrefab,
		Pool: PoolConfig{
			Enabled:      s.Pool.Enabled,
			MaxInstances: s.Pool.MaxInstances,
			Preallocate:  s.Pool.Preallocate,
		},
		Playlist: PlaylistOptions{
			Loop:               s.Playlist.Loop,
			Shuffle:            s.Playlist.Shuffle,
			Crossfade:          s.Playlist.Crossfade,
			CrossfadeDuration:  s.Playlist.CrossfadeDuration,
			DelayBetweenTracks: s.Playlist.DelayBetweenTracks,
		},
		Tracks: s.Playlist.Tracks,
	}
}

// EngineOption customises New
type EngineOption func(*Engine)

// WithClock replaces the system clock
func WithClock(c Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithLogger replaces the global logger
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithMetrics records engine events into m
func WithMetrics(m *metrics.PlaybackMetrics) EngineOption {
	return func(e *Engine) { e.metrics = NewMetricsCollector(m) }
}

type playOptions struct {
	volume      float64
	delay       time.Duration
	startTime   time.Duration
	fadeIn      time.Duration
	onCompleted func(Handle)
}

// PlayOption customises a single trigger
type PlayOption func(*playOptions)

// WithVolume scales the sub-item and item volume
func WithVolume(v float64) PlayOption {
	return func(o *playOptions) { o.volume = clamp01(v) }
}

// WithDelay postpones the start on top of item and sub-item delays
func WithDelay(d time.Duration) PlayOption {
	return func(o *playOptions) { o.delay = max(d, 0) }
}

// WithStartTime skips into the clip, added to the sub-item clip start
func WithStartTime(d time.Duration) PlayOption {
	return func(o *playOptions) { o.startTime = max(d, 0) }
}

// WithFadeIn overrides the sub-item fade-in
func WithFadeIn(d time.Duration) PlayOption {
	return func(o *playOptions) { o.fadeIn = max(d, 0) }
}

// WithOnCompleted is called when a non-looping clip reaches its end.
// Calling Replay on the handle keeps the voice alive.
func WithOnCompleted(fn func(Handle)) PlayOption {
	return func(o *playOptions) { o.onCompleted = fn }
}

func collectPlayOptions(opts []PlayOption) playOptions {
	o := playOptions{volume: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
