package playback

import "time"

const (
	// ComponentPlayback identifies errors raised by this package
	ComponentPlayback = "playback"

	// PerceptualExponent shapes the control-to-amplitude volume curve
	PerceptualExponent = 1.6

	// DefaultMaxRedirectDepth bounds chains of redirect sub-items
	DefaultMaxRedirectDepth = 8

	// DefaultEvictionFade is applied to voices stopped by an instance cap
	DefaultEvictionFade = 200 * time.Millisecond

	// DefaultWarningInterval is the window in which a repeated configuration
	// warning is logged once
	DefaultWarningInterval = 10 * time.Second

	// DefaultPrefab is the voice prefab kind for categories without an override
	DefaultPrefab = "default"

	// Playlist shuffle window bounds
	minShuffleWindow = 2
	maxShuffleWindow = 10

	// minHistory is the smallest playlist history kept before trimming
	minHistory = 32

	// warningSweepInterval is how often expired warning keys are purged
	warningSweepInterval = time.Minute
)
