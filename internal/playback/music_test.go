package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/soundbank/internal/soundbank"
)

func musicEngine(t *testing.T, opts PlaylistOptions, tracks ...string) (*Engine, *ManualClock) {
	t.Helper()
	clips := map[string]time.Duration{"t1": 10 * time.Second, "t2": 10 * time.Second, "t3": 10 * time.Second}
	music := newCategory("Music", 1,
		newItem("T1", soundbank.PickRandom, clipSub("t1")),
		newItem("T2", soundbank.PickRandom, clipSub("t2")),
		newItem("T3", soundbank.PickRandom, clipSub("t3")))
	music.Prefab = "music"
	reg := newTestRegistry(t, clips, music)
	return newTestEngine(t, reg, func(c *Config) {
		c.Playlist = opts
		c.Tracks = tracks
	})
}

func TestPlaylistAutoAdvance(t *testing.T) {
	t.Parallel()

	e, clock := musicEngine(t, PlaylistOptions{}, "T1", "T2")
	require.True(t, e.PlayMusicPlaylist())
	assert.True(t, e.IsPlaylistPlaying())
	assert.Equal(t, "T1", e.Music().Item())

	step(e, clock, 10*time.Second)
	assert.Equal(t, "T2", e.Music().Item())
	assert.False(t, e.IsPlaying("T1"))

	step(e, clock, 10*time.Second)
	assert.False(t, e.Music().Valid())
	assert.False(t, e.IsPlaylistPlaying(), "non-looping playlist stops after the last track")
}

func TestPlaylistAdvancesAtClipStop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fade time.Duration
	}{
		{"without fade", 0},
		{"with fade", time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sub := clipSub("t1")
			sub.ClipStop = 5 * time.Second
			sub.FadeOut = tt.fade
			clips := map[string]time.Duration{"t1": 10 * time.Second, "t2": 10 * time.Second}
			music := newCategory("Music", 1,
				newItem("T1", soundbank.PickRandom, sub),
				newItem("T2", soundbank.PickRandom, clipSub("t2")))
			reg := newTestRegistry(t, clips, music)
			e, clock := newTestEngine(t, reg, func(c *Config) {
				c.Playlist = PlaylistOptions{Loop: true}
				c.Tracks = []string{"T1", "T2"}
			})

			require.True(t, e.PlayMusicPlaylist())
			require.NotPanics(t, func() { step(e, clock, 4*time.Second) })
			assert.Equal(t, "T1", e.Music().Item())

			require.NotPanics(t, func() { step(e, clock, time.Second) })
			assert.Equal(t, "T2", e.Music().Item())
			assert.False(t, e.IsPlaying("T1"))
			assert.True(t, e.IsPlaylistPlaying())
		})
	}
}

func TestPlaylistDelayBetweenTracks(t *testing.T) {
	t.Parallel()

	e, clock := musicEngine(t, PlaylistOptions{DelayBetweenTracks: 500 * time.Millisecond}, "T1", "T2")
	require.True(t, e.PlayMusicPlaylist())

	step(e, clock, 10*time.Second)
	m := e.Music()
	assert.Equal(t, "T2", m.Item())
	assert.Equal(t, StateStarting, m.State())
	assert.True(t, e.IsPlaylistPlaying())

	step(e, clock, 500*time.Millisecond)
	assert.Equal(t, StatePlaying, m.State())
}

func TestPlaylistCrossfade(t *testing.T) {
	t.Parallel()

	opts := PlaylistOptions{Loop: true, Crossfade: true, CrossfadeDuration: 2 * time.Second}
	e, clock := musicEngine(t, opts, "T1", "T2")
	require.True(t, e.PlayMusicPlaylist())
	first := e.Music()

	step(e, clock, 7*time.Second)
	assert.Equal(t, first, e.Music())

	step(e, clock, time.Second)
	second := e.Music()
	assert.Equal(t, "T2", second.Item())
	assert.Equal(t, StateFadingOut, first.State())
	assert.InDelta(t, 0.0, second.Gain(), 1e-9, "incoming track fades in")

	step(e, clock, time.Second)
	assert.InDelta(t, 0.5, first.Gain(), 1e-9)
	assert.InDelta(t, 0.5, second.Gain(), 1e-9)

	step(e, clock, time.Second)
	assert.False(t, first.Valid())
	assert.InDelta(t, 1.0, second.Gain(), 1e-9)
	assert.Equal(t, []int{0, 1}, e.PlaylistHistory())
}

func TestPlayMusicTakesOverFromPlaylist(t *testing.T) {
	t.Parallel()

	e, _ := musicEngine(t, PlaylistOptions{Loop: true}, "T1", "T2")
	require.True(t, e.PlayMusicPlaylist())
	old := e.Music()

	h, ok := e.PlayMusic("T3")
	require.True(t, ok)
	assert.False(t, old.Valid(), "without cross-fade the old track stops at once")
	assert.Equal(t, h, e.Music())
	assert.False(t, e.IsPlaylistPlaying())

	assert.True(t, e.StopMusic(0))
	assert.False(t, e.Music().Valid())
}

func TestPlaylistManualNavigation(t *testing.T) {
	t.Parallel()

	e, _ := musicEngine(t, PlaylistOptions{}, "T1", "T2", "T3")
	require.True(t, e.PlayMusicPlaylist())

	require.True(t, e.PlayNextOnPlaylist())
	assert.Equal(t, "T2", e.Music().Item())

	require.True(t, e.PlayPreviousOnPlaylist())
	assert.Equal(t, "T1", e.Music().Item())

	assert.False(t, e.PlayPreviousOnPlaylist())
	assert.Equal(t, "T1", e.Music().Item(), "current music survives a failed step")
	assert.True(t, e.IsPlaylistPlaying())
}

func TestPlaylistEditing(t *testing.T) {
	t.Parallel()

	e, _ := musicEngine(t, PlaylistOptions{})
	assert.False(t, e.PlayMusicPlaylist(), "empty playlist")

	assert.False(t, e.SetMusicPlaylist([]string{"T1", "Nope"}))
	assert.Equal(t, []string{"T1"}, e.GetMusicPlaylist())

	assert.True(t, e.EnqueueMusic("T3"))
	assert.False(t, e.EnqueueMusic("Nope"))
	assert.Equal(t, []string{"T1", "T3"}, e.GetMusicPlaylist())

	opts := PlaylistOptions{Shuffle: true, Loop: true}
	e.ConfigurePlaylist(opts)
	assert.Equal(t, opts, e.PlaylistOptions())
}

func TestMusicUsesPrefabPool(t *testing.T) {
	t.Parallel()

	e, _ := musicEngine(t, PlaylistOptions{}, "T1")
	require.True(t, e.PlayMusicPlaylist())

	stats := e.Stats()
	assert.Equal(t, 1, stats.Pool["music"].Active)
	assert.Equal(t, "T1", stats.Music)
	assert.True(t, stats.PlaylistPlaying)
	assert.Equal(t, 1, stats.VoicesByCategory["Music"])
}
