package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soundbank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	settings, err := Load(writeConfig(t, "engine:\n  bank: bank.yaml\n"))
	require.NoError(t, err)

	assert.Equal(t, "bank.yaml", settings.Engine.Bank)
	assert.InDelta(t, 1.0, settings.Engine.GlobalVolume, 1e-9)
	assert.Equal(t, DefaultTickRate, settings.Engine.TickRate)
	assert.Equal(t, DefaultMaxRedirectDepth, settings.Engine.MaxRedirectDepth)
	assert.Equal(t, DefaultEvictionFade, settings.Engine.EvictionFade)
	assert.Equal(t, DefaultWarningInterval, settings.Engine.WarningInterval)
	assert.Equal(t, DefaultPrefab, settings.Engine.DefaultPrefab)
	assert.True(t, settings.Playlist.Loop)
	assert.Equal(t, 2*time.Second, settings.Playlist.CrossfadeDuration)
	assert.True(t, settings.Pool.Enabled)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
	assert.Same(t, settings, GetSettings())
}

func TestLoadFileValues(t *testing.T) {
	resetViper(t)

	path := writeConfig(t, `
engine:
  global_volume: 0.5
  tick_rate: 30
  seed: 42
  eviction_fade: 150ms
playlist:
  shuffle: true
  crossfade_duration: 1.5s
  delay_between_tracks: 500ms
  tracks: [intro, battle, outro]
pool:
  max_instances: 16
  preallocate: 4
logging:
  module_levels:
    playback: debug
`)
	settings, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, settings.Engine.GlobalVolume, 1e-9)
	assert.Equal(t, 30, settings.Engine.TickRate)
	assert.Equal(t, uint64(42), settings.Engine.Seed)
	assert.Equal(t, 150*time.Millisecond, settings.Engine.EvictionFade)
	assert.True(t, settings.Playlist.Shuffle)
	assert.Equal(t, 1500*time.Millisecond, settings.Playlist.CrossfadeDuration)
	assert.Equal(t, 500*time.Millisecond, settings.Playlist.DelayBetweenTracks)
	assert.Equal(t, []string{"intro", "battle", "outro"}, settings.Playlist.Tracks)
	assert.Equal(t, 16, settings.Pool.MaxInstances)
	assert.Equal(t, "debug", settings.Logging.ModuleLevels["playback"])
	assert.Equal(t, time.Second/30, settings.TickInterval())
}

func TestLoadEnvOverride(t *testing.T) {
	resetViper(t)
	t.Setenv("SOUNDBANK_ENGINE_GLOBAL_VOLUME", "0.25")

	settings, err := Load(writeConfig(t, "engine:\n  global_volume: 0.75\n"))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, settings.Engine.GlobalVolume, 1e-9)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	resetViper(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	resetViper(t)

	_, err := Load(writeConfig(t, "engine:\n  global_volume: 2\n  tick_rate: 0\n"))
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}

func TestWatchAppliesChanges(t *testing.T) {
	resetViper(t)

	path := writeConfig(t, "engine:\n  global_volume: 0.5\n")
	_, err := Load(path)
	require.NoError(t, err)

	changes := make(chan *Settings, 4)
	Watch(func(s *Settings) { changes <- s })

	require.NoError(t, os.WriteFile(path, []byte("engine:\n  global_volume: 0.3\n"), 0o600))

	select {
	case s := <-changes:
		assert.InDelta(t, 0.3, s.Engine.GlobalVolume, 1e-9)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
