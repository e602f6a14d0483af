package simulate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/soundbank/internal/conf"
	"github.com/tphakala/soundbank/internal/logger"
	"github.com/tphakala/soundbank/internal/playback"
	"github.com/tphakala/soundbank/internal/soundbank"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testBank = "../../internal/soundbank/testdata/bank.yaml"

func testSettings() *conf.Settings {
	return &conf.Settings{
		Engine: conf.EngineSettings{
			Bank:             testBank,
			GlobalVolume:     1,
			TickRate:         200,
			Seed:             7,
			MaxRedirectDepth: conf.DefaultMaxRedirectDepth,
			EvictionFade:     conf.DefaultEvictionFade,
			WarningInterval:  conf.DefaultWarningInterval,
			DefaultPrefab:    conf.DefaultPrefab,
		},
		Playlist: conf.PlaylistSettings{
			Loop:              true,
			Crossfade:         true,
			CrossfadeDuration: time.Second,
			Tracks:            []string{"ThemeA", "ThemeB"},
		},
		Pool: conf.PoolSettings{Enabled: true, Preallocate: 2},
	}
}

func TestRunDrivesPlaylistAndEffects(t *testing.T) {
	settings := testSettings()
	settings.Metrics = conf.MetricsSettings{Enabled: true, Listen: "127.0.0.1:0"}

	stats, err := Run(t.Context(), settings, Options{Duration: 200 * time.Millisecond, Rate: 50})
	require.NoError(t, err)

	assert.Equal(t, "ThemeA", stats.Music)
	assert.True(t, stats.PlaylistPlaying)
	assert.Positive(t, stats.Pool["music"].Active)
}

func TestRunMissingBank(t *testing.T) {
	settings := testSettings()
	settings.Engine.Bank = "does-not-exist.yaml"

	_, err := Run(t.Context(), settings, Options{Duration: time.Millisecond})
	require.Error(t, err)
}

func TestSfxItemsExcludesTracks(t *testing.T) {
	reg, err := soundbank.LoadFile(testBank)
	require.NoError(t, err)

	items := sfxItems(reg, []string{"ThemeA", "ThemeB"})
	assert.ElementsMatch(t, []string{"Boom", "Explosion", "Footsteps", "Wind"}, items)
}

func TestApplySettingsSkipsClosedEngine(t *testing.T) {
	settings := testSettings()
	reg, err := soundbank.LoadFile(testBank)
	require.NoError(t, err)

	engine, err := playback.New(reg, nil, playback.ConfigFromSettings(settings),
		playback.WithLogger(logger.NewDiscardLogger()))
	require.NoError(t, err)

	reloaded := testSettings()
	reloaded.Engine.GlobalVolume = 0.5
	assert.True(t, applySettings(engine, reloaded))
	assert.InDelta(t, 0.5, engine.GlobalVolume(), 1e-9)

	require.NoError(t, engine.Close())
	reloaded.Engine.GlobalVolume = 0.2
	assert.False(t, applySettings(engine, reloaded))
	assert.InDelta(t, 0.5, engine.GlobalVolume(), 1e-9)
}
