// Package conf provides configuration management for soundbank.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/tphakala/soundbank/internal/errors"
	"github.com/tphakala/soundbank/internal/logger"
)

const (
	configName = "soundbank"
	envPrefix  = "SOUNDBANK"
)

// EngineSettings controls the playback engine
type EngineSettings struct {
	Bank             string        `mapstructure:"bank"`               // path to the sound bank YAML file
	GlobalVolume     float64       `mapstructure:"global_volume"`      // master gain in [0,1]
	TickRate         int           `mapstructure:"tick_rate"`          // engine ticks per second
	Seed             uint64        `mapstructure:"seed"`               // random seed, 0 picks one from the clock
	MaxRedirectDepth int           `mapstructure:"max_redirect_depth"` // bound on item redirect chains
	EvictionFade     time.Duration `mapstructure:"eviction_fade"`      // fade applied to voices evicted by the instance cap
	WarningInterval  time.Duration `mapstructure:"warning_interval"`   // repeated configuration warnings are logged once per interval
	DefaultPrefab    string        `mapstructure:"default_prefab"`     // voice prefab used when a category has no override
}

// PlaylistSettings holds the initial music playlist state
type PlaylistSettings struct {
	Loop               bool          `mapstructure:"loop"`
	Shuffle            bool          `mapstructure:"shuffle"`
	Crossfade          bool          `mapstructure:"crossfade"`
	CrossfadeDuration  time.Duration `mapstructure:"crossfade_duration"`
	DelayBetweenTracks time.Duration `mapstructure:"delay_between_tracks"`
	Tracks             []string      `mapstructure:"tracks"`
}

// PoolSettings controls voice recycling
type PoolSettings struct {
	Enabled      bool `mapstructure:"enabled"`
	MaxInstances int  `mapstructure:"max_instances"` // per prefab kind, 0 = unbounded
	Preallocate  int  `mapstructure:"preallocate"`   // idle voices created per prefab kind at startup
}

// MetricsSettings controls the Prometheus endpoint
type MetricsSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"` // host:port for /metrics
}

// SentrySettings controls error telemetry
type SentrySettings struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
	Debug   bool   `mapstructure:"debug"`
}

// Settings is the root configuration
type Settings struct {
	Engine   EngineSettings       `mapstructure:"engine"`
	Playlist PlaylistSettings     `mapstructure:"playlist"`
	Pool     PoolSettings         `mapstructure:"pool"`
	Logging  logger.LoggingConfig `mapstructure:"logging"`
	Metrics  MetricsSettings      `mapstructure:"metrics"`
	Sentry   SentrySettings       `mapstructure:"sentry"`
}

// TickInterval returns the duration between engine ticks
func (s *Settings) TickInterval() time.Duration {
	if s.Engine.TickRate <= 0 {
		return time.Second / DefaultTickRate
	}
	return time.Second / time.Duration(s.Engine.TickRate)
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables.
// An empty configFile searches the default config paths; a missing file
// there is not an error and yields the defaults.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, err
	}

	settings, err := unmarshalSettings()
	if err != nil {
		return nil, err
	}

	settingsInstance = settings
	return settings, nil
}

// initViper sets defaults, environment binding and reads the config file
func initViper(configFile string) error {
	setDefaultConfig()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
		for _, path := range DefaultConfigPaths() {
			viper.AddConfigPath(path)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			GetLogger().Debug("no config file found, using defaults")
			return nil
		}
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("operation", "read_config").
			Context("config_file", configFile).
			Build()
	}

	GetLogger().Debug("config file loaded", logger.String("path", viper.ConfigFileUsed()))
	return nil
}

func unmarshalSettings() (*Settings, error) {
	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryFileParsing).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	return settings, nil
}

// GetSettings returns the most recently loaded settings
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Watch reloads settings whenever the config file changes and hands every
// valid result to onChange. Invalid edits are logged and ignored.
func Watch(onChange func(*Settings)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		settingsMutex.Lock()
		settings, err := unmarshalSettings()
		if err == nil {
			settingsInstance = settings
		}
		settingsMutex.Unlock()

		if err != nil {
			GetLogger().Warn("ignoring invalid config change",
				logger.String("path", e.Name),
				logger.Error(err))
			return
		}

		GetLogger().Info("config reloaded", logger.String("path", e.Name))
		if onChange != nil {
			onChange(settings)
		}
	})
	viper.WatchConfig()
}

// DefaultConfigPaths lists the directories searched for soundbank.yaml
func DefaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", configName))
	}
	return append(paths, filepath.Join("/etc", configName))
}

// GetLogger returns the config package logger
func GetLogger() logger.Logger {
	return logger.Global().Module("conf")
}

// ConfigFileUsed returns the path of the loaded config file, "" when only
// defaults and environment were used
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
