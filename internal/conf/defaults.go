// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/soundbank/internal/logger"
)

const (
	DefaultTickRate         = 60
	DefaultMaxRedirectDepth = 8
	DefaultEvictionFade     = 200 * time.Millisecond
	DefaultWarningInterval  = 10 * time.Second
	DefaultPrefab           = "default"
	DefaultMetricsListen    = "127.0.0.1:9464"
	DefaultBankPath         = "soundbank.bank.yaml"
)

// setDefaultConfig registers every key with viper so that environment
// overrides apply during Unmarshal.
func setDefaultConfig() {
	viper.SetDefault("engine.bank", DefaultBankPath)
	viper.SetDefault("engine.global_volume", 1.0)
	viper.SetDefault("engine.tick_rate", DefaultTickRate)
	viper.SetDefault("engine.seed", 0)
	viper.SetDefault("engine.max_redirect_depth", DefaultMaxRedirectDepth)
	viper.SetDefault("engine.eviction_fade", DefaultEvictionFade)
	viper.SetDefault("engine.warning_interval", DefaultWarningInterval)
	viper.SetDefault("engine.default_prefab", DefaultPrefab)

	viper.SetDefault("playlist.loop", true)
	viper.SetDefault("playlist.shuffle", false)
	viper.SetDefault("playlist.crossfade", true)
	viper.SetDefault("playlist.crossfade_duration", 2*time.Second)
	viper.SetDefault("playlist.delay_between_tracks", time.Duration(0))
	viper.SetDefault("playlist.tracks", []string{})

	viper.SetDefault("pool.enabled", true)
	viper.SetDefault("pool.max_instances", 0)
	viper.SetDefault("pool.preallocate", 0)

	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("logging.console.level", "")
	viper.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.level", "")
	viper.SetDefault("logging.module_levels", map[string]string{})

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", DefaultMetricsListen)

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
	viper.SetDefault("sentry.debug", false)
}
