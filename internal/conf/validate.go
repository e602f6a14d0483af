// conf/validate.go

package conf

import (
	"fmt"
	"net"
	"strings"
)

const maxTickRate = 1000

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	ve.Errors = append(ve.Errors, validateEngineSettings(&settings.Engine)...)
	ve.Errors = append(ve.Errors, validatePlaylistSettings(&settings.Playlist)...)
	ve.Errors = append(ve.Errors, validatePoolSettings(&settings.Pool)...)
	ve.Errors = append(ve.Errors, validateLoggingSettings(settings)...)
	ve.Errors = append(ve.Errors, validateMetricsSettings(&settings.Metrics)...)

	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		ve.Errors = append(ve.Errors, "sentry.dsn is required when sentry is enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateEngineSettings(s *EngineSettings) []string {
	var errs []string

	if s.GlobalVolume < 0 || s.GlobalVolume > 1 {
		errs = append(errs, fmt.Sprintf("engine.global_volume must be between 0 and 1, got %g", s.GlobalVolume))
	}
	if s.TickRate <= 0 || s.TickRate > maxTickRate {
		errs = append(errs, fmt.Sprintf("engine.tick_rate must be between 1 and %d, got %d", maxTickRate, s.TickRate))
	}
	if s.MaxRedirectDepth < 1 {
		errs = append(errs, "engine.max_redirect_depth must be at least 1")
	}
	if s.EvictionFade < 0 {
		errs = append(errs, "engine.eviction_fade must not be negative")
	}
	if s.WarningInterval < 0 {
		errs = append(errs, "engine.warning_interval must not be negative")
	}
	if s.DefaultPrefab == "" {
		errs = append(errs, "engine.default_prefab must not be empty")
	}

	return errs
}

func validatePlaylistSettings(s *PlaylistSettings) []string {
	var errs []string

	if s.CrossfadeDuration < 0 {
		errs = append(errs, "playlist.crossfade_duration must not be negative")
	}
	if s.DelayBetweenTracks < 0 {
		errs = append(errs, "playlist.delay_between_tracks must not be negative")
	}
	for i, track := range s.Tracks {
		if strings.TrimSpace(track) == "" {
			errs = append(errs, fmt.Sprintf("playlist.tracks[%d] is empty", i))
		}
	}

	return errs
}

func validatePoolSettings(s *PoolSettings) []string {
	var errs []string

	if s.MaxInstances < 0 {
		errs = append(errs, "pool.max_instances must not be negative")
	}
	if s.Preallocate < 0 {
		errs = append(errs, "pool.preallocate must not be negative")
	}
	if s.MaxInstances > 0 && s.Preallocate > s.MaxInstances {
		errs = append(errs, fmt.Sprintf("pool.preallocate (%d) exceeds pool.max_instances (%d)", s.Preallocate, s.MaxInstances))
	}

	return errs
}

func validateLoggingSettings(s *Settings) []string {
	var errs []string

	checkLevel := func(key, level string, allowEmpty bool) {
		if level == "" && allowEmpty {
			return
		}
		switch level {
		case "trace", "debug", "info", "warn", "error":
		default:
			errs = append(errs, fmt.Sprintf("%s has invalid log level %q", key, level))
		}
	}

	checkLevel("logging.default_level", s.Logging.DefaultLevel, true)
	if s.Logging.Console != nil {
		checkLevel("logging.console.level", s.Logging.Console.Level, true)
	}
	if s.Logging.FileOutput != nil {
		checkLevel("logging.file_output.level", s.Logging.FileOutput.Level, true)
		if s.Logging.FileOutput.Enabled && s.Logging.FileOutput.Path == "" {
			errs = append(errs, "logging.file_output.path is required when file output is enabled")
		}
	}
	for module, level := range s.Logging.ModuleLevels {
		checkLevel("logging.module_levels."+module, level, false)
	}

	return errs
}

func validateMetricsSettings(s *MetricsSettings) []string {
	if !s.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(s.Listen); err != nil {
		return []string{fmt.Sprintf("metrics.listen %q is not a valid host:port: %v", s.Listen, err)}
	}
	return nil
}
