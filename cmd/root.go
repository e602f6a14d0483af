package cmd

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/soundbank/cmd/simulate"
	"github.com/tphakala/soundbank/cmd/validate"
	"github.com/tphakala/soundbank/internal/conf"
	"github.com/tphakala/soundbank/internal/errors"
	"github.com/tphakala/soundbank/internal/logger"
)

const sentryFlushTimeout = 2 * time.Second

// RootCommand creates the root command. settings is filled in before any
// subcommand runs.
func RootCommand(settings *conf.Settings) *cobra.Command {
	var configFile string
	var central *logger.CentralLogger

	rootCmd := &cobra.Command{
		Use:           "soundbank",
		Short:         "Sound bank playback engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: search ./, ~/.config/soundbank, /etc/soundbank)")
	if err := setupFlags(rootCmd); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		simulate.Command(settings),
		validate.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := conf.Load(configFile)
		if err != nil {
			return err
		}
		*settings = *loaded

		central, err = logger.NewCentralLogger(&settings.Logging)
		if err != nil {
			return fmt.Errorf("error initializing logger: %w", err)
		}
		logger.SetGlobal(central)

		return initSentry(settings)
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if settings.Sentry.Enabled {
			sentry.Flush(sentryFlushTimeout)
		}
		if central != nil {
			return central.Close()
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags shared by every subcommand and binds them to
// their config keys
func setupFlags(rootCmd *cobra.Command) error {
	flags := rootCmd.PersistentFlags()
	flags.String("bank", conf.DefaultBankPath, "Sound bank YAML file")
	flags.String("log-level", logger.DefaultLogLevel, "Default log level (trace, debug, info, warn, error)")
	flags.Uint64("seed", 0, "Random seed, 0 seeds from the clock")
	flags.Float64("volume", 1, "Global volume between 0.0 and 1.0")

	bindings := map[string]string{
		"engine.bank":           "bank",
		"logging.default_level": "log-level",
		"engine.seed":           "seed",
		"engine.global_volume":  "volume",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// initSentry installs the Sentry reporter for enhanced errors
func initSentry(settings *conf.Settings) error {
	if !settings.Sentry.Enabled {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:   settings.Sentry.DSN,
		Debug: settings.Sentry.Debug,
	}); err != nil {
		return errors.New(err).
			Component("cmd").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry_init").
			Build()
	}
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	logger.Global().Module("cmd").Info("error telemetry enabled")
	return nil
}
