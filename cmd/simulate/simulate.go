package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/soundbank/internal/conf"
	"github.com/tphakala/soundbank/internal/logger"
	"github.com/tphakala/soundbank/internal/observability"
	"github.com/tphakala/soundbank/internal/playback"
	"github.com/tphakala/soundbank/internal/soundbank"
)

// Options controls a simulation run
type Options struct {
	Duration time.Duration // 0 runs until interrupted
	Rate     float64       // random sound effect triggers per second
	Watch    bool          // apply config file changes while running
}

// Command creates the simulate command
func Command(settings *conf.Settings) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the engine against simulated clips",
		Long:  "Load the sound bank, start the music playlist and trigger random items, driving the engine at the configured tick rate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stats, err := Run(ctx, settings, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "voices live: %d, music: %q, playlist playing: %t\n",
				stats.Voices, stats.Music, stats.PlaylistPlaying)
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "Stop after this long, 0 runs until interrupted")
	cmd.Flags().Float64Var(&opts.Rate, "rate", 2, "Random triggers per second")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload volume and playlist settings when the config file changes")
	cmd.Flags().Bool("metrics", false, "Serve Prometheus metrics")
	cmd.Flags().String("listen", conf.DefaultMetricsListen, "Metrics listen address")
	_ = viper.BindPFlag("metrics.enabled", cmd.Flags().Lookup("metrics"))
	_ = viper.BindPFlag("metrics.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

// Run drives an engine until ctx is done or opts.Duration has passed and
// returns the final engine stats
func Run(ctx context.Context, settings *conf.Settings, opts Options) (playback.Stats, error) {
	log := logger.Global().Module("simulate")

	reg, err := soundbank.LoadFile(settings.Engine.Bank)
	if err != nil {
		return playback.Stats{}, err
	}
	if missing := reg.MissingClips(); len(missing) > 0 {
		log.Warn("bank references unknown clips", logger.Any("clips", missing))
	}

	engineOpts := []playback.EngineOption{playback.WithLogger(logger.Global().Module("playback"))}

	var wg sync.WaitGroup
	quit := make(chan struct{})
	defer func() {
		close(quit)
		wg.Wait()
	}()

	if settings.Metrics.Enabled {
		m, err := observability.NewMetrics()
		if err != nil {
			return playback.Stats{}, err
		}
		endpoint, err := observability.NewEndpoint(settings, m)
		if err != nil {
			return playback.Stats{}, err
		}
		if err := endpoint.Start(&wg, quit); err != nil {
			return playback.Stats{}, err
		}
		engineOpts = append(engineOpts, playback.WithMetrics(m.Playback))
	}

	engine, err := playback.New(reg, nil, playback.ConfigFromSettings(settings), engineOpts...)
	if err != nil {
		return playback.Stats{}, err
	}

	if opts.Watch && conf.ConfigFileUsed() != "" {
		conf.Watch(func(s *conf.Settings) {
			engine.Do(func() { applySettings(engine, s) })
		})
	}

	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	driver := playback.NewDriver(engine, settings.TickInterval())
	driver.Start(ctx)

	engine.Do(func() {
		if engine.PlayMusicPlaylist() {
			log.Info("playlist started", logger.Int("tracks", len(engine.GetMusicPlaylist())))
		}
	})

	trigger(ctx, engine, sfxItems(reg, settings.Playlist.Tracks), opts.Rate, settings.Engine.Seed)

	driver.Stop()
	var stats playback.Stats
	engine.Do(func() {
		stats = engine.Stats()
		err = engine.Close()
	})
	log.Info("simulation finished",
		logger.Int("voices", stats.Voices),
		logger.Bool("playlist_playing", stats.PlaylistPlaying))
	return stats, err
}

// trigger plays a random item from items rate times per second until ctx is done
func trigger(ctx context.Context, engine *playback.Engine, items []string, rate float64, seed uint64) {
	if rate <= 0 || len(items) == 0 {
		<-ctx.Done()
		return
	}

	rng := rand.New(rand.NewPCG(seed, seed+1))
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			id := items[rng.IntN(len(items))]
			engine.Do(func() { engine.Play(id) })
		}
	}
}

// sfxItems lists the items that are not playlist tracks
func sfxItems(reg *soundbank.Registry, tracks []string) []string {
	music := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		music[t] = true
	}
	var out []string
	for _, name := range reg.ItemNames() {
		if !music[name] {
			out = append(out, name)
		}
	}
	return out
}

// applySettings pushes reloadable settings into a running engine. The
// watch callback outlives Run, so a closed engine is left alone.
func applySettings(engine *playback.Engine, s *conf.Settings) bool {
	if engine.Closed() {
		return false
	}
	engine.SetGlobalVolume(s.Engine.GlobalVolume)
	cfg := playback.ConfigFromSettings(s)
	engine.ConfigurePlaylist(cfg.Playlist)
	logger.Global().Module("simulate").Info("settings applied",
		logger.Float64("global_volume", s.Engine.GlobalVolume),
		logger.Bool("shuffle", s.Playlist.Shuffle))
	return true
}
