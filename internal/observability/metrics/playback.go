package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlaybackMetrics contains Prometheus metrics for the playback engine
type PlaybackMetrics struct {
	registry *prometheus.Registry

	voicesActive     *prometheus.GaugeVec
	triggersTotal    *prometheus.CounterVec
	evictionsTotal   *prometheus.CounterVec
	poolAcquireTotal *prometheus.CounterVec
	poolInstances    *prometheus.GaugeVec
	playlistAdvances *prometheus.CounterVec
	configErrors     *prometheus.CounterVec
	tickDuration     prometheus.Histogram

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewPlaybackMetrics creates and registers new playback metrics
func NewPlaybackMetrics(registry *prometheus.Registry) (*PlaybackMetrics, error) {
	m := &PlaybackMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PlaybackMetrics) initMetrics() {
	m.voicesActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soundbank_voices_active",
			Help: "Number of live voices per category",
		},
		[]string{"category"},
	)

	m.triggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundbank_triggers_total",
			Help: "Total number of play requests by outcome",
		},
		[]string{"item", "outcome"},
	)

	m.evictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundbank_evictions_total",
			Help: "Total number of voices stopped by the per-item instance cap",
		},
		[]string{"item"},
	)

	m.poolAcquireTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundbank_pool_acquire_total",
			Help: "Total number of voice acquisitions from the instance pool",
		},
		[]string{"kind", "result"},
	)

	m.poolInstances = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soundbank_pool_instances",
			Help: "Number of pooled voice instances by prefab kind and state",
		},
		[]string{"kind", "state"},
	)

	m.playlistAdvances = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundbank_playlist_advances_total",
			Help: "Total number of playlist track changes",
		},
		[]string{"direction"},
	)

	m.configErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundbank_config_errors_total",
			Help: "Total number of configuration errors met while playing",
		},
		[]string{"kind"},
	)

	m.tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "soundbank_tick_duration_seconds",
			Help:    "Time spent in one engine tick",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs to ~160ms
		},
	)

	m.collectors = []prometheus.Collector{
		m.voicesActive,
		m.triggersTotal,
		m.evictionsTotal,
		m.poolAcquireTotal,
		m.poolInstances,
		m.playlistAdvances,
		m.configErrors,
		m.tickDuration,
	}
}

// Describe implements prometheus.Collector
func (m *PlaybackMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *PlaybackMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// UpdateVoicesActive sets the live voice count of a category
func (m *PlaybackMetrics) UpdateVoicesActive(category string, count int) {
	m.voicesActive.WithLabelValues(category).Set(float64(count))
}

// RecordTrigger counts a play request and its outcome
func (m *PlaybackMetrics) RecordTrigger(item, outcome string) {
	m.triggersTotal.WithLabelValues(item, outcome).Inc()
}

// RecordEviction counts a voice stopped to make room for a new one
func (m *PlaybackMetrics) RecordEviction(item string) {
	m.evictionsTotal.WithLabelValues(item).Inc()
}

// RecordPoolAcquire counts an instance pool acquisition
func (m *PlaybackMetrics) RecordPoolAcquire(kind, result string) {
	m.poolAcquireTotal.WithLabelValues(kind, result).Inc()
}

// UpdatePoolInstances sets idle and active instance counts of a prefab kind
func (m *PlaybackMetrics) UpdatePoolInstances(kind string, idle, active int) {
	m.poolInstances.WithLabelValues(kind, PoolStateIdle).Set(float64(idle))
	m.poolInstances.WithLabelValues(kind, PoolStateActive).Set(float64(active))
}

// RecordPlaylistAdvance counts a playlist track change
func (m *PlaybackMetrics) RecordPlaylistAdvance(direction string) {
	m.playlistAdvances.WithLabelValues(direction).Inc()
}

// RecordConfigError counts a configuration error by kind
func (m *PlaybackMetrics) RecordConfigError(kind string) {
	m.configErrors.WithLabelValues(kind).Inc()
}

// ObserveTick records the duration of one engine tick
func (m *PlaybackMetrics) ObserveTick(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}
