package playback

import (
	"time"

	"github.com/tphakala/soundbank/internal/observability/metrics"
)

// MetricsCollector forwards engine events to Prometheus. The zero value and
// a nil pointer are valid and record nothing.
type MetricsCollector struct {
	m *metrics.PlaybackMetrics
}

// NewMetricsCollector wraps m, which may be nil
func NewMetricsCollector(m *metrics.PlaybackMetrics) *MetricsCollector {
	return &MetricsCollector{m: m}
}

func (c *MetricsCollector) enabled() bool {
	return c != nil && c.m != nil
}

func (c *MetricsCollector) trigger(item, outcome string) {
	if c.enabled() {
		c.m.RecordTrigger(item, outcome)
	}
}

func (c *MetricsCollector) eviction(item string) {
	if c.enabled() {
		c.m.RecordEviction(item)
	}
}

func (c *MetricsCollector) poolAcquire(kind, result string) {
	if c.enabled() {
		c.m.RecordPoolAcquire(kind, result)
	}
}

func (c *MetricsCollector) poolInstances(kind string, idle, active int) {
	if c.enabled() {
		c.m.UpdatePoolInstances(kind, idle, active)
	}
}

func (c *MetricsCollector) voices(counts map[string]int) {
	if !c.enabled() {
		return
	}
	for category, n := range counts {
		c.m.UpdateVoicesActive(category, n)
	}
}

func (c *MetricsCollector) playlistAdvance(direction string) {
	if c.enabled() {
		c.m.RecordPlaylistAdvance(direction)
	}
}

func (c *MetricsCollector) configError(kind string) {
	if c.enabled() {
		c.m.RecordConfigError(kind)
	}
}

func (c *MetricsCollector) tick(d time.Duration) {
	if c.enabled() {
		c.m.ObserveTick(d)
	}
}
