package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*PlaybackMetrics, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	m, err := NewPlaybackMetrics(registry)
	require.NoError(t, err)
	return m, registry
}

func TestRecordTrigger(t *testing.T) {
	m, _ := newTestMetrics(t)

	testCases := []struct {
		item    string
		outcome string
		times   int
	}{
		{"Explosion", OutcomeStarted, 3},
		{"Explosion", OutcomeRateLimited, 2},
		{"Missing", OutcomeNotFound, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.item+"/"+tc.outcome, func(t *testing.T) {
			for range tc.times {
				m.RecordTrigger(tc.item, tc.outcome)
			}
			count := testutil.ToFloat64(m.triggersTotal.WithLabelValues(tc.item, tc.outcome))
			assert.InDelta(t, float64(tc.times), count, 0)
		})
	}
}

func TestGaugesAndCounters(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.UpdateVoicesActive("SFX", 4)
	m.UpdateVoicesActive("SFX", 2)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.voicesActive.WithLabelValues("SFX")), 0)

	m.UpdatePoolInstances("default", 5, 3)
	assert.InDelta(t, 5.0, testutil.ToFloat64(m.poolInstances.WithLabelValues("default", PoolStateIdle)), 0)
	assert.InDelta(t, 3.0, testutil.ToFloat64(m.poolInstances.WithLabelValues("default", PoolStateActive)), 0)

	m.RecordEviction("Explosion")
	m.RecordPoolAcquire("default", PoolHit)
	m.RecordPlaylistAdvance(DirectionAuto)
	m.RecordConfigError("redirect_depth")

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.evictionsTotal.WithLabelValues("Explosion")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.poolAcquireTotal.WithLabelValues("default", PoolHit)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.playlistAdvances.WithLabelValues(DirectionAuto)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.configErrors.WithLabelValues("redirect_depth")), 0)
}

func TestObserveTick(t *testing.T) {
	m, registry := newTestMetrics(t)

	m.ObserveTick(2 * time.Millisecond)
	m.ObserveTick(4 * time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)

	var histogram *dto.Histogram
	for _, mf := range families {
		if mf.GetName() == "soundbank_tick_duration_seconds" {
			require.Len(t, mf.GetMetric(), 1)
			histogram = mf.GetMetric()[0].GetHistogram()
		}
	}
	require.NotNil(t, histogram)
	assert.Equal(t, uint64(2), histogram.GetSampleCount())
	assert.InDelta(t, 0.006, histogram.GetSampleSum(), 1e-9)
}

func TestDoubleRegistrationFails(t *testing.T) {
	_, registry := newTestMetrics(t)
	_, err := NewPlaybackMetrics(registry)
	assert.Error(t, err)
}
