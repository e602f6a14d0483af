package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/soundbank/internal/logger"
	"github.com/tphakala/soundbank/internal/soundbank"
)

func TestInstancePoolRecycles(t *testing.T) {
	t.Parallel()

	p := NewInstancePool(true, 0, nil, logger.NewDiscardLogger())
	v, err := p.Acquire("sfx")
	require.NoError(t, err)
	h := v.handle()

	p.Release(v, true)
	assert.False(t, h.Valid(), "release must invalidate handles")

	again, err := p.Acquire("sfx")
	require.NoError(t, err)
	assert.Same(t, v, again)

	st := p.Stats()["sfx"]
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 1, st.Active)
	assert.Equal(t, 0, st.Idle)
}

func TestInstancePoolDisabledDrops(t *testing.T) {
	t.Parallel()

	p := NewInstancePool(false, 0, nil, logger.NewDiscardLogger())
	v, err := p.Acquire("sfx")
	require.NoError(t, err)
	p.Release(v, true)

	again, err := p.Acquire("sfx")
	require.NoError(t, err)
	assert.NotSame(t, v, again)
	assert.Equal(t, uint64(2), p.Stats()["sfx"].Misses)
}

func TestInstancePoolExhausted(t *testing.T) {
	t.Parallel()

	p := NewInstancePool(true, 1, nil, logger.NewDiscardLogger())
	v, err := p.Acquire("music")
	require.NoError(t, err)

	_, err = p.Acquire("music")
	require.ErrorIs(t, err, ErrPoolExhausted)
	assert.Equal(t, uint64(1), p.Stats()["music"].Exhausted)

	_, err = p.Acquire("sfx")
	require.NoError(t, err, "capacity is per kind")

	p.Release(v, true)
	_, err = p.Acquire("music")
	require.NoError(t, err)
}

func TestInstancePoolPreallocateAndDrain(t *testing.T) {
	t.Parallel()

	p := NewInstancePool(true, 0, nil, logger.NewDiscardLogger())
	p.Preallocate("sfx", 4)
	assert.Equal(t, 4, p.Stats()["sfx"].Idle)

	_, err := p.Acquire("sfx")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.Stats()["sfx"].Hits)

	p.Drain()
	assert.Equal(t, 0, p.Stats()["sfx"].Idle)
}

func TestVoicePoolRateLimit(t *testing.T) {
	t.Parallel()

	item := &soundbank.Item{Name: "Shot", MinTimeBetween: 100 * time.Millisecond}
	p := NewVoicePool()

	assert.True(t, p.Allow(item, testEpoch))
	p.MarkTriggered(item, testEpoch)
	assert.False(t, p.Allow(item, testEpoch.Add(99*time.Millisecond)))
	assert.True(t, p.Allow(item, testEpoch.Add(100*time.Millisecond)))
}
