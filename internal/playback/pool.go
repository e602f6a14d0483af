package playback

import (
	"slices"
	"time"

	"github.com/tphakala/soundbank/internal/errors"
	"github.com/tphakala/soundbank/internal/logger"
	"github.com/tphakala/soundbank/internal/observability/metrics"
	"github.com/tphakala/soundbank/internal/soundbank"
)

// PoolStats describes one prefab kind of the instance pool
type PoolStats struct {
	Idle      int
	Active    int
	Hits      uint64
	Misses    uint64
	Exhausted uint64
}

// InstancePool recycles voices per prefab kind
type InstancePool struct {
	enabled bool
	max     int // active voices per kind, 0 = unbounded
	idle    map[string][]*Voice
	stats   map[string]*PoolStats
	metrics *MetricsCollector
	log     logger.Logger
}

// NewInstancePool returns a pool. A disabled pool still enforces max but
// never keeps idle voices.
func NewInstancePool(enabled bool, maxInstances int, m *MetricsCollector, log logger.Logger) *InstancePool {
	return &InstancePool{
		enabled: enabled,
		max:     maxInstances,
		idle:    make(map[string][]*Voice),
		stats:   make(map[string]*PoolStats),
		metrics: m,
		log:     log,
	}
}

func (p *InstancePool) statsFor(kind string) *PoolStats {
	st, ok := p.stats[kind]
	if !ok {
		st = &PoolStats{}
		p.stats[kind] = st
	}
	return st
}

// Acquire leases a voice of kind
func (p *InstancePool) Acquire(kind string) (*Voice, error) {
	st := p.statsFor(kind)
	if p.max > 0 && st.Active >= p.max {
		st.Exhausted++
		p.metrics.poolAcquire(kind, metrics.PoolExhausted)
		return nil, errors.New(ErrPoolExhausted).
			Context("kind", kind).
			Context("max_instances", p.max).
			Build()
	}

	var v *Voice
	if free := p.idle[kind]; len(free) > 0 {
		v = free[len(free)-1]
		p.idle[kind] = free[:len(free)-1]
		st.Idle--
		st.Hits++
		p.metrics.poolAcquire(kind, metrics.PoolHit)
	} else {
		v = newVoice(kind)
		st.Misses++
		p.metrics.poolAcquire(kind, metrics.PoolMiss)
	}
	st.Active++
	p.metrics.poolInstances(kind, st.Idle, st.Active)
	return v, nil
}

// Release ends a lease. The voice is kept for reuse when recycle is set and
// the pool is enabled; otherwise it is dropped.
func (p *InstancePool) Release(v *Voice, recycle bool) {
	st := p.statsFor(v.kind)
	st.Active--
	v.reset()
	if p.enabled && recycle {
		p.idle[v.kind] = append(p.idle[v.kind], v)
		st.Idle++
	}
	p.metrics.poolInstances(v.kind, st.Idle, st.Active)
}

// Preallocate creates idle voices of kind until n are idle
func (p *InstancePool) Preallocate(kind string, n int) {
	if !p.enabled {
		return
	}
	st := p.statsFor(kind)
	for st.Idle < n {
		p.idle[kind] = append(p.idle[kind], newVoice(kind))
		st.Idle++
	}
	p.metrics.poolInstances(kind, st.Idle, st.Active)
	p.log.Debug("pool preallocated", logger.String("kind", kind), logger.Int("idle", st.Idle))
}

// Drain drops every idle voice
func (p *InstancePool) Drain() {
	for kind := range p.idle {
		st := p.statsFor(kind)
		st.Idle = 0
		p.metrics.poolInstances(kind, 0, st.Active)
	}
	clear(p.idle)
}

// Stats returns a snapshot per prefab kind
func (p *InstancePool) Stats() map[string]PoolStats {
	out := make(map[string]PoolStats, len(p.stats))
	for kind, st := range p.stats {
		out[kind] = *st
	}
	return out
}

// VoicePool tracks live voices and applies the per-item trigger policy
type VoicePool struct {
	live        []*Voice // in trigger order
	byItem      map[*soundbank.Item][]*Voice
	lastTrigger map[*soundbank.Item]time.Time
}

// NewVoicePool returns an empty pool
func NewVoicePool() *VoicePool {
	return &VoicePool{
		byItem:      make(map[*soundbank.Item][]*Voice),
		lastTrigger: make(map[*soundbank.Item]time.Time),
	}
}

// Allow applies MinTimeBetween against the last successful trigger
func (p *VoicePool) Allow(item *soundbank.Item, now time.Time) bool {
	if item.MinTimeBetween <= 0 {
		return true
	}
	last, ok := p.lastTrigger[item]
	return !ok || !now.Before(last.Add(item.MinTimeBetween))
}

// MarkTriggered records a successful trigger
func (p *VoicePool) MarkTriggered(item *soundbank.Item, now time.Time) {
	p.lastTrigger[item] = now
}

// Evictee returns the oldest non-fading voice of item when the item is at
// its instance cap. It returns nil when under the cap or when every live
// voice is already fading out.
func (p *VoicePool) Evictee(item *soundbank.Item) *Voice {
	if item.MaxInstances <= 0 {
		return nil
	}
	voices := p.byItem[item]
	if len(voices) < item.MaxInstances {
		return nil
	}
	var oldest *Voice
	for _, v := range voices {
		if v.state == StateFadingOut || v.state == StateStopped {
			continue
		}
		if oldest == nil || v.startTime().Before(oldest.startTime()) {
			oldest = v
		}
	}
	return oldest
}

func (p *VoicePool) add(v *Voice) {
	p.live = append(p.live, v)
	p.byItem[v.trigger] = append(p.byItem[v.trigger], v)
}

func (p *VoicePool) remove(v *Voice) {
	p.live = slices.DeleteFunc(p.live, func(x *Voice) bool { return x == v })
	voices := slices.DeleteFunc(p.byItem[v.trigger], func(x *Voice) bool { return x == v })
	if len(voices) == 0 {
		delete(p.byItem, v.trigger)
	} else {
		p.byItem[v.trigger] = voices
	}
}

// Voices returns handles to the live voices of item
func (p *VoicePool) Voices(item *soundbank.Item) []Handle {
	voices := p.byItem[item]
	out := make([]Handle, 0, len(voices))
	for _, v := range voices {
		out = append(out, v.handle())
	}
	return out
}

// All returns handles to every live voice in trigger order
func (p *VoicePool) All() []Handle {
	out := make([]Handle, 0, len(p.live))
	for _, v := range p.live {
		out = append(out, v.handle())
	}
	return out
}

// Len is the number of live voices
func (p *VoicePool) Len() int {
	return len(p.live)
}

// countByCategory counts live voices per category name
func (p *VoicePool) countByCategory() map[string]int {
	counts := make(map[string]int)
	for _, v := range p.live {
		counts[v.category()]++
	}
	return counts
}
