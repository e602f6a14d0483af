// Package metrics provides Prometheus collectors for the playback engine.
package metrics

import "time"

// Trigger outcomes recorded by RecordTrigger
const (
	OutcomeStarted     = "started"
	OutcomeRateLimited = "rate_limited"
	OutcomeNotFound    = "not_found"
	OutcomeDisabled    = "disabled"
	OutcomeFailed      = "failed"
)

// Pool acquire results recorded by RecordPoolAcquire
const (
	PoolHit       = "hit"
	PoolMiss      = "miss"
	PoolExhausted = "exhausted"
)

// Pool instance states for UpdatePoolInstances
const (
	PoolStateIdle   = "idle"
	PoolStateActive = "active"
)

// Playlist advance directions
const (
	DirectionNext     = "next"
	DirectionPrevious = "previous"
	DirectionAuto     = "auto"
)

// ShutdownTimeout bounds graceful shutdown of the metrics endpoint
const ShutdownTimeout = 5 * time.Second
