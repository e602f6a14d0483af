package playback

import (
	"context"
	"sync"
	"time"

	"github.com/tphakala/soundbank/internal/logger"
)

// Driver ticks an engine from a time.Ticker
type Driver struct {
	engine   *Engine
	interval time.Duration
	log      logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDriver returns a driver ticking e every interval
func NewDriver(e *Engine, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Driver{engine: e, interval: interval, log: e.log.Module("driver")}
}

// Run ticks until ctx is done
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Debug("driver started", logger.Duration("interval", d.interval))
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("driver stopped")
			return
		case <-ticker.C:
			d.engine.Do(d.engine.Tick)
		}
	}
}

// Start runs the driver in a goroutine until Stop or ctx is done
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Go(func() { d.Run(ctx) })
}

// Stop cancels a started driver and waits for its goroutine
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
}
