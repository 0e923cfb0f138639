package robot

import (
	"math"
	"sync"
	"time"

	"github.com/teslashibe/go-urdfpose/internal/log"
)

// DeadZoneRad is the smallest joint change worth sending, about 0.3 degrees.
const DeadZoneRad = 0.005

// RateController forwards joint targets to a downstream setter at a fixed
// rate. Updates between ticks are merged, and a tick is skipped when no
// joint moved more than the dead zone since the last successful send.
type RateController struct {
	target JointSetter

	mu       sync.Mutex
	pending  map[string]float64
	lastSent map[string]float64

	rate time.Duration
	stop chan struct{}
	once sync.Once

	tickCount     uint64
	skippedTicks  uint64
	errorCount    uint64
	lastErrorTime time.Time
}

// NewRateController creates a controller ticking at the given interval.
func NewRateController(target JointSetter, rate time.Duration) *RateController {
	return &RateController{
		target:   target,
		pending:  make(map[string]float64),
		lastSent: make(map[string]float64),
		rate:     rate,
		stop:     make(chan struct{}),
	}
}

// SetJointValues merges values into the next tick's targets. It never blocks on the network.
func (c *RateController) SetJointValues(values map[string]float64) error {
	c.mu.Lock()
	for k, v := range values {
		c.pending[k] = v
	}
	c.mu.Unlock()
	return nil
}

// Stats reports tick counters.
func (c *RateController) Stats() (ticks, skipped, errors uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickCount, c.skippedTicks, c.errorCount
}

// Run starts the control loop. Blocks until Stop is called.
func (c *RateController) Run() {
	ticker := time.NewTicker(c.rate)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// Stop halts the control loop. It is safe to call more than once.
func (c *RateController) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *RateController) tick() {
	c.mu.Lock()
	c.tickCount++
	if c.target == nil {
		c.mu.Unlock()
		return
	}

	out := make(map[string]float64)
	for k, v := range c.pending {
		last, sent := c.lastSent[k]
		if !sent || math.Abs(v-last) >= DeadZoneRad {
			out[k] = v
		}
	}
	if len(out) == 0 {
		c.skippedTicks++
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	err := c.target.SetJointValues(out)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		for k, v := range out {
			c.lastSent[k] = v
		}
		return
	}

	c.errorCount++
	// at most one log line every 5 seconds
	if c.lastErrorTime.IsZero() || time.Since(c.lastErrorTime) > 5*time.Second {
		log.Warn("joint forward failed", "error", err, "total_errors", c.errorCount)
		c.lastErrorTime = time.Now()
	}
}
