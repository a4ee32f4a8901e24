package core

import (
	"sync"
	"time"
)

// TimeSource provides the current time to clocks.
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the monotonic system clock.
type SystemTime struct{}

func (SystemTime) Now() time.Time {
	return time.Now()
}

// ManualTime is a TimeSource that only moves when told to. Used by tests and
// by deterministic replays.
type ManualTime struct {
	mu      sync.RWMutex
	current time.Time
}

func NewManualTime(start time.Time) *ManualTime {
	return &ManualTime{current: start}
}

func (m *ManualTime) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Advance moves the time forward by d.
func (m *ManualTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Clock measures elapsed time from its last start.
type Clock struct {
	source    TimeSource
	startTime time.Time
	running   bool
}

func NewClock() *Clock {
	return NewClockWithSource(SystemTime{})
}

func NewClockWithSource(source TimeSource) *Clock {
	if source == nil {
		source = SystemTime{}
	}
	return &Clock{source: source}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.source.Now()
	c.running = true
}

// Stops the provided clock. Elapsed reports zero until the next Start.
func (c *Clock) Stop() {
	c.running = false
}

// Elapsed returns the time since the last Start or Restart.
func (c *Clock) Elapsed() time.Duration {
	if !c.running {
		return 0
	}
	return c.source.Now().Sub(c.startTime)
}

// Restart returns the elapsed time and starts counting again from now.
// A stopped clock is started and reports zero.
func (c *Clock) Restart() time.Duration {
	now := c.source.Now()
	var elapsed time.Duration
	if c.running {
		elapsed = now.Sub(c.startTime)
	}
	c.startTime = now
	c.running = true
	return elapsed
}
