package engine

import (
	"time"

	"github.com/spaghettifunk/tundra/engine/core"
)

// FixedStep turns wall time into a whole number of fixed ticks. It keeps
// its own clock so the tick boundaries do not depend on the frame delta.
type FixedStep struct {
	clock      *core.Clock
	step       time.Duration
	rate       int
	maxUpdates int
	// next tick boundary, measured from the clock start
	next time.Duration
}

func NewFixedStep(source core.TimeSource, rate, maxUpdates int) *FixedStep {
	fs := &FixedStep{
		clock:      core.NewClockWithSource(source),
		rate:       DefaultUpdateRate,
		step:       time.Second / DefaultUpdateRate,
		maxUpdates: DefaultMaxUpdates,
	}
	fs.SetRate(rate)
	fs.SetMaxUpdates(maxUpdates)
	return fs
}

// Start resets the accumulator.
func (fs *FixedStep) Start() {
	fs.next = 0
	fs.clock.Start()
}

// SetRate changes the tick frequency. Values outside [1, 200] Hz are
// ignored and false is returned.
func (fs *FixedStep) SetRate(hz int) bool {
	if !validUpdateSetting(hz) {
		return false
	}
	fs.rate = hz
	fs.step = time.Second / time.Duration(hz)
	return true
}

// SetMaxUpdates changes how many ticks a single Advance may run. Values
// outside [1, 200] are ignored and false is returned.
func (fs *FixedStep) SetMaxUpdates(n int) bool {
	if !validUpdateSetting(n) {
		return false
	}
	fs.maxUpdates = n
	return true
}

func (fs *FixedStep) Rate() int              { return fs.rate }
func (fs *FixedStep) Step() time.Duration    { return fs.step }
func (fs *FixedStep) MaxUpdates() int        { return fs.maxUpdates }
func (fs *FixedStep) Backlog() time.Duration { return fs.clock.Elapsed() - fs.next }

// Skip drops the pending backlog. The next tick is due one step from now.
func (fs *FixedStep) Skip() {
	fs.next = fs.clock.Elapsed()
}

// Advance calls fn once per elapsed step, at most MaxUpdates times, and
// returns the number of ticks run. Time beyond the cap stays in the
// accumulator for the following calls.
func (fs *FixedStep) Advance(fn func(dt float64)) int {
	elapsed := fs.clock.Elapsed()
	dt := fs.step.Seconds()

	ticks := 0
	for elapsed-fs.next >= fs.step && ticks < fs.maxUpdates {
		fn(dt)
		fs.next += fs.step
		ticks++
	}
	return ticks
}
