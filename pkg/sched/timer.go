package sched

import (
	"sync"
	"time"
)

// Tick timing.
const (
	// TickDuration is the length of one scheduler tick.
	TickDuration = 64 * time.Microsecond
	// MaxTicks is the largest interval the timer counter can span.
	MaxTicks = 0xFFFF
)

// MsToTicks converts milliseconds to ticks, capped at the timer horizon.
func MsToTicks(ms int) uint16 {
	t := int64(ms) * int64(time.Millisecond) / int64(TickDuration)
	if t > MaxTicks {
		t = MaxTicks
	}
	if t < 0 {
		t = 0
	}
	return uint16(t)
}

// TickTimer abstracts the hardware interval timer behind the scheduler.
type TickTimer interface {
	// SetExpireFunc registers the function invoked in timer context when an
	// armed interval elapses. Must be called before the first Arm.
	SetExpireFunc(func())
	// Arm restarts the counter from zero and fires after ticks.
	Arm(ticks uint16)
	// Stop halts the counter. Elapsed keeps reporting the frozen value.
	Stop()
	// Elapsed returns ticks counted since the last Arm, frozen at Stop and
	// reset to zero once the armed interval fires.
	Elapsed() uint16
}

// IntervalTimer implements TickTimer on the runtime timer. It stands in for
// the hardware compare-match timer: the counter resets when the armed
// interval fires, exactly like a clear-on-compare counter.
type IntervalTimer struct {
	mu      sync.Mutex
	expire  func()
	timer   *time.Timer
	armedAt time.Time
	running bool
	frozen  uint16
}

// NewIntervalTimer creates a stopped IntervalTimer.
func NewIntervalTimer() *IntervalTimer {
	return &IntervalTimer{}
}

// SetExpireFunc implements TickTimer.
func (t *IntervalTimer) SetExpireFunc(f func()) {
	t.mu.Lock()
	t.expire = f
	t.mu.Unlock()
}

// Arm implements TickTimer.
func (t *IntervalTimer) Arm(ticks uint16) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.armedAt = time.Now()
	t.running = true
	t.frozen = 0
	t.timer = time.AfterFunc(time.Duration(ticks)*TickDuration, t.fire)
	t.mu.Unlock()
}

// Stop implements TickTimer.
func (t *IntervalTimer) Stop() {
	t.mu.Lock()
	if t.running {
		t.timer.Stop()
		t.frozen = t.sinceArmLocked()
		t.running = false
	}
	t.mu.Unlock()
}

// Elapsed implements TickTimer.
func (t *IntervalTimer) Elapsed() uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return t.sinceArmLocked()
	}
	return t.frozen
}

func (t *IntervalTimer) sinceArmLocked() uint16 {
	e := time.Since(t.armedAt) / TickDuration
	if e > MaxTicks {
		e = MaxTicks
	}
	return uint16(e)
}

func (t *IntervalTimer) fire() {
	t.mu.Lock()
	if !t.running {
		// Stopped after the runtime timer already fired; drop the event.
		t.mu.Unlock()
		return
	}
	t.running = false
	t.frozen = 0
	f := t.expire
	t.mu.Unlock()
	if f != nil {
		f()
	}
}
