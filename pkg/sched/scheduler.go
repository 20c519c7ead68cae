package sched

import (
	"sync"
)

// MaxEvents is the fixed event-table capacity.
const MaxEvents = 8

// Callback is a scheduled event target. The interface value itself is the
// event's identity: Cancel removes every pending event whose callback
// compares equal. Fire runs in timer context and must be fast and
// non-blocking.
type Callback interface {
	Fire()
}

type event struct {
	cb    Callback
	ticks uint16
}

// Scheduler keeps a fixed-capacity, tick-sorted event table driven by one
// TickTimer. Schedule and Cancel may be called from within a firing
// callback.
type Scheduler struct {
	timer TickTimer

	mu     sync.Mutex
	events [MaxEvents]event
	n      int
	armed  uint16

	// dispatchMu serializes whole expiry passes so a re-armed short interval
	// cannot start a second pass mid-dispatch.
	dispatchMu sync.Mutex
}

// New creates a Scheduler on the given timer and registers its expiry
// handler.
func New(timer TickTimer) *Scheduler {
	s := &Scheduler{timer: timer}
	timer.SetExpireFunc(s.expire)
	return s
}

// Pending returns the number of queued events.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Schedule queues cb to fire after ticks. It returns false if the table is
// full. A zero-tick request coerces to one tick; nothing fires at the same
// instant it is scheduled. Events with equal remaining ticks fire in
// insertion order.
func (s *Scheduler) Schedule(cb Callback, ticks uint16) bool {
	// Compensate setup time, then floor at one tick.
	if ticks >= 1 {
		ticks--
	}
	if ticks == 0 {
		ticks = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n >= MaxEvents {
		return false
	}

	s.timer.Stop()
	s.advanceLocked(s.timer.Elapsed())

	// Ordered-array insert; strictly-greater shifts keep equal-tick events
	// stable in insertion order.
	i := s.n - 1
	for i >= 0 && s.events[i].ticks > ticks {
		s.events[i+1] = s.events[i]
		i--
	}
	s.events[i+1] = event{cb: cb, ticks: ticks}
	s.n++

	s.armLocked()
	return true
}

// Cancel removes every pending event whose callback equals cb. Events
// already extracted for dispatch in an in-flight expiry pass still fire.
func (s *Scheduler) Cancel(cb Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timer.Stop()
	s.advanceLocked(s.timer.Elapsed())

	kept := 0
	for i := 0; i < s.n; i++ {
		if s.events[i].cb == cb {
			continue
		}
		s.events[kept] = s.events[i]
		kept++
	}
	for i := kept; i < s.n; i++ {
		s.events[i] = event{}
	}
	s.n = kept

	s.armLocked()
}

// expire runs in timer context when the armed interval elapses.
func (s *Scheduler) expire() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.advanceLocked(s.armed)

	var due [MaxEvents]Callback
	nDue := 0
	for s.n > 0 && s.events[0].ticks == 0 {
		due[nDue] = s.events[0].cb
		nDue++
		for i := 1; i < s.n; i++ {
			s.events[i-1] = s.events[i]
		}
		s.n--
		s.events[s.n] = event{}
	}
	s.mu.Unlock()

	// Dispatch outside the table lock so callbacks can re-enter Schedule
	// and Cancel. Newly scheduled events are at least one tick out, so they
	// never join this pass.
	for i := 0; i < nDue; i++ {
		due[i].Fire()
	}

	s.mu.Lock()
	s.timer.Stop()
	s.advanceLocked(s.timer.Elapsed())
	s.armLocked()
	s.mu.Unlock()
}

// advanceLocked subtracts elapsed ticks from every pending event, flooring
// at zero. Always guard the subtraction: the timer may have run past an
// event's remaining ticks before we got to stop it.
func (s *Scheduler) advanceLocked(elapsed uint16) {
	for i := 0; i < s.n; i++ {
		if s.events[i].ticks < elapsed {
			s.events[i].ticks = 0
		} else {
			s.events[i].ticks -= elapsed
		}
	}
}

// armLocked re-arms the timer for the soonest event, if any.
func (s *Scheduler) armLocked() {
	if s.n > 0 {
		s.armed = s.events[0].ticks
		s.timer.Arm(s.armed)
	}
}
