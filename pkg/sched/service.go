package sched

import (
	"sync/atomic"
)

// PollService bridges periodic timer events to transport polling without
// ever driving the transport from timer context. The scheduler callback only
// arms a flag; Service drains it, and is meant to be called frequently from
// ordinary execution paths: the session layer's wait-loop sleep does so on
// every iteration, which bounds the interval between polls.
type PollService struct {
	sched    *Scheduler
	interval uint16
	poll     func()

	pending uint32
	running uint32
}

// NewPollService creates a PollService firing every interval ticks and
// draining into poll.
func NewPollService(s *Scheduler, interval uint16, poll func()) *PollService {
	return &PollService{sched: s, interval: interval, poll: poll}
}

// Start begins periodic arming. It returns false if the event table is full.
func (p *PollService) Start() bool {
	if !atomic.CompareAndSwapUint32(&p.running, 0, 1) {
		return true
	}
	if !p.sched.Schedule(p, p.interval) {
		atomic.StoreUint32(&p.running, 0)
		return false
	}
	return true
}

// Stop halts periodic arming and clears any pending flag.
func (p *PollService) Stop() {
	atomic.StoreUint32(&p.running, 0)
	atomic.StoreUint32(&p.pending, 0)
	p.sched.Cancel(p)
}

// Fire implements Callback. Timer context: set the flag and re-schedule,
// nothing else.
func (p *PollService) Fire() {
	if atomic.LoadUint32(&p.running) == 0 {
		return
	}
	atomic.StoreUint32(&p.pending, 1)
	p.sched.Schedule(p, p.interval)
}

// Service drains one pending poll, if armed. Safe to call from anywhere
// except timer context.
func (p *PollService) Service() {
	if atomic.CompareAndSwapUint32(&p.pending, 1, 0) {
		p.poll()
	}
}
