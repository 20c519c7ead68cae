package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// manualTimer is a TickTimer advanced explicitly by the test.
type manualTimer struct {
	expire  func()
	armed   []uint16
	running bool
	elapsed uint16
}

func (t *manualTimer) SetExpireFunc(f func()) { t.expire = f }

func (t *manualTimer) Arm(ticks uint16) {
	t.armed = append(t.armed, ticks)
	t.running = true
	t.elapsed = 0
}

func (t *manualTimer) Stop() { t.running = false }

func (t *manualTimer) Elapsed() uint16 { return t.elapsed }

// fire simulates the armed interval elapsing.
func (t *manualTimer) fire() {
	t.running = false
	t.elapsed = 0
	t.expire()
}

func (t *manualTimer) lastArmed() uint16 {
	return t.armed[len(t.armed)-1]
}

type recorder struct {
	log  *[]string
	name string
}

func (r *recorder) Fire() { *r.log = append(*r.log, r.name) }

func newRecorders(log *[]string, names ...string) []*recorder {
	rs := make([]*recorder, len(names))
	for i, n := range names {
		rs[i] = &recorder{log: log, name: n}
	}
	return rs
}

func TestScheduleFiresInTickOrder(t *testing.T) {
	timer := &manualTimer{}
	s := New(timer)
	var log []string
	rs := newRecorders(&log, "a", "b", "c")

	require.True(t, s.Schedule(rs[0], 100))
	require.True(t, s.Schedule(rs[1], 50))
	require.True(t, s.Schedule(rs[2], 150))

	for s.Pending() > 0 {
		timer.fire()
	}
	require.Equal(t, []string{"b", "a", "c"}, log)
}

func TestCancelRemovesAllMatching(t *testing.T) {
	timer := &manualTimer{}
	s := New(timer)
	var log []string
	rs := newRecorders(&log, "a", "b")

	require.True(t, s.Schedule(rs[0], 100))
	require.True(t, s.Schedule(rs[1], 100))
	require.True(t, s.Schedule(rs[0], 100)) // second instance of a

	s.Cancel(rs[0])
	require.Equal(t, 1, s.Pending())

	timer.fire()
	require.Equal(t, []string{"b"}, log)
	require.Zero(t, s.Pending())
}

func TestZeroTickCoercesToOne(t *testing.T) {
	timer := &manualTimer{}
	s := New(timer)
	var log []string
	rs := newRecorders(&log, "zero", "one")

	require.True(t, s.Schedule(rs[0], 0))
	require.True(t, s.Schedule(rs[1], 1))
	// Neither fires at the same instant; both are armed one tick out.
	require.Equal(t, uint16(1), timer.lastArmed())
	require.Empty(t, log)

	timer.fire()
	require.Equal(t, []string{"zero", "one"}, log)
}

func TestEqualTicksFireInInsertionOrder(t *testing.T) {
	timer := &manualTimer{}
	s := New(timer)
	var log []string
	rs := newRecorders(&log, "1", "2", "3", "4")
	for _, r := range rs {
		require.True(t, s.Schedule(r, 500))
	}
	timer.fire()
	require.Equal(t, []string{"1", "2", "3", "4"}, log)
}

func TestTableCapacity(t *testing.T) {
	timer := &manualTimer{}
	s := New(timer)
	var log []string
	r := newRecorders(&log, "x")[0]
	for i := 0; i < MaxEvents; i++ {
		require.True(t, s.Schedule(r, 100))
	}
	require.False(t, s.Schedule(r, 100))
	require.Equal(t, MaxEvents, s.Pending())
}

func TestScheduleReconcilesElapsedTicks(t *testing.T) {
	timer := &manualTimer{}
	s := New(timer)
	var log []string
	rs := newRecorders(&log, "late", "early")

	require.True(t, s.Schedule(rs[0], 100))
	// 40 ticks pass on the live counter before the next schedule call.
	timer.elapsed = 40
	require.True(t, s.Schedule(rs[1], 30))

	// "late" has 59 ticks left, "early" 29; "early" is now the soonest.
	require.Equal(t, uint16(29), timer.lastArmed())
	timer.fire()
	require.Equal(t, []string{"early"}, log)
	timer.fire()
	require.Equal(t, []string{"early", "late"}, log)
}

// reschedulingCallback re-schedules itself from timer context, like a
// periodic poll arm does.
type reschedulingCallback struct {
	s     *Scheduler
	fired int
	limit int
}

func (c *reschedulingCallback) Fire() {
	c.fired++
	if c.fired < c.limit {
		c.s.Schedule(c, 100)
	}
}

func TestReentrantScheduleFromCallback(t *testing.T) {
	timer := &manualTimer{}
	s := New(timer)
	c := &reschedulingCallback{s: s, limit: 3}
	require.True(t, s.Schedule(c, 100))

	for i := 0; i < 3; i++ {
		require.Equal(t, 1, s.Pending())
		timer.fire()
	}
	require.Equal(t, 3, c.fired)
	require.Zero(t, s.Pending())
}

type orderedSink struct {
	mu  sync.Mutex
	log []string
}

type timedRecorder struct {
	sink *orderedSink
	name string
}

func (r *timedRecorder) Fire() {
	r.sink.mu.Lock()
	r.sink.log = append(r.sink.log, r.name)
	r.sink.mu.Unlock()
}

func TestIntervalTimerFiresInOrder(t *testing.T) {
	s := New(NewIntervalTimer())
	sink := &orderedSink{}
	mid := &timedRecorder{sink: sink, name: "mid"}
	soon := &timedRecorder{sink: sink, name: "soon"}
	late := &timedRecorder{sink: sink, name: "late"}

	require.True(t, s.Schedule(mid, MsToTicks(50)))
	require.True(t, s.Schedule(soon, MsToTicks(20)))
	require.True(t, s.Schedule(late, MsToTicks(80)))

	time.Sleep(150 * time.Millisecond)
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Equal(t, []string{"soon", "mid", "late"}, sink.log)
	require.Zero(t, s.Pending())
}

func TestPollService(t *testing.T) {
	timer := &manualTimer{}
	s := New(timer)
	polls := 0
	p := NewPollService(s, 100, func() { polls++ })

	require.True(t, p.Start())
	require.Equal(t, 1, s.Pending())

	// Nothing pending until the timer fires.
	p.Service()
	require.Zero(t, polls)

	timer.fire()
	// One poll pending, drained exactly once, and the next event is armed.
	p.Service()
	p.Service()
	require.Equal(t, 1, polls)
	require.Equal(t, 1, s.Pending())

	p.Stop()
	require.Zero(t, s.Pending())
	timer.elapsed = 0
	p.Service()
	require.Equal(t, 1, polls)
}
