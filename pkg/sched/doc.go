// Package sched provides a constant-memory cooperative tick scheduler.
package sched

// Events live in a fixed-capacity table sorted ascending by remaining ticks.
// One hardware-style interval timer drives the table: it is armed for the
// soonest event, and every mutation first reconciles all pending events
// against the ticks that elapsed since the timer was last armed, so the
// sorted order stays consistent.
//
// Callbacks fire in timer context. They must be fast, must not block, and
// must never touch the exchange transport; anything slow is deferred through
// PollService and drained from ordinary execution context.
//
// The tick is 64 microseconds and the timer counter is 16-bit, so the
// maximum schedulable horizon is about 4.19 seconds. Longer delays are built
// by re-scheduling from within a callback.
