// Package session turns the raw link into typed commands and durable state.
//
// A Session owns the link driver and registers itself as the dispatch
// handler, so every decoded response or notification lands in the session's
// state before the Send or Poll call that carried it returns. Callers observe
// outcomes through accessors and through the blocking wait helpers, which all
// follow the same discipline: reset the relevant latch, then poll and inspect
// until it sets or the timeout elapses.
package session
