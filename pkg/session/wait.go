package session

import (
	"time"

	"github.com/robolink/netcop.go/pkg/proto"
)

// PollInterval is the sleep between iterations of a wait helper's
// poll-and-inspect loop.
const PollInterval = 10 * time.Millisecond

// idle drains any deferred work, then sleeps one poll interval.
func (s *Session) idle() {
	if s.servicer != nil {
		s.servicer.Service()
	}
	time.Sleep(PollInterval)
}

// WaitForAck blocks until the peer acknowledges cmd or the timeout elapses.
// The ack latch is cleared first so a stale acknowledgment from an earlier
// command is never mistaken for this one.
func (s *Session) WaitForAck(cmd byte, timeout time.Duration) bool {
	s.mu.Lock()
	s.st.lastAcked = 0
	s.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.Poll()
		if s.LastAcked() == cmd {
			return true
		}
		s.idle()
	}
	return false
}

// WaitForWifiConnect blocks until a join attempt resolves, returning whether
// it succeeded. The outcome latch is cleared first; a timeout counts as
// failure.
func (s *Session) WaitForWifiConnect(timeout time.Duration) bool {
	s.mu.Lock()
	s.st.wifiConnectDone = false
	s.st.wifiConnectOK = false
	s.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.Poll()
		s.mu.RLock()
		done, ok := s.st.wifiConnectDone, s.st.wifiConnectOK
		s.mu.RUnlock()
		if done {
			return ok
		}
		s.idle()
	}
	return false
}

// WaitForReady pings until the peer reports a version, i.e. until it has
// booted far enough to answer. Used after power-on and after resets.
func (s *Session) WaitForReady(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.Poll()
		s.Ping()
		if !s.Version().IsZero() {
			return true
		}
		s.idle()
	}
	return false
}

// WaitForHTTPData blocks until the reply to the last HTTPGet arrives,
// returning the body. HTTPGet clears the latch, so only call this after it.
func (s *Session) WaitForHTTPData(timeout time.Duration) ([]byte, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.Poll()
		if body, ok := s.HTTPData(); ok {
			return body, true
		}
		s.idle()
	}
	return nil, false
}

// WaitForScanDone blocks until the scan started by the last ScanWifi
// finishes. ScanWifi clears the latch; results stream to the registered
// ScanResultFunc while this polls.
func (s *Session) WaitForScanDone(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.Poll()
		if s.IsScanDone() {
			return true
		}
		s.idle()
	}
	return false
}

// WaitForValidation blocks until the reply to the last ValidatePartition
// arrives and names the OTA slot. ValidatePartition clears the latch.
func (s *Session) WaitForValidation(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.Poll()
		s.mu.RLock()
		valid, which := s.st.partitionValid, s.st.validatedPartition
		s.mu.RUnlock()
		if valid {
			return which == proto.PartitionOTA0
		}
		s.idle()
	}
	return false
}
