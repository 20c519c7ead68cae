package session

import (
	"fmt"

	"github.com/robolink/netcop.go/pkg/proto"
)

// PartitionUnknown is reported before the first pong reveals which partition
// the peer booted from.
const PartitionUnknown byte = 0xFF

// Version is a firmware version triple.
type Version struct {
	Major byte
	Minor byte
	Patch byte
}

// IsZero reports whether v is the all-zero version, which the peer never
// reports and therefore means "no pong received yet".
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0 && v.Patch == 0
}

// Older reports whether v precedes w, comparing major, then minor, then
// patch.
func (v Version) Older(w Version) bool {
	if v.Major != w.Major {
		return v.Major < w.Major
	}
	if v.Minor != w.Minor {
		return v.Minor < w.Minor
	}
	return v.Patch < w.Patch
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// linkState is everything learned from the peer since the last reset. It is
// written only by dispatch, under s.mu.
type linkState struct {
	version   Version
	partition byte

	connected bool
	lastAcked byte

	wifiConnectDone bool
	wifiConnectOK   bool

	wifiState     byte
	wifiStateSeen bool

	errSeen bool
	errCode byte
	errCmd  byte

	httpData     []byte
	httpDataSeen bool

	rcsConnected bool

	flashing       bool
	flashComplete  bool
	flashError     bool
	flashErrorCode byte
	flashBytes     uint32
	flashTotal     uint32

	partitionValid     bool
	validatedPartition byte

	scanDone bool

	bleState byte
}

func (st *linkState) reset() {
	*st = linkState{
		partition:          PartitionUnknown,
		validatedPartition: PartitionUnknown,
		bleState:           proto.BLEStateOff,
	}
}

// Version returns the peer firmware version from the last pong, or the zero
// version if none arrived since the last reset.
func (s *Session) Version() Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.version
}

// Partition returns the partition the peer reported booting from, or
// PartitionUnknown.
func (s *Session) Partition() byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.partition
}

// IsConnected reports whether the peer holds a network association.
func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.connected
}

// LastAcked returns the id of the most recently acknowledged command.
func (s *Session) LastAcked() byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.lastAcked
}

// LastError returns the latched protocol error and the command it was
// responding to. ok is false if no error arrived since the latch was last
// cleared.
func (s *Session) LastError() (code, cmd byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.errCode, s.st.errCmd, s.st.errSeen
}

// ClearLastError resets the protocol error latch.
func (s *Session) ClearLastError() {
	s.mu.Lock()
	s.st.errSeen = false
	s.st.errCode = 0
	s.st.errCmd = 0
	s.mu.Unlock()
}

// WifiStatus returns the latched reply to the last status query. ok is false
// if no reply arrived yet.
func (s *Session) WifiStatus() (state byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.wifiState, s.st.wifiStateSeen
}

// HTTPData returns the latched body from the last http-get. ok is false
// until the reply arrives.
func (s *Session) HTTPData() (body []byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.httpData, s.st.httpDataSeen
}

// IsRCSConnected reports whether region communication is established.
func (s *Session) IsRCSConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.rcsConnected
}

// IsFlashing reports whether a flash is in progress.
func (s *Session) IsFlashing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.flashing
}

// IsFlashComplete reports whether the last flash finished.
func (s *Session) IsFlashComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.flashComplete
}

// HasFlashError reports whether the last flash failed.
func (s *Session) HasFlashError() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.flashError
}

// FlashErrorCode returns the failure code from the last flash error.
func (s *Session) FlashErrorCode() byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.flashErrorCode
}

// FlashProgress returns the fraction of the image written so far, in [0, 1].
func (s *Session) FlashProgress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.flashTotal == 0 {
		return 0
	}
	return float64(s.st.flashBytes) / float64(s.st.flashTotal)
}

// IsPartitionValid reports whether the last validation succeeded.
func (s *Session) IsPartitionValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.partitionValid
}

// ValidatedPartition returns which partition the last validation covered, or
// PartitionUnknown.
func (s *Session) ValidatedPartition() byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.validatedPartition
}

// IsScanDone reports whether the scan started by the last ScanWifi has
// finished announcing networks.
func (s *Session) IsScanDone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.scanDone
}

// BLEState returns the current BLE service state.
func (s *Session) BLEState() byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.bleState
}

// IsBLEConnected reports whether a BLE client is subscribed.
func (s *Session) IsBLEConnected() bool {
	return s.BLEState() == proto.BLEStateConnected
}

// NeedsUpdate reports whether the peer firmware should be replaced: the peer
// is unreachable, or it is not running from the OTA slot, or its version is
// older than expected.
func (s *Session) NeedsUpdate(expected Version) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.version.IsZero() {
		return true
	}
	if s.st.partition != proto.PartitionOTA0 {
		return true
	}
	return s.st.version.Older(expected)
}
