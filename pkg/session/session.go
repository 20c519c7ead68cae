package session

import (
	"sync"

	"github.com/robolink/netcop.go/pkg/link"
	"github.com/robolink/netcop.go/pkg/proto"
)

// Payload field limits enforced locally, before any exchange happens.
const (
	MaxSSIDLen    = 16
	MaxPassLen    = 16
	MaxURLLen     = 32
	MaxTeamKeyLen = 9
	MaxBLENameLen = 16
	MaxBLELogLen  = 32
)

// RCSDataFunc receives the payload of every region-communication data
// notification. It runs synchronously inside the Send or Poll call that
// decoded the notification; the payload is only valid for the duration of
// the call.
type RCSDataFunc func(data []byte)

// ScanResult is one network announced during a wifi scan.
type ScanResult struct {
	SSID       string
	RSSI       int8
	Encryption byte
	Channel    byte
}

// ScanResultFunc receives every scan-result notification. Like RCSDataFunc it
// runs synchronously inside the decoding Send or Poll call.
type ScanResultFunc func(r ScanResult)

// Servicer is drained during wait-helper sleeps, bounding the latency of any
// deferred work (typically the scheduler's poll flag).
type Servicer interface {
	Service()
}

// Session owns the link driver and all state learned from the peer.
// Commands and wait helpers are driven from one goroutine; accessors may be
// read from others.
type Session struct {
	drv      *link.Driver
	servicer Servicer

	mu         sync.RWMutex
	st         linkState
	rcsData    RCSDataFunc
	scanResult ScanResultFunc
}

// New creates a Session over the given transport and control lines. The peer
// is left powered off; call Begin to boot it.
func New(t link.Transport, pins link.ControlPins) *Session {
	s := &Session{}
	s.st.reset()
	s.drv = link.NewDriver(t, pins, s.dispatch)
	return s
}

// Driver exposes the underlying link driver for power control and timing
// configuration.
func (s *Session) Driver() *link.Driver {
	return s.drv
}

// SetServicer registers the deferred-work drain invoked during wait sleeps.
func (s *Session) SetServicer(sv Servicer) {
	s.servicer = sv
}

// SetRCSDataFunc registers the region-communication payload callback.
func (s *Session) SetRCSDataFunc(fn RCSDataFunc) {
	s.mu.Lock()
	s.rcsData = fn
	s.mu.Unlock()
}

// SetScanResultFunc registers the wifi scan-result callback.
func (s *Session) SetScanResultFunc(fn ScanResultFunc) {
	s.mu.Lock()
	s.scanResult = fn
	s.mu.Unlock()
}

// Begin powers the peer on into its configured boot partition.
func (s *Session) Begin() {
	s.drv.PowerOn(false)
}

// Poll runs one empty exchange, giving the peer a chance to deliver a queued
// notification.
func (s *Session) Poll() {
	s.drv.Poll()
}

// Reset power-cycles the peer and discards all state learned from it. With
// factoryReset set, the peer boots its factory partition.
func (s *Session) Reset(factoryReset bool) {
	s.drv.Reset(factoryReset)
	s.mu.Lock()
	s.st.reset()
	s.mu.Unlock()
}

// Ping requests a pong carrying the peer's version and running partition.
func (s *Session) Ping() bool {
	return s.drv.Send(proto.CmdPing, nil)
}

// SetDebugLevel configures the verbosity of peer debug notifications.
func (s *Session) SetDebugLevel(level byte) bool {
	return s.drv.Send(proto.CmdSetDebugLevel, []byte{level})
}

// ConnectWifi joins a network by SSID and password. Oversize credentials are
// rejected locally and nothing is sent.
func (s *Session) ConnectWifi(ssid, password string) bool {
	if len(ssid) > MaxSSIDLen || len(password) > MaxPassLen {
		return false
	}
	buf := make([]byte, 0, 2+len(ssid)+len(password))
	buf = append(buf, byte(len(ssid)))
	buf = append(buf, ssid...)
	buf = append(buf, byte(len(password)))
	buf = append(buf, password...)
	return s.drv.Send(proto.CmdWifiConnect, buf)
}

// ConnectWifiFast joins a known network without scanning, using its BSSID
// and channel.
func (s *Session) ConnectWifiFast(ssid, password string, bssid [6]byte, channel byte) bool {
	if len(ssid) > MaxSSIDLen || len(password) > MaxPassLen {
		return false
	}
	buf := make([]byte, 0, 2+len(ssid)+len(password)+7)
	buf = append(buf, byte(len(ssid)))
	buf = append(buf, ssid...)
	buf = append(buf, byte(len(password)))
	buf = append(buf, password...)
	buf = append(buf, bssid[:]...)
	buf = append(buf, channel)
	return s.drv.Send(proto.CmdWifiConnectFast, buf)
}

// DisconnectWifi drops the current network association.
func (s *Session) DisconnectWifi() bool {
	return s.drv.Send(proto.CmdWifiDisconnect, nil)
}

// QueryWifiStatus requests the connection state, clearing the status latch
// first.
func (s *Session) QueryWifiStatus() bool {
	s.mu.Lock()
	s.st.wifiStateSeen = false
	s.st.wifiState = proto.WifiStateDisconnected
	s.mu.Unlock()
	return s.drv.Send(proto.CmdWifiStatus, nil)
}

// ScanWifi starts a network scan, clearing the scan-done latch first.
// Results arrive as notifications during subsequent polls and are handed to
// the registered ScanResultFunc. Application profile only.
func (s *Session) ScanWifi(options byte) bool {
	s.mu.Lock()
	s.st.scanDone = false
	s.mu.Unlock()
	return s.drv.Send(proto.CmdWifiScan, []byte{options})
}

// HTTPGet fetches a small file (at most 32 bytes) from an HTTP server,
// clearing the data latch first. The URL is length-checked locally.
func (s *Session) HTTPGet(url string) bool {
	if len(url) > MaxURLLen {
		return false
	}
	s.mu.Lock()
	s.st.httpDataSeen = false
	s.st.httpData = nil
	s.mu.Unlock()
	buf := make([]byte, 0, 1+len(url))
	buf = append(buf, byte(len(url)))
	buf = append(buf, url...)
	return s.drv.Send(proto.CmdHTTPGet, buf)
}

// ConnectRCS starts region communication with the server at ip. The team key
// is silently truncated to MaxTeamKeyLen bytes. Application profile only.
func (s *Session) ConnectRCS(region byte, ip [4]byte, teamKey string) bool {
	if len(teamKey) > MaxTeamKeyLen {
		teamKey = teamKey[:MaxTeamKeyLen]
	}
	buf := make([]byte, 0, 6+len(teamKey))
	buf = append(buf, region)
	buf = append(buf, ip[:]...)
	buf = append(buf, byte(len(teamKey)))
	buf = append(buf, teamKey...)
	return s.drv.Send(proto.CmdRCSConnect, buf)
}

// DisconnectRCS stops region communication.
func (s *Session) DisconnectRCS() bool {
	return s.drv.Send(proto.CmdRCSDisconnect, nil)
}

// DownloadAndFlash asks the updater to fetch the firmware image at url and
// write it to the OTA slot, resetting the flash latches first. Updater
// profile only.
func (s *Session) DownloadAndFlash(url string) bool {
	if len(url) > MaxURLLen {
		return false
	}
	s.mu.Lock()
	s.st.flashing = true
	s.st.flashComplete = false
	s.st.flashError = false
	s.st.flashErrorCode = 0
	s.st.flashBytes = 0
	s.st.flashTotal = 0
	s.mu.Unlock()
	buf := make([]byte, 0, 1+len(url))
	buf = append(buf, byte(len(url)))
	buf = append(buf, url...)
	return s.drv.Send(proto.CmdDownloadAndFlash, buf)
}

// ValidatePartition asks the updater to verify the OTA slot contents,
// resetting the validation latch first. Updater profile only.
func (s *Session) ValidatePartition() bool {
	s.mu.Lock()
	s.st.partitionValid = false
	s.st.validatedPartition = PartitionUnknown
	s.mu.Unlock()
	return s.drv.Send(proto.CmdValidatePartition, nil)
}

// SetBootPartition selects which partition the peer boots from next.
// Updater profile only.
func (s *Session) SetBootPartition(partition byte) bool {
	return s.drv.Send(proto.CmdSetBootPartition, []byte{partition})
}

// SetBLEName sets the BLE advertising name, truncated to MaxBLENameLen
// bytes. Must precede StartBLE.
func (s *Session) SetBLEName(deviceName string) bool {
	if len(deviceName) > MaxBLENameLen {
		deviceName = deviceName[:MaxBLENameLen]
	}
	buf := make([]byte, 0, 1+len(deviceName))
	buf = append(buf, byte(len(deviceName)))
	buf = append(buf, deviceName...)
	return s.drv.Send(proto.CmdBLESetName, buf)
}

// StartBLE starts BLE advertising and the log service.
func (s *Session) StartBLE() bool {
	return s.drv.Send(proto.CmdBLEStart, nil)
}

// StopBLE shuts the BLE service down, disconnecting any client.
func (s *Session) StopBLE() bool {
	return s.drv.Send(proto.CmdBLEStop, nil)
}

// SendBLELog queues one pre-formatted log line for BLE delivery. Lines must
// be 1 to MaxBLELogLen bytes.
func (s *Session) SendBLELog(msg string) bool {
	if len(msg) == 0 || len(msg) > MaxBLELogLen {
		return false
	}
	return s.drv.Send(proto.CmdBLESendLog, []byte(msg))
}
