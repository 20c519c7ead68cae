package session

import (
	"encoding/binary"

	"github.com/golang/glog"

	"github.com/robolink/netcop.go/pkg/proto"
)

// dispatch consumes one decoded frame. It is total over the response id
// space: ids this build does not know are ignored, so a newer peer firmware
// never breaks an older host.
func (s *Session) dispatch(pkt *proto.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch pkt.Cmd {
	case proto.RspAck:
		if len(pkt.Data) >= 1 {
			s.st.lastAcked = pkt.Data[0]
		}

	case proto.RspError:
		s.st.errSeen = true
		if len(pkt.Data) >= 1 {
			s.st.errCode = pkt.Data[0]
		}
		if len(pkt.Data) >= 2 {
			s.st.errCmd = pkt.Data[1]
		}
		glog.Warningf("session: peer error code=0x%02X cmd=0x%02X", s.st.errCode, s.st.errCmd)

	case proto.RspPong:
		if len(pkt.Data) >= 4 {
			s.st.version = Version{Major: pkt.Data[0], Minor: pkt.Data[1], Patch: pkt.Data[2]}
			s.st.partition = pkt.Data[3]
		}

	case proto.NotifyDebug:
		glog.Infof("session: peer debug: %s", pkt.Data)

	case proto.RspWifiStatus:
		if len(pkt.Data) >= 1 {
			s.st.wifiState = pkt.Data[0]
			s.st.wifiStateSeen = true
			s.st.connected = pkt.Data[0] == proto.WifiStateConnected
		}

	case proto.NotifyWifiConnected:
		s.st.connected = true
		s.st.wifiConnectDone = true
		s.st.wifiConnectOK = true

	case proto.NotifyWifiFailed, proto.NotifyWifiDisconnected:
		s.st.connected = false
		s.st.wifiConnectDone = true
		s.st.wifiConnectOK = false

	case proto.NotifyWifiScanResult:
		// [rssi:int8][encryption][channel][ssidLen][ssid...]
		if len(pkt.Data) < 4 {
			break
		}
		n := int(pkt.Data[3])
		if 4+n > len(pkt.Data) {
			break
		}
		r := ScanResult{
			SSID:       string(pkt.Data[4 : 4+n]),
			RSSI:       int8(pkt.Data[0]),
			Encryption: pkt.Data[1],
			Channel:    pkt.Data[2],
		}
		if fn := s.scanResult; fn != nil {
			s.mu.Unlock()
			fn(r)
			s.mu.Lock()
		}

	case proto.NotifyWifiScanDone:
		s.st.scanDone = true

	case proto.RspHTTPData:
		s.st.httpData = append([]byte(nil), pkt.Data...)
		s.st.httpDataSeen = true

	case proto.NotifyRCSConnected:
		s.st.rcsConnected = true

	case proto.NotifyRCSDisconnected:
		s.st.rcsConnected = false

	case proto.NotifyRCSData:
		// The callback may read session state, so release the lock around it.
		if fn := s.rcsData; fn != nil {
			s.mu.Unlock()
			fn(pkt.Data)
			s.mu.Lock()
		}

	case proto.NotifyFlashProgress:
		if len(pkt.Data) >= 8 {
			s.st.flashBytes = binary.LittleEndian.Uint32(pkt.Data[0:4])
			s.st.flashTotal = binary.LittleEndian.Uint32(pkt.Data[4:8])
			s.st.flashing = true
		}

	case proto.NotifyFlashComplete:
		s.st.flashing = false
		s.st.flashComplete = true

	case proto.NotifyFlashFailed:
		s.st.flashing = false
		s.st.flashError = true
		if len(pkt.Data) >= 1 {
			s.st.flashErrorCode = pkt.Data[0]
		}

	case proto.RspPartitionValid:
		if len(pkt.Data) >= 1 {
			s.st.partitionValid = true
			s.st.validatedPartition = pkt.Data[0]
		}

	case proto.RspBLEStatus:
		if len(pkt.Data) >= 1 {
			s.st.bleState = pkt.Data[0]
		}

	case proto.NotifyBLEClientEvent:
		if len(pkt.Data) >= 1 {
			switch pkt.Data[0] {
			case proto.BLEEventClientConnected:
				s.st.bleState = proto.BLEStateConnected
			case proto.BLEEventClientDisconnected:
				s.st.bleState = proto.BLEStateAdvertising
			}
		}
	}
}
