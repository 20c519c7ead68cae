package sim

import (
	"encoding/binary"
	"sync"

	"github.com/golang/glog"

	"github.com/robolink/netcop.go/pkg/proto"
)

// Version is a firmware version triple as reported in a pong reply.
type Version [3]byte

// CommandHook intercepts a request before the default handling. Returning
// true consumes the command; the hook is responsible for queueing any reply.
type CommandHook func(p *Peer, cmd byte, data []byte) bool

// Peer simulates the network coprocessor. The zero value is unusable; use
// NewPeer. All exported fields are read during command handling and may be
// set by tests before (or between) exchanges.
type Peer struct {
	// FactoryVersion is the updater firmware version on the factory
	// partition. AppVersion is whatever currently occupies the OTA slot.
	FactoryVersion Version
	AppVersion     Version

	// ServedVersion is the firmware image the download URL serves; a
	// successful flash installs it into the OTA slot.
	ServedVersion Version

	// WifiAvailable controls whether join attempts succeed.
	WifiAvailable bool

	// ScanNetworks are the SSIDs announced during a wifi scan.
	ScanNetworks []string

	// HTTPBody is returned for any http-get request.
	HTTPBody []byte

	// FlashTotal is the byte size of the served image.
	FlashTotal uint32

	// FlashChunks is how many progress notifications a flash produces
	// before completing.
	FlashChunks int

	// Mute makes every exchange return an all-zero frame, emulating a dead
	// or absent peer. Power and partition state still track normally.
	Mute bool

	// Hook, when non-nil, sees every request first.
	Hook CommandHook

	mu            sync.Mutex
	powered       bool
	factorySelect bool
	partition     byte // partition the peer booted from
	bootPartition byte // partition configured for the next boot
	otaValid      bool
	wifiConnected bool
	bleState      byte
	bleName       string
	bleLogs       []string
	queue         [][]byte
}

// NewPeer returns a powered-off peer with a valid application image on the
// OTA slot and sensible defaults for a successful update round-trip.
func NewPeer() *Peer {
	return &Peer{
		FactoryVersion: Version{0, 9, 0},
		AppVersion:     Version{1, 0, 0},
		ServedVersion:  Version{1, 0, 0},
		WifiAvailable:  true,
		FlashTotal:     4096,
		FlashChunks:    4,
		bootPartition:  proto.PartitionOTA0,
		otaValid:       true,
	}
}

// SetEnable implements link.ControlPins. A rising edge boots the peer: the
// running partition latches from the boot-select line or the configured boot
// partition, and all session-scoped state is lost.
func (p *Peer) SetEnable(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if on && !p.powered {
		if p.factorySelect {
			p.partition = proto.PartitionFactory
		} else {
			p.partition = p.bootPartition
		}
		p.wifiConnected = false
		p.bleState = proto.BLEStateOff
		p.queue = nil
		glog.V(4).Infof("sim: boot partition=0x%02X", p.partition)
	}
	p.powered = on
}

// SetFactorySelect implements link.ControlPins.
func (p *Peer) SetFactorySelect(on bool) {
	p.mu.Lock()
	p.factorySelect = on
	p.mu.Unlock()
}

// Partition returns the partition the peer last booted from.
func (p *Peer) Partition() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.partition
}

// BootPartition returns the partition configured for the next boot.
func (p *Peer) BootPartition() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bootPartition
}

// WifiConnected reports whether the peer currently holds a network
// association.
func (p *Peer) WifiConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wifiConnected
}

// BLELogs returns every log line received over the BLE log primitive.
func (p *Peer) BLELogs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.bleLogs...)
}

// BLEName returns the advertising name last set by the host.
func (p *Peer) BLEName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bleName
}

// Queue appends a pre-built reply or notification for delivery on a later
// exchange.
func (p *Peer) Queue(cmd byte, data []byte) {
	p.mu.Lock()
	p.enqueue(cmd, data)
	p.mu.Unlock()
}

// QueueRCSData queues a region-communication payload notification.
func (p *Peer) QueueRCSData(data []byte) {
	p.Queue(proto.NotifyRCSData, data)
}

// Exchange implements link.Transport. rx carries the oldest queued reply, or
// zeros when nothing is pending; the request in tx is handled after, so its
// replies surface on later exchanges, exactly like the half-duplex hardware
// where the peer clocks out a prepared frame while the command arrives.
func (p *Peer) Exchange(tx, rx []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range rx {
		rx[i] = 0
	}
	if !p.powered || p.Mute {
		return
	}
	if len(p.queue) > 0 {
		copy(rx, p.queue[0])
		p.queue = p.queue[1:]
	}
	if pkt := proto.Decode(tx); pkt != nil {
		p.handle(pkt.Cmd, pkt.Data)
	}
}

// PendingReplies returns how many queued frames await delivery.
func (p *Peer) PendingReplies() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Peer) enqueue(cmd byte, data []byte) {
	frame := make([]byte, proto.ExchangeSize)
	proto.EncodeInto(frame, cmd, data)
	p.queue = append(p.queue, frame)
}

func (p *Peer) ack(cmd byte) {
	p.enqueue(proto.RspAck, []byte{cmd})
}

func (p *Peer) fail(code, cmd byte) {
	p.enqueue(proto.RspError, []byte{code, cmd})
}

func (p *Peer) runningVersion() Version {
	if p.partition == proto.PartitionFactory {
		return p.FactoryVersion
	}
	return p.AppVersion
}

// handle answers one request. Called with p.mu held.
func (p *Peer) handle(cmd byte, data []byte) {
	if p.Hook != nil {
		p.mu.Unlock()
		consumed := p.Hook(p, cmd, data)
		p.mu.Lock()
		if consumed {
			return
		}
	}
	glog.V(4).Infof("sim: cmd=0x%02X len=%d partition=0x%02X", cmd, len(data), p.partition)

	switch cmd {
	case proto.CmdPing:
		v := p.runningVersion()
		p.enqueue(proto.RspPong, []byte{v[0], v[1], v[2], p.partition})

	case proto.CmdSetDebugLevel:
		p.ack(cmd)

	case proto.CmdWifiConnect, proto.CmdWifiConnectFast:
		p.ack(cmd)
		if p.WifiAvailable {
			p.wifiConnected = true
			p.enqueue(proto.NotifyWifiConnected, nil)
		} else {
			p.enqueue(proto.NotifyWifiFailed, []byte{proto.WifiFailNetworkNotFound})
		}

	case proto.CmdWifiDisconnect:
		p.ack(cmd)
		p.wifiConnected = false
		p.enqueue(proto.NotifyWifiDisconnected, []byte{proto.WifiDisconnectReasonUser})

	case proto.CmdWifiStatus:
		state := proto.WifiStateDisconnected
		if p.wifiConnected {
			state = proto.WifiStateConnected
		}
		p.enqueue(proto.RspWifiStatus, []byte{state})

	case proto.CmdHTTPGet:
		if !p.wifiConnected {
			p.fail(proto.ErrorNotConnectedToWifi, cmd)
			return
		}
		p.enqueue(proto.RspHTTPData, p.HTTPBody)

	case 0x30:
		if p.partition == proto.PartitionFactory {
			p.downloadAndFlash()
		} else {
			p.rcsConnect()
		}

	case 0x31:
		if p.partition == proto.PartitionFactory {
			p.setBootPartition(data)
		} else {
			p.ack(cmd)
			p.enqueue(proto.NotifyRCSDisconnected, nil)
		}

	case proto.CmdValidatePartition:
		if p.partition != proto.PartitionFactory {
			return
		}
		if !p.otaValid {
			p.fail(proto.ErrorInvalidPartition, cmd)
			return
		}
		var resp [5]byte
		resp[0] = proto.PartitionOTA0
		binary.LittleEndian.PutUint32(resp[1:], p.FlashTotal)
		p.enqueue(proto.RspPartitionValid, resp[:])

	case proto.CmdWifiScan:
		p.ack(cmd)
		for n, ssid := range p.ScanNetworks {
			if len(ssid) > 16 {
				ssid = ssid[:16]
			}
			buf := make([]byte, 0, 4+len(ssid))
			buf = append(buf, byte(-40-n), proto.WifiEncryptionWPA2PSK, byte(1+n), byte(len(ssid)))
			buf = append(buf, ssid...)
			p.enqueue(proto.NotifyWifiScanResult, buf)
		}
		p.enqueue(proto.NotifyWifiScanDone, []byte{0})

	case proto.CmdBLESetName:
		if len(data) >= 1 && int(data[0]) <= len(data)-1 {
			p.bleName = string(data[1 : 1+data[0]])
		}
		p.ack(cmd)

	case proto.CmdBLEStart:
		p.bleState = proto.BLEStateAdvertising
		p.enqueue(proto.RspBLEStatus, []byte{p.bleState})

	case proto.CmdBLEStop:
		p.bleState = proto.BLEStateOff
		p.enqueue(proto.RspBLEStatus, []byte{p.bleState})

	case proto.CmdBLESendLog:
		p.bleLogs = append(p.bleLogs, string(data))
		p.ack(cmd)
	}
}

// downloadAndFlash runs the whole flash as an immediate burst of queued
// progress notifications. Real flashing takes seconds; the host-side polling
// loop behaves identically either way.
func (p *Peer) downloadAndFlash() {
	if !p.wifiConnected {
		p.fail(proto.ErrorNotConnectedToWifi, proto.CmdDownloadAndFlash)
		return
	}
	p.ack(proto.CmdDownloadAndFlash)
	chunks := p.FlashChunks
	if chunks < 1 {
		chunks = 1
	}
	var buf [8]byte
	for i := 1; i <= chunks; i++ {
		binary.LittleEndian.PutUint32(buf[0:], p.FlashTotal/uint32(chunks)*uint32(i))
		binary.LittleEndian.PutUint32(buf[4:], p.FlashTotal)
		p.enqueue(proto.NotifyFlashProgress, buf[:])
	}
	p.AppVersion = p.ServedVersion
	p.otaValid = true
	p.enqueue(proto.NotifyFlashComplete, nil)
}

func (p *Peer) setBootPartition(data []byte) {
	if len(data) < 1 || data[0] > proto.PartitionOTA0 {
		p.fail(proto.ErrorInvalidParameters, proto.CmdSetBootPartition)
		return
	}
	p.bootPartition = data[0]
	p.ack(proto.CmdSetBootPartition)
}

func (p *Peer) rcsConnect() {
	if !p.wifiConnected {
		p.fail(proto.ErrorNotConnectedToWifi, proto.CmdRCSConnect)
		return
	}
	p.ack(proto.CmdRCSConnect)
	p.enqueue(proto.NotifyRCSConnected, nil)
}
