package link

import (
	"time"

	"github.com/golang/glog"

	"github.com/robolink/netcop.go/pkg/proto"
)

// Default control timing.
const (
	// DefaultBootDelay is how long the peer needs to boot after power-on.
	DefaultBootDelay = 1500 * time.Millisecond
	// DefaultResetDelay is the off-time in the middle of a reset cycle.
	DefaultResetDelay = 100 * time.Millisecond
)

// DispatchFunc receives every valid frame decoded from an exchange. It runs
// synchronously on the goroutine that called Send or Poll, before that call
// returns.
type DispatchFunc func(*proto.Packet)

// Driver owns the transport and the peer control lines.
type Driver struct {
	// BootDelay and ResetDelay override the default settle timing. Tests
	// shrink these; production code leaves them alone.
	BootDelay  time.Duration
	ResetDelay time.Duration

	transport Transport
	pins      ControlPins
	dispatch  DispatchFunc

	tx [proto.ExchangeSize]byte
	rx [proto.ExchangeSize]byte
}

// NewDriver creates a Driver and leaves the peer powered off.
func NewDriver(t Transport, pins ControlPins, dispatch DispatchFunc) *Driver {
	d := &Driver{
		BootDelay:  DefaultBootDelay,
		ResetDelay: DefaultResetDelay,
		transport:  t,
		pins:       pins,
		dispatch:   dispatch,
	}
	d.PowerOff()
	return d
}

// PowerOff releases the enable and factory-select lines.
func (d *Driver) PowerOff() {
	d.pins.SetFactorySelect(false)
	d.pins.SetEnable(false)
}

// PowerOn asserts enable and waits for the peer to boot. With factoryReset
// set, the boot-select line is held through the power-up so the peer comes up
// in its factory partition.
func (d *Driver) PowerOn(factoryReset bool) {
	if factoryReset {
		d.pins.SetFactorySelect(true)
	}
	d.pins.SetEnable(true)
	time.Sleep(d.BootDelay)
	if factoryReset {
		d.pins.SetFactorySelect(false)
	}
}

// Reset power-cycles the peer.
func (d *Driver) Reset(factoryReset bool) {
	d.PowerOff()
	time.Sleep(d.ResetDelay)
	d.PowerOn(factoryReset)
}

// Send encodes cmd with data, runs one exchange, and dispatches the reply if
// the received buffer frames a valid packet. It returns true once the driver
// is constructed; whether the command took effect shows up in session state,
// not here.
func (d *Driver) Send(cmd byte, data []byte) bool {
	if d.transport == nil {
		return false
	}
	proto.EncodeInto(d.tx[:], cmd, data)
	glog.V(4).Infof("link: send cmd=0x%02X len=%d", cmd, len(data))
	d.exchange()
	return true
}

// Poll runs one all-zero exchange to give the peer a chance to deliver a
// queued notification. Periodic polling is the only mechanism by which
// unsolicited messages arrive.
func (d *Driver) Poll() {
	if d.transport == nil {
		return
	}
	for i := range d.tx {
		d.tx[i] = 0
	}
	d.exchange()
}

func (d *Driver) exchange() {
	d.transport.Exchange(d.tx[:], d.rx[:])
	pkt := proto.Decode(d.rx[:])
	if pkt == nil {
		// Empty response or garbage; silently no message this exchange.
		return
	}
	glog.V(4).Infof("link: recv cmd=0x%02X len=%d", pkt.Cmd, len(pkt.Data))
	if d.dispatch != nil {
		d.dispatch(pkt)
	}
}
