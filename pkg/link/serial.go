package link

import (
	"io"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	"github.com/robolink/netcop.go/pkg/proto"
)

// SerialTransport adapts a byte-stream bridge (e.g. a USB adapter in front of
// the peer's exchange bus) to the fixed-size Transport contract. Each
// exchange writes the full tx buffer and then reads exactly the same number
// of bytes back; the bridge on the far side pairs the two halves into one
// bus transaction.
type SerialTransport struct {
	port io.ReadWriteCloser
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int) (*SerialTransport, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, err
	}
	return &SerialTransport{port: port}, nil
}

// Exchange implements Transport. Bridge errors are invisible to callers by
// contract: on a short or failed read the rx buffer is left zeroed, which
// upper layers treat as "peer had nothing to say".
func (t *SerialTransport) Exchange(tx, rx []byte) {
	for i := range rx {
		rx[i] = 0
	}
	if _, err := t.port.Write(tx[:proto.ExchangeSize]); err != nil {
		glog.Warningf("link: bridge write: %v", err)
		return
	}
	if _, err := io.ReadFull(t.port, rx[:proto.ExchangeSize]); err != nil {
		glog.V(4).Infof("link: bridge read: %v", err)
	}
}

// Close closes the underlying port.
func (t *SerialTransport) Close() error {
	return t.port.Close()
}
