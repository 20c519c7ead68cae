// Package blelog is a logging facade over the peer's BLE log service: lines
// go out over BLE to a subscribed laptop, optionally echoed to a local
// writer.
package blelog

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robolink/netcop.go/pkg/proto"
	"github.com/robolink/netcop.go/pkg/session"
)

// DefaultAckTimeout bounds the set-name acknowledgment during EnableBLE.
const DefaultAckTimeout = 5 * time.Second

// startSettle gives the peer a moment to re-enter its transport service
// loop between the set-name acknowledgment and the start command.
const startSettle = 20 * time.Millisecond

// DefaultDeviceName derives a stable advertising name from the host machine
// id, so two bench setups in the same room do not collide.
func DefaultDeviceName() string {
	id, err := machineid.ProtectedID("netcop")
	if err != nil || len(id) < 6 {
		return "netcop"
	}
	return "netcop-" + id[:6]
}

// Logger fans pre-formatted log lines out to BLE and an optional echo
// writer.
type Logger struct {
	sess *session.Session

	mu   sync.Mutex
	echo io.Writer
	ble  bool
}

// New creates a Logger over sess with no outputs enabled.
func New(sess *session.Session) *Logger {
	return &Logger{sess: sess}
}

// SetEcho enables local echo to w; nil disables it.
func (l *Logger) SetEcho(w io.Writer) {
	l.mu.Lock()
	l.echo = w
	l.mu.Unlock()
}

// EnableBLE names the BLE service and starts advertising. The name must be
// acknowledged before the start command goes out, or the peer would
// advertise under its previous name.
func (l *Logger) EnableBLE(deviceName string) bool {
	if deviceName != "" {
		if !l.sess.SetBLEName(deviceName) {
			return false
		}
		if !l.sess.WaitForAck(proto.CmdBLESetName, DefaultAckTimeout) {
			glog.Warning("blelog: set-name not acknowledged")
			return false
		}
	}
	time.Sleep(startSettle)
	if !l.sess.StartBLE() {
		return false
	}
	l.mu.Lock()
	l.ble = true
	l.mu.Unlock()
	return true
}

// DisableBLE shuts the BLE service down.
func (l *Logger) DisableBLE() bool {
	l.mu.Lock()
	l.ble = false
	l.mu.Unlock()
	return l.sess.StopBLE()
}

// IsBLEEnabled reports whether lines are being sent over BLE.
func (l *Logger) IsBLEEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ble
}

// Printf formats and sends one log line.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.Print(fmt.Sprintf(format, args...))
}

// Print sends one pre-formatted log line. Lines longer than the BLE payload
// limit are split into consecutive chunks.
func (l *Logger) Print(msg string) {
	l.mu.Lock()
	echo, ble := l.echo, l.ble
	l.mu.Unlock()

	if echo != nil {
		fmt.Fprintln(echo, msg)
	}
	if !ble {
		return
	}
	for len(msg) > 0 {
		chunk := msg
		if len(chunk) > session.MaxBLELogLen {
			chunk = chunk[:session.MaxBLELogLen]
		}
		msg = msg[len(chunk):]
		l.sess.SendBLELog(chunk)
	}
}
