package blelog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robolink/netcop.go/pkg/proto"
	"github.com/robolink/netcop.go/pkg/session"
	"github.com/robolink/netcop.go/pkg/sim"
)

func newTestLogger(peer *sim.Peer) (*Logger, *session.Session) {
	s := session.New(peer, peer)
	s.Driver().BootDelay = 0
	s.Driver().ResetDelay = 0
	s.Begin()
	return New(s), s
}

func TestEnableBLESetsNameBeforeStart(t *testing.T) {
	peer := sim.NewPeer()
	var order []byte
	peer.Hook = func(p *sim.Peer, cmd byte, data []byte) bool {
		if cmd == proto.CmdBLESetName || cmd == proto.CmdBLEStart {
			order = append(order, cmd)
		}
		return false
	}
	l, _ := newTestLogger(peer)

	require.True(t, l.EnableBLE("bench-42"))
	require.True(t, l.IsBLEEnabled())
	require.Equal(t, []byte{proto.CmdBLESetName, proto.CmdBLEStart}, order)
	require.Equal(t, "bench-42", peer.BLEName())
}

func TestEnableBLEWithoutNameSkipsSetName(t *testing.T) {
	peer := sim.NewPeer()
	var order []byte
	peer.Hook = func(p *sim.Peer, cmd byte, data []byte) bool {
		order = append(order, cmd)
		return false
	}
	l, _ := newTestLogger(peer)

	require.True(t, l.EnableBLE(""))
	require.Equal(t, []byte{proto.CmdBLEStart}, order)
}

func TestPrintChunksLongLines(t *testing.T) {
	peer := sim.NewPeer()
	l, _ := newTestLogger(peer)
	require.True(t, l.EnableBLE(""))

	l.Print("0123456789012345678901234567890123456789") // 40 bytes
	logs := peer.BLELogs()
	require.Equal(t, []string{
		"01234567890123456789012345678901",
		"23456789",
	}, logs)
}

func TestPrintEchoes(t *testing.T) {
	peer := sim.NewPeer()
	l, _ := newTestLogger(peer)

	var buf bytes.Buffer
	l.SetEcho(&buf)
	l.Printf("pose x=%.1f", 1.5)
	require.Equal(t, "pose x=1.5\n", buf.String())
	require.Empty(t, peer.BLELogs())
}

func TestDefaultDeviceName(t *testing.T) {
	name := DefaultDeviceName()
	require.NotEmpty(t, name)
	require.True(t, len(name) <= session.MaxBLENameLen, "name %q too long", name)
}
