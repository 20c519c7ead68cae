package rcs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robolink/netcop.go/pkg/proto"
	"github.com/robolink/netcop.go/pkg/session"
	"github.com/robolink/netcop.go/pkg/sim"
)

func newTestClient(t *testing.T, peer *sim.Peer, opts ...Option) (*Client, *session.Session) {
	t.Helper()
	s := session.New(peer, peer)
	s.Driver().BootDelay = 0
	s.Driver().ResetDelay = 0
	s.Begin()
	base := []Option{
		WithNetwork("course-net", "secret"),
		WithServer([4]byte{192, 168, 1, 1}),
		WithTeamKey("teamkey42"),
		WithWifiTimeout(500 * time.Millisecond),
		WithAckTimeout(500 * time.Millisecond),
	}
	return New(s, append(base, opts...)...), s
}

// drain polls until every queued peer reply has been delivered; replies
// surface one exchange after the command that produced them.
func drain(s *session.Session, peer *sim.Peer) {
	for i := 0; i < 16 && peer.PendingReplies() > 0; i++ {
		s.Poll()
	}
}

func TestConnectRejectsInvalidRegion(t *testing.T) {
	c, _ := newTestClient(t, sim.NewPeer())
	require.Error(t, c.Connect('I'))
	require.Error(t, c.Connect('a'))
	require.Error(t, c.Connect(0))
}

func TestConnectHandshake(t *testing.T) {
	peer := sim.NewPeer()
	var connectPayload []byte
	peer.Hook = func(p *sim.Peer, cmd byte, data []byte) bool {
		if cmd == proto.CmdRCSConnect && p.Partition() == proto.PartitionOTA0 {
			connectPayload = append([]byte(nil), data...)
		}
		return false
	}
	c, s := newTestClient(t, peer)

	require.NoError(t, c.Connect('C'))
	drain(s, peer)
	require.True(t, c.Connected())
	require.Equal(t, byte('C'), c.Region())
	require.Equal(t, 2, c.CourseIndex())
	require.True(t, s.IsConnected())

	// [region][4-byte IP][keyLen][key], key capped at 9 bytes.
	want := []byte{'C', 192, 168, 1, 1, 9}
	want = append(want, "teamkey42"...)
	require.Equal(t, want, connectPayload)
}

func TestConnectFailsWithoutNetwork(t *testing.T) {
	peer := sim.NewPeer()
	peer.WifiAvailable = false
	c, _ := newTestClient(t, peer)
	require.Error(t, c.Connect('A'))
}

func TestPayloadDecode(t *testing.T) {
	peer := sim.NewPeer()
	c, s := newTestClient(t, peer)
	require.NoError(t, c.Connect('A'))
	drain(s, peer)

	_, ok := c.Latest()
	require.False(t, ok)

	peer.QueueRCSData([]byte{2, 1, 2, 87, 0})
	s.Poll()

	p, ok := c.Latest()
	require.True(t, ok)
	require.Equal(t, Payload{CorrectLever: 2, LeverFlipped: true, DualSlider: 2, MatchTime: 87}, p)
	require.Equal(t, 2, c.Lever())
	require.True(t, c.IsLeverFlipped())
	require.True(t, c.IsWindowOpen())
	require.Equal(t, 87, c.MatchTime())
}

func TestShortPayloadIgnored(t *testing.T) {
	peer := sim.NewPeer()
	c, s := newTestClient(t, peer)
	require.NoError(t, c.Connect('A'))
	drain(s, peer)

	peer.QueueRCSData([]byte{1, 1})
	s.Poll()
	_, ok := c.Latest()
	require.False(t, ok)
}

func TestKillSwitchInvokesHandler(t *testing.T) {
	peer := sim.NewPeer()
	c, s := newTestClient(t, peer)

	killed := 0
	c.OnKill(func() { killed++ })
	require.NoError(t, c.Connect('A'))
	drain(s, peer)

	peer.QueueRCSData([]byte{0, 0, 0, 30, 1})
	s.Poll()
	require.Equal(t, 1, killed)

	p, ok := c.Latest()
	require.True(t, ok)
	require.True(t, p.Kill)
}

func TestDisconnectClearsState(t *testing.T) {
	peer := sim.NewPeer()
	c, s := newTestClient(t, peer)
	require.NoError(t, c.Connect('B'))
	drain(s, peer)

	peer.QueueRCSData([]byte{0, 0, 0, 30, 0})
	s.Poll()

	c.Disconnect()
	drain(s, peer)
	require.False(t, c.Connected())
	require.Zero(t, c.Region())
	_, ok := c.Latest()
	require.False(t, ok)
}

func TestDataObserverSurvivesConnect(t *testing.T) {
	peer := sim.NewPeer()
	c, s := newTestClient(t, peer)

	var seen []Payload
	c.OnData(func(p Payload) { seen = append(seen, p) })
	require.NoError(t, c.Connect('A'))
	drain(s, peer)

	peer.QueueRCSData([]byte{1, 0, 1, 42, 0})
	s.Poll()

	require.Len(t, seen, 1)
	require.Equal(t, Payload{CorrectLever: 1, DualSlider: 1, MatchTime: 42}, seen[0])

	// Registration order must not matter either.
	c.OnData(func(p Payload) { seen = append(seen, p) })
	peer.QueueRCSData([]byte{0, 1, 2, 41, 0})
	s.Poll()
	require.Len(t, seen, 2)
}
