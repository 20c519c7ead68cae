package update

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robolink/netcop.go/pkg/proto"
	"github.com/robolink/netcop.go/pkg/session"
	"github.com/robolink/netcop.go/pkg/sim"
)

func newTestSession(peer *sim.Peer) *session.Session {
	s := session.New(peer, peer)
	s.Driver().BootDelay = 0
	s.Driver().ResetDelay = 0
	s.Begin()
	return s
}

func fastTimeouts() []Option {
	return []Option{
		WithReadyTimeout(500 * time.Millisecond),
		WithRebootTimeout(500 * time.Millisecond),
		WithWifiTimeout(500 * time.Millisecond),
		WithFlashStartTimeout(time.Second),
		WithValidateTimeout(500 * time.Millisecond),
		WithAckTimeout(500 * time.Millisecond),
	}
}

func TestRunUpdatesOutdatedFirmware(t *testing.T) {
	peer := sim.NewPeer()
	peer.AppVersion = sim.Version{1, 0, 0}
	peer.ServedVersion = sim.Version{1, 1, 0}
	s := newTestSession(peer)

	var statuses []string
	var fractions []float64
	opts := append(fastTimeouts(),
		WithExpectedVersion(session.Version{Major: 1, Minor: 1}),
		WithAccessPoint("ota-net", "secret"),
		WithKnownBSSID([6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}, 6),
		WithFirmwareURL("http://host/fw.bin"),
		WithStatusFunc(func(st string) { statuses = append(statuses, st) }),
		WithProgressFunc(func(f float64) { fractions = append(fractions, f) }),
	)
	u := New(s, opts...)

	require.Equal(t, OutcomeUpdated, u.Run())

	// The peer rebooted into the freshly flashed OTA slot.
	require.Equal(t, proto.PartitionOTA0, peer.Partition())
	require.Equal(t, proto.PartitionOTA0, s.Partition())
	require.Equal(t, session.Version{Major: 1, Minor: 1}, s.Version())

	require.NotEmpty(t, fractions)
	require.Equal(t, 1.0, fractions[len(fractions)-1])
	require.NotEmpty(t, statuses)
}

func TestRunSkipsWhenFirmwareCurrent(t *testing.T) {
	peer := sim.NewPeer()
	peer.AppVersion = sim.Version{1, 1, 0}
	s := newTestSession(peer)

	u := New(s, append(fastTimeouts(),
		WithExpectedVersion(session.Version{Major: 1, Minor: 1}),
		WithFirmwareURL("http://host/fw.bin"),
	)...)

	require.Equal(t, OutcomeCurrent, u.Run())
	// No factory reset happened; the peer is still on its original boot.
	require.Equal(t, proto.PartitionOTA0, peer.Partition())
}

func TestRunFallsBackWithoutNetwork(t *testing.T) {
	peer := sim.NewPeer()
	peer.AppVersion = sim.Version{1, 0, 0}
	peer.WifiAvailable = false
	s := newTestSession(peer)

	u := New(s, append(fastTimeouts(),
		WithExpectedVersion(session.Version{Major: 1, Minor: 1}),
		WithAccessPoint("ota-net", "secret"),
		WithFirmwareURL("http://host/fw.bin"),
	)...)

	require.Equal(t, OutcomeSkipped, u.Run())

	// The existing firmware keeps running untouched.
	require.Equal(t, proto.PartitionOTA0, peer.Partition())
	require.Equal(t, session.Version{Major: 1}, s.Version())
}

func TestRunResetsEvenAfterValidationFailure(t *testing.T) {
	peer := sim.NewPeer()
	peer.AppVersion = sim.Version{1, 0, 0}
	peer.ServedVersion = sim.Version{1, 1, 0}
	// Swallow validation requests so the wait times out.
	peer.Hook = func(p *sim.Peer, cmd byte, data []byte) bool {
		return cmd == proto.CmdValidatePartition && p.Partition() == proto.PartitionFactory
	}
	s := newTestSession(peer)

	var statuses []string
	u := New(s, append(fastTimeouts(),
		WithExpectedVersion(session.Version{Major: 1, Minor: 1}),
		WithAccessPoint("ota-net", "secret"),
		WithFirmwareURL("http://host/fw.bin"),
		WithStatusFunc(func(st string) { statuses = append(statuses, st) }),
	)...)

	require.Equal(t, OutcomeIncomplete, u.Run())

	// The final reset is unconditional: the peer rebooted and answers from
	// its configured boot partition despite the failed validation.
	require.Equal(t, proto.PartitionOTA0, peer.Partition())
	require.False(t, s.Version().IsZero())

	joined := strings.Join(statuses, "\n")
	require.Contains(t, joined, "validation failed")
	require.Contains(t, joined, "Rebooting peer...")
}

func TestRunUpdatesFromFactoryPartitionWithoutReset(t *testing.T) {
	peer := sim.NewPeer()
	peer.AppVersion = sim.Version{1, 0, 0}
	peer.ServedVersion = sim.Version{1, 1, 0}
	s := newTestSession(peer)

	// Boot the peer into the updater first, like a power cycle after an
	// earlier interrupted update.
	s.Reset(true)
	require.True(t, s.WaitForReady(500*time.Millisecond))
	require.Equal(t, proto.PartitionFactory, s.Partition())

	var statuses []string
	u := New(s, append(fastTimeouts(),
		WithExpectedVersion(session.Version{Major: 1, Minor: 1}),
		WithAccessPoint("ota-net", "secret"),
		WithFirmwareURL("http://host/fw.bin"),
		WithStatusFunc(func(st string) { statuses = append(statuses, st) }),
	)...)

	require.Equal(t, OutcomeUpdated, u.Run())
	require.Equal(t, session.Version{Major: 1, Minor: 1}, s.Version())

	// Already on the updater: no factory-reset step in the flow.
	require.NotContains(t, strings.Join(statuses, "\n"), "Rebooting peer into updater")
}
