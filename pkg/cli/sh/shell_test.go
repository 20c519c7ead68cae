package sh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robolink/netcop.go/pkg/session"
)

func TestParseIPv4(t *testing.T) {
	require.Equal(t, [4]byte{192, 168, 1, 1}, ParseIPv4("192.168.1.1"))
	require.Equal(t, [4]byte{}, ParseIPv4("192.168.1"))
	require.Equal(t, [4]byte{}, ParseIPv4("192.168.1.999"))
	require.Equal(t, [4]byte{}, ParseIPv4("not-an-ip"))
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("1.2.3")
	require.NoError(t, err)
	require.Equal(t, session.Version{Major: 1, Minor: 2, Patch: 3}, v)

	_, err = ParseVersion("1.2")
	require.Error(t, err)
	_, err = ParseVersion("1.2.x")
	require.Error(t, err)
}

func TestAttachSimBootsPeer(t *testing.T) {
	s := New()
	require.Nil(t, s.Sess)

	s.AttachSim()
	require.NotNil(t, s.Sess)
	require.NotNil(t, s.Peer)
	require.True(t, s.Sess.WaitForReady(time.Second))

	s.Detach()
	require.Nil(t, s.Sess)
}
