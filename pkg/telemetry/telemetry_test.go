package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientOptionsFromURL(t *testing.T) {
	opts, prefix, err := ClientOptionsFromURL("mqtt://user:pw@broker:1883/robots/bench-3?client-id=netsh")
	require.NoError(t, err)
	require.Equal(t, "robots/bench-3", prefix)
	require.Len(t, opts.Servers, 1)
	require.Equal(t, "tcp://broker:1883", opts.Servers[0].String())
	require.Equal(t, "user", opts.Username)
	require.Equal(t, "pw", opts.Password)
	require.Equal(t, "netsh", opts.ClientID)
}

func TestClientOptionsFromURLDefaults(t *testing.T) {
	opts, prefix, err := ClientOptionsFromURL("tcp://broker:1883")
	require.NoError(t, err)
	require.Empty(t, prefix)
	require.Len(t, opts.Servers, 1)
	require.Equal(t, "tcp://broker:1883", opts.Servers[0].String())
}

func TestTopicJoinsUnderPrefix(t *testing.T) {
	p := &Publisher{TopicPrefix: "robots/bench-3"}
	require.Equal(t, "robots/bench-3/update/status", p.Topic("update", "status"))

	bare := &Publisher{}
	require.Equal(t, "rcs/state", bare.Topic("rcs", "state"))
}
