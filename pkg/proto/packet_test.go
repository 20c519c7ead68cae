package proto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{},
		{0x42},
		[]byte("hello"),
		bytes.Repeat([]byte{0xA5}, MaxDataSize),
	}
	for _, data := range payloads {
		var buf [ExchangeSize]byte
		EncodeInto(buf[:], CmdPing, data)
		pkt := Decode(buf[:])
		require.NotNil(t, pkt)
		require.Equal(t, CmdPing, pkt.Cmd)
		require.Equal(t, len(data), len(pkt.Data))
		require.Equal(t, append([]byte(nil), data...), append([]byte(nil), pkt.Data...))
	}
}

func TestEncodeHeader(t *testing.T) {
	var buf [ExchangeSize]byte
	EncodeInto(buf[:], CmdWifiConnect, []byte{3, 'a', 'b', 'c'})
	require.Equal(t, []byte{SyncByte1, SyncByte2, CmdWifiConnect, 4, 3, 'a', 'b', 'c'}, buf[:8])
	for _, b := range buf[8:] {
		require.Equal(t, byte(0), b)
	}
}

func TestEncodeZeroFillsStaleBuffer(t *testing.T) {
	var buf [ExchangeSize]byte
	EncodeInto(buf[:], CmdHTTPGet, bytes.Repeat([]byte{0xFF}, MaxDataSize))
	EncodeInto(buf[:], CmdPing, nil)
	require.Equal(t, byte(0), buf[3])
	for _, b := range buf[HeaderSize:] {
		require.Equal(t, byte(0), b)
	}
}

func TestEncodePassThroughFramed(t *testing.T) {
	frame := []byte{SyncByte1, SyncByte2, CmdPing, 1, 0x7F}
	var buf [ExchangeSize]byte
	// Cmd argument must be ignored for pre-built frames.
	EncodeInto(buf[:], CmdWifiDisconnect, frame)
	require.Equal(t, frame, buf[:len(frame)])
	pkt := Decode(buf[:])
	require.NotNil(t, pkt)
	require.Equal(t, CmdPing, pkt.Cmd)
}

func TestDecodeRejectsBadSync(t *testing.T) {
	frames := [][]byte{
		nil,
		{},
		{SyncByte1},
		make([]byte, ExchangeSize),                      // all zero
		{0x55, 0xAA, CmdPing, 0},                        // swapped marker
		{SyncByte1, 0x00, CmdPing, 0},                   // half marker
		append([]byte{0x01, 0x02}, bytes.Repeat([]byte{0xFF}, 46)...),
	}
	for _, f := range frames {
		require.Nil(t, Decode(f))
	}
}

func TestDecodeClampsLength(t *testing.T) {
	// Length byte claims more than the buffer holds.
	buf := []byte{SyncByte1, SyncByte2, RspPong, 0xFF, 1, 2, 3}
	pkt := Decode(buf)
	require.NotNil(t, pkt)
	require.Equal(t, []byte{1, 2, 3}, pkt.Data)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	require.Nil(t, Decode([]byte{SyncByte1, SyncByte2, RspAck}))
}
