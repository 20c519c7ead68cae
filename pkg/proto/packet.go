package proto

// Frame layout constants.
const (
	SyncByte1 byte = 0xAA
	SyncByte2 byte = 0x55

	SyncSize   = 2
	HeaderSize = 4
	// MaxDataSize is the largest payload a frame can carry.
	MaxDataSize = 41
	// MaxPacketSize is the largest frame on the wire.
	MaxPacketSize = HeaderSize + MaxDataSize
	// ExchangeSize is the fixed transport exchange size. The three bytes past
	// MaxPacketSize are padding and always zero.
	ExchangeSize = 48
)

// Packet is a decoded frame.
type Packet struct {
	Cmd  byte
	Data []byte
}

// IsFramed reports whether data already begins with the sync marker, i.e. it
// is a complete pre-built frame rather than a bare payload.
func IsFramed(data []byte) bool {
	return len(data) >= SyncSize && data[0] == SyncByte1 && data[1] == SyncByte2
}

// EncodeInto builds a frame for cmd with the given payload into buf and
// zero-fills the remainder. If data is itself a complete frame (detected by
// the leading sync marker) it is copied through verbatim, so pre-built frames
// can be forwarded unmodified. The caller guarantees len(data) <= MaxDataSize
// for bare payloads; anything longer is truncated to what buf can carry.
// buf must be at least HeaderSize bytes.
func EncodeInto(buf []byte, cmd byte, data []byte) {
	for i := range buf {
		buf[i] = 0
	}
	if IsFramed(data) {
		copy(buf, data)
		return
	}
	buf[0] = SyncByte1
	buf[1] = SyncByte2
	buf[2] = cmd
	buf[3] = byte(len(data))
	copy(buf[HeaderSize:], data)
}

// Decode parses buf as a frame. It returns nil unless buf begins with the
// sync marker; a frame that fails the sync check is not a packet, whatever
// the remaining bytes contain. The length byte is clamped to what buf can
// actually hold. The returned payload aliases buf.
func Decode(buf []byte) *Packet {
	if !IsFramed(buf) {
		return nil
	}
	if len(buf) < HeaderSize {
		return nil
	}
	n := int(buf[3])
	if max := len(buf) - HeaderSize; n > max {
		n = max
	}
	return &Packet{Cmd: buf[2], Data: buf[HeaderSize : HeaderSize+n]}
}
