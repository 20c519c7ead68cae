package link

// Transport performs one synchronous fixed-size exchange with the peer.
type Transport interface {
	// Exchange clocks tx out and fills rx in a single transaction. Both
	// slices are proto.ExchangeSize bytes. An all-zero tx is a valid poll.
	// Callers serialize calls; no exchange interleaves with another.
	Exchange(tx, rx []byte)
}

// ControlPins drives the discrete peer control lines.
type ControlPins interface {
	// SetEnable asserts or releases the peer power-enable line.
	SetEnable(on bool)
	// SetFactorySelect asserts or releases the boot-select line that forces
	// the peer into its factory partition on the next power-up.
	SetFactorySelect(on bool)
}

// NopPins is a ControlPins for transports with no control lines attached,
// e.g. a bench bridge wired to an always-on peer.
type NopPins struct{}

// SetEnable implements ControlPins.
func (NopPins) SetEnable(bool) {}

// SetFactorySelect implements ControlPins.
func (NopPins) SetFactorySelect(bool) {}
