// Package link drives the coprocessor over the exchange transport.
package link

// The transport is a polled, half-duplex, fixed-size exchange: every call
// moves exactly one 48-byte buffer in each direction, whether or not either
// side has anything to say. There is no data-ready signal from the peer, so
// the only way to observe an unsolicited notification is to have performed
// some recent exchange; the driver's Poll exists for exactly that.
//
// Transport failures are unobservable at this layer. Send and Poll always
// succeed once the driver is constructed; whether a command actually took
// effect is judged one layer up, from the session state the reply dispatch
// mutates.
