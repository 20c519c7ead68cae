// Package proto defines the host/coprocessor wire protocol.
package proto

// The coprocessor speaks one fixed framing in both directions:
//
//	[SYNC:0xAA][SYNC:0x55][CMD:1][LENGTH:1][DATA:0-41]
//
// carried inside a fixed-size 48-byte exchange buffer whose trailing bytes
// are zero. Two command profiles share this framing: the minimal updater
// profile served by the factory partition, and the full application profile
// served by the OTA partition. Request ids occupy 0x01-0x7F; responses and
// notifications occupy 0x80-0xFF.
//
// This package is purely structural. It never validates payload contents
// against per-command expectations; that is the session layer's job.
//
// Producer/Consumer: both ends of the coprocessor link.
