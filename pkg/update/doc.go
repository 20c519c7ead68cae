// Package update sequences the session layer into the full over-the-air
// firmware update flow: decide whether an update is needed, reach the update
// network, reboot into the updater partition when necessary, download and
// flash, validate, select the boot partition, and reboot.
//
// The orchestrator never retries a step and never aborts midway once the
// flash has begun; per-step failures are reported through the status
// callback and the flow runs to its final reset regardless, leaving the peer
// to sort out an unvalidated slot on the next boot. Restarting the whole
// flow is the caller's job.
package update
