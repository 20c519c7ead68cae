package update

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robolink/netcop.go/pkg/proto"
	"github.com/robolink/netcop.go/pkg/session"
)

// Outcome summarizes an update run.
type Outcome int

const (
	// OutcomeCurrent means the peer firmware already meets expectations.
	OutcomeCurrent Outcome = iota
	// OutcomeSkipped means an update is needed but the update network was
	// unreachable; the peer keeps its existing firmware.
	OutcomeSkipped
	// OutcomeUpdated means the flow completed with every step succeeding.
	OutcomeUpdated
	// OutcomeIncomplete means the flow ran to its final reset but at least
	// one step failed along the way.
	OutcomeIncomplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCurrent:
		return "current"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeUpdated:
		return "updated"
	case OutcomeIncomplete:
		return "incomplete"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Updater drives one firmware update flow over an established session.
type Updater struct {
	sess *session.Session
	cfg  Config
}

// New creates an Updater over sess.
func New(sess *session.Session, opts ...Option) *Updater {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Updater{sess: sess, cfg: cfg}
}

func (u *Updater) status(s string) {
	glog.Infof("update: %s", s)
	if u.cfg.Status != nil {
		u.cfg.Status(s)
	}
}

func (u *Updater) progress(f float64) {
	if u.cfg.Progress != nil {
		u.cfg.Progress(f)
	}
}

// connectAP starts a join to the update access point, fast when the BSSID is
// known.
func (u *Updater) connectAP() {
	if u.cfg.FastConnect {
		u.sess.ConnectWifiFast(u.cfg.SSID, u.cfg.Password, u.cfg.BSSID, u.cfg.Channel)
	} else {
		u.sess.ConnectWifi(u.cfg.SSID, u.cfg.Password)
	}
}

// Run executes the update flow and reports how it ended. The peer must
// already be powered on.
func (u *Updater) Run() Outcome {
	u.status("Contacting peer...")
	ready := u.sess.WaitForReady(u.cfg.ReadyTimeout)
	if ready {
		u.status(fmt.Sprintf("Peer v%s", u.sess.Version()))
	}

	if !u.sess.NeedsUpdate(u.cfg.Expected) {
		u.status(fmt.Sprintf("Firmware v%s is current", u.sess.Version()))
		return OutcomeCurrent
	}

	// An unreachable peer is handled like one stuck on the application
	// partition: the factory reset below is the recovery path either way.
	onUpdater := ready && u.sess.Partition() == proto.PartitionFactory

	u.status("Update needed, checking network...")
	u.connectAP()
	if !u.sess.WaitForWifiConnect(u.cfg.WifiTimeout) {
		// An update must never block startup indefinitely.
		u.status("Update network unavailable, keeping existing firmware")
		return OutcomeSkipped
	}

	incomplete := false

	if !onUpdater {
		// Only the factory partition runs the updater firmware, and the
		// network association does not survive the reset.
		u.status("Rebooting peer into updater...")
		u.sess.Reset(true)
		u.sess.WaitForReady(u.cfg.RebootTimeout)
		u.status(fmt.Sprintf("Updater v%s", u.sess.Version()))

		u.status("Joining update network...")
		u.connectAP()
		u.sess.WaitForWifiConnect(u.cfg.WifiTimeout)
		if !u.sess.IsConnected() {
			u.status("Network join failed")
			incomplete = true
		}
	}

	u.status("Downloading firmware...")
	u.sess.DownloadAndFlash(u.cfg.FirmwareURL)
	started := u.waitForFlashStart()
	if !started {
		u.status("Flash did not start")
		incomplete = true
	}
	// No deadline once flashing has started: a slow image download can
	// stall progress indefinitely, and the flow waits it out rather than
	// abandon a half-written slot.
	for started && u.sess.IsFlashing() {
		u.sess.Poll()
		f := u.sess.FlashProgress()
		u.progress(f)
		u.status(fmt.Sprintf("Flashing: %d%%", int(f*100)))
		time.Sleep(session.PollInterval)
	}
	if u.sess.HasFlashError() {
		u.status(fmt.Sprintf("Flash error 0x%02X", u.sess.FlashErrorCode()))
		incomplete = true
	} else if !u.sess.IsFlashComplete() {
		u.status("Flash incomplete")
		incomplete = true
	} else {
		u.progress(1)
	}

	u.status("Validating partition...")
	u.sess.ValidatePartition()
	if !u.sess.WaitForValidation(u.cfg.ValidateTimeout) {
		u.status("Partition validation failed")
		incomplete = true
	}

	u.sess.SetBootPartition(proto.PartitionOTA0)
	if !u.sess.WaitForAck(proto.CmdSetBootPartition, u.cfg.AckTimeout) {
		u.status("Set boot partition failed")
		incomplete = true
	}

	// The reset is unconditional: the boot selector is the safe default and
	// a wedged slot is recovered on the next power cycle.
	u.status("Rebooting peer...")
	u.sess.Reset(false)
	u.sess.WaitForReady(u.cfg.RebootTimeout)
	u.status(fmt.Sprintf("Peer ready v%s", u.sess.Version()))

	if incomplete {
		return OutcomeIncomplete
	}
	return OutcomeUpdated
}

// waitForFlashStart waits for the first nonzero progress report, which is
// how a stalled download shows up.
func (u *Updater) waitForFlashStart() bool {
	deadline := time.Now().Add(u.cfg.FlashStartTimeout)
	for time.Now().Before(deadline) {
		u.sess.Poll()
		if u.sess.FlashProgress() > 0 {
			return true
		}
		time.Sleep(session.PollInterval)
	}
	return false
}
