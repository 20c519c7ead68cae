package update

import (
	"time"

	"github.com/robolink/netcop.go/pkg/session"
)

// StatusFunc receives human-readable progress text at each step, suitable
// for a display or a telemetry channel.
type StatusFunc func(status string)

// ProgressFunc receives the flash completion fraction in [0, 1].
type ProgressFunc func(fraction float64)

// Config holds the orchestrator configuration.
type Config struct {
	// Expected is the firmware version the host was built against. A peer
	// running anything older, or not running from the OTA slot, gets
	// updated.
	Expected session.Version

	// SSID and Password identify the update access point.
	SSID     string
	Password string

	// BSSID and Channel, when set via WithKnownBSSID, let the peer join
	// without scanning.
	BSSID       [6]byte
	Channel     byte
	FastConnect bool

	// FirmwareURL is where the updater fetches the image.
	FirmwareURL string

	// Status and Progress are optional reporting callbacks.
	Status   StatusFunc
	Progress ProgressFunc

	// Per-step timeouts.
	ReadyTimeout      time.Duration
	RebootTimeout     time.Duration
	WifiTimeout       time.Duration
	FlashStartTimeout time.Duration
	ValidateTimeout   time.Duration
	AckTimeout        time.Duration
}

func defaultConfig() Config {
	return Config{
		ReadyTimeout:      time.Second,
		RebootTimeout:     2 * time.Second,
		WifiTimeout:       5 * time.Second,
		FlashStartTimeout: 10 * time.Second,
		ValidateTimeout:   5 * time.Second,
		AckTimeout:        time.Second,
	}
}

// Option is a functional option for configuring the Updater.
type Option func(*Config)

// WithExpectedVersion sets the firmware version the peer must meet.
func WithExpectedVersion(v session.Version) Option {
	return func(c *Config) {
		c.Expected = v
	}
}

// WithAccessPoint sets the update network credentials.
func WithAccessPoint(ssid, password string) Option {
	return func(c *Config) {
		c.SSID = ssid
		c.Password = password
	}
}

// WithKnownBSSID enables fast joining using the access point's BSSID and
// channel, skipping the scan.
func WithKnownBSSID(bssid [6]byte, channel byte) Option {
	return func(c *Config) {
		c.BSSID = bssid
		c.Channel = channel
		c.FastConnect = true
	}
}

// WithFirmwareURL sets where the updater fetches the image from.
func WithFirmwareURL(url string) Option {
	return func(c *Config) {
		c.FirmwareURL = url
	}
}

// WithStatusFunc sets the per-step status text callback.
func WithStatusFunc(fn StatusFunc) Option {
	return func(c *Config) {
		c.Status = fn
	}
}

// WithProgressFunc sets the flash progress callback.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = fn
	}
}

// WithReadyTimeout sets how long the initial liveness probe waits.
func WithReadyTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ReadyTimeout = d
	}
}

// WithRebootTimeout sets how long to wait for the peer after a reset.
func WithRebootTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.RebootTimeout = d
	}
}

// WithWifiTimeout sets how long a join attempt may take.
func WithWifiTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WifiTimeout = d
	}
}

// WithFlashStartTimeout sets how long to wait for first flash progress.
func WithFlashStartTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.FlashStartTimeout = d
	}
}

// WithValidateTimeout sets how long partition validation may take.
func WithValidateTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ValidateTimeout = d
	}
}

// WithAckTimeout sets how long to wait for command acknowledgments.
func WithAckTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.AckTimeout = d
	}
}
