// Package rcs implements the region-communication client. The peer keeps a
// UDP conversation with the region server; the host sees the server's state
// as payload notifications decoded here.
package rcs

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robolink/netcop.go/pkg/proto"
	"github.com/robolink/netcop.go/pkg/session"
)

// Region letters span 'A' through 'H'.
const (
	RegionMin = byte('A')
	RegionMax = byte('H')
)

// Config holds the client configuration.
type Config struct {
	// SSID and Password identify the region network, distinct from the
	// update network.
	SSID     string
	Password string

	// ServerIP is the region server address the peer talks to.
	ServerIP [4]byte

	// TeamKey identifies the robot to the server. Longer keys are
	// truncated by the session layer.
	TeamKey string

	// WifiTimeout and AckTimeout bound the connect handshake.
	WifiTimeout time.Duration
	AckTimeout  time.Duration
}

func defaultConfig() Config {
	return Config{
		WifiTimeout: 10 * time.Second,
		AckTimeout:  3 * time.Second,
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithNetwork sets the region network credentials.
func WithNetwork(ssid, password string) Option {
	return func(c *Config) {
		c.SSID = ssid
		c.Password = password
	}
}

// WithServer sets the region server address.
func WithServer(ip [4]byte) Option {
	return func(c *Config) {
		c.ServerIP = ip
	}
}

// WithTeamKey sets the robot's identification key.
func WithTeamKey(key string) Option {
	return func(c *Config) {
		c.TeamKey = key
	}
}

// WithWifiTimeout bounds the network join during Connect.
func WithWifiTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WifiTimeout = d
	}
}

// WithAckTimeout bounds the connect acknowledgment wait.
func WithAckTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.AckTimeout = d
	}
}

// Payload is one decoded server update.
type Payload struct {
	// CorrectLever is the objective lever index: 0 left, 1 middle, 2 right.
	CorrectLever int
	// LeverFlipped reports whether the objective lever has been flipped.
	LeverFlipped bool
	// DualSlider is the raw dual-slider state.
	DualSlider byte
	// MatchTime is the remaining match time in seconds.
	MatchTime int
	// Kill is the server-side kill switch.
	Kill bool
}

// windowOpenSlider is the dual-slider state meaning the window objective is
// open.
const windowOpenSlider = 2

// KillFunc is invoked once per payload that carries the kill flag. Kill
// preempts everything; the handler must act immediately.
type KillFunc func()

// DataFunc observes every decoded payload, after the client state has been
// updated from it.
type DataFunc func(p Payload)

// Client decodes region server updates and exposes the latest state.
type Client struct {
	sess *session.Session
	cfg  Config

	mu      sync.RWMutex
	region  byte
	hasData bool
	last    Payload
	onKill  KillFunc
	onData  DataFunc
}

// New creates a Client over sess. Connect must be called before any getter
// carries data.
func New(sess *session.Session, opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{sess: sess, cfg: cfg}
}

// OnData registers the payload observer. The client registers itself as the
// session's data func on Connect, so anything else interested in payloads
// (telemetry, displays) observes them through here.
func (c *Client) OnData(fn DataFunc) {
	c.mu.Lock()
	c.onData = fn
	c.mu.Unlock()
}

// OnKill registers the kill-switch handler.
func (c *Client) OnKill(fn KillFunc) {
	c.mu.Lock()
	c.onKill = fn
	c.mu.Unlock()
}

// Connect joins the region network and starts region communication for the
// given region letter.
func (c *Client) Connect(region byte) error {
	if region < RegionMin || region > RegionMax {
		return fmt.Errorf("rcs: invalid region %q", region)
	}

	glog.Infof("rcs: joining network %q", c.cfg.SSID)
	c.sess.ConnectWifi(c.cfg.SSID, c.cfg.Password)
	if !c.sess.WaitForWifiConnect(c.cfg.WifiTimeout) {
		return fmt.Errorf("rcs: failed to join network %q", c.cfg.SSID)
	}

	c.sess.SetRCSDataFunc(c.handleData)

	glog.Infof("rcs: connecting region %c", region)
	c.sess.ConnectRCS(region, c.cfg.ServerIP, c.cfg.TeamKey)
	if !c.sess.WaitForAck(proto.CmdRCSConnect, c.cfg.AckTimeout) {
		return fmt.Errorf("rcs: peer did not acknowledge connect for region %c", region)
	}

	c.mu.Lock()
	c.region = region
	c.mu.Unlock()
	return nil
}

// Disconnect stops region communication. The network association is kept.
func (c *Client) Disconnect() {
	c.sess.DisconnectRCS()
	c.mu.Lock()
	c.region = 0
	c.hasData = false
	c.mu.Unlock()
}

// Connected reports whether the peer holds a server conversation.
func (c *Client) Connected() bool {
	return c.sess.IsRCSConnected()
}

// Region returns the connected region letter, or 0.
func (c *Client) Region() byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.region
}

// CourseIndex returns the zero-based index of the connected region.
func (c *Client) CourseIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.region - RegionMin)
}

// Latest returns the most recent server payload. ok is false until the
// first update arrives.
func (c *Client) Latest() (p Payload, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.hasData
}

// Lever returns the objective lever index from the latest update.
func (c *Client) Lever() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last.CorrectLever
}

// IsLeverFlipped reports whether the objective lever has been flipped.
func (c *Client) IsLeverFlipped() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last.LeverFlipped
}

// IsWindowOpen reports whether the window objective is open.
func (c *Client) IsWindowOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last.DualSlider == windowOpenSlider
}

// MatchTime returns the remaining match time in seconds.
func (c *Client) MatchTime() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last.MatchTime
}

// handleData decodes one server payload:
//
//	[0] objective lever (0 left, 1 middle, 2 right)
//	[1] lever flipped
//	[2] dual slider state
//	[3] match time remaining, seconds
//	[4] kill switch
//
// An optional position block may follow; it is not decoded here.
func (c *Client) handleData(data []byte) {
	if len(data) < 5 {
		return
	}
	p := Payload{
		CorrectLever: int(data[0]),
		LeverFlipped: data[1] == 1,
		DualSlider:   data[2],
		MatchTime:    int(data[3]),
		Kill:         data[4] == 1,
	}

	c.mu.Lock()
	c.last = p
	c.hasData = true
	kill := c.onKill
	observe := c.onData
	c.mu.Unlock()

	if p.Kill && kill != nil {
		glog.Warning("rcs: kill switch asserted")
		kill()
	}
	if observe != nil {
		observe(p)
	}
}
