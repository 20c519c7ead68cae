// Package sh provides the ishell backed interactive shell for driving a
// network coprocessor, real or simulated.
package sh

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robolink/netcop.go/pkg/blelog"
	"github.com/robolink/netcop.go/pkg/link"
	"github.com/robolink/netcop.go/pkg/rcs"
	"github.com/robolink/netcop.go/pkg/sched"
	"github.com/robolink/netcop.go/pkg/session"
	"github.com/robolink/netcop.go/pkg/sim"
	"github.com/robolink/netcop.go/pkg/telemetry"
)

const (
	shellKey         = "$shell"
	unattachedPrompt = "[none] > "
)

// pollIntervalMs is how often the background scheduler arms a deferred poll.
const pollIntervalMs = 50

var (
	// flags

	evalOnly   bool
	baudRate   int
	brokerURL  string
	updateSSID string
	updatePass string
	rcsSSID    string
	rcsPass    string
	rcsServer  string

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.IntVar(&baudRate, "baud", 115200, "Baud rate for serial transports.")
	flag.StringVar(&brokerURL, "broker", "", "MQTT broker URL for telemetry, e.g. mqtt://host:1883/bench/cop-3.")
	flag.StringVar(&updateSSID, "update-ssid", "", "Firmware update access point SSID.")
	flag.StringVar(&updatePass, "update-pass", "", "Firmware update access point password.")
	flag.StringVar(&rcsSSID, "rcs-ssid", "", "Region network SSID.")
	flag.StringVar(&rcsPass, "rcs-pass", "", "Region network password.")
	flag.StringVar(&rcsServer, "rcs-server", "192.168.1.1", "Region server IPv4 address.")
}

// AddCmds is used by other command providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// Shell provides the ishell backed interactive shell.
type Shell struct {
	Interactive bool

	Shell *ishell.Shell

	// Attached peer stack, nil until a connect command runs.
	Sess   *session.Session
	Peer   *sim.Peer // non-nil when attached to the simulator
	Logger *blelog.Logger
	RCS    *rcs.Client
	Pub    *telemetry.Publisher

	sched *sched.Scheduler
	poll  *sched.PollService
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unattachedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeAttached wraps a command func that requires an attached peer.
func MustBeAttached(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Sess == nil {
			c.Err(fmt.Errorf("not attached, run connect first"))
			return
		}
		fn(c)
	}
}

// AttachSim attaches the shell to an in-process simulated peer.
func (s *Shell) AttachSim() {
	peer := sim.NewPeer()
	sess := session.New(peer, peer)
	sess.Driver().BootDelay = 0
	sess.Driver().ResetDelay = 0
	s.attach(sess, "sim")
	s.Peer = peer
}

// AttachSerial attaches the shell to a peer reachable through a serial
// bridge.
func (s *Shell) AttachSerial(port string, baud int) error {
	t, err := link.OpenSerial(port, baud)
	if err != nil {
		return err
	}
	s.attach(session.New(t, link.NopPins{}), port)
	return nil
}

func (s *Shell) attach(sess *session.Session, name string) {
	s.Detach()
	s.Sess = sess
	s.Logger = blelog.New(sess)
	s.RCS = rcs.New(sess, s.RCSOptions()...)

	// A background tick schedule arms a deferred poll flag which the
	// session's wait loops drain, bounding notification latency while
	// a command is blocked waiting on something else.
	s.sched = sched.New(sched.NewIntervalTimer())
	s.poll = sched.NewPollService(s.sched, sched.MsToTicks(pollIntervalMs), sess.Poll)
	sess.SetServicer(s.poll)
	s.poll.Start()

	sess.Begin()
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", name))
}

// Detach powers the attached peer off and releases it.
func (s *Shell) Detach() {
	if s.Sess == nil {
		return
	}
	if s.poll != nil {
		s.poll.Stop()
	}
	s.Sess.Driver().PowerOff()
	s.Sess = nil
	s.Peer = nil
	s.Logger = nil
	s.RCS = nil
	s.sched = nil
	s.poll = nil
	s.Shell.SetPrompt(unattachedPrompt)
}

// Publisher lazily connects the telemetry publisher if a broker was
// configured, and returns nil otherwise.
func (s *Shell) Publisher() *telemetry.Publisher {
	if s.Pub != nil || brokerURL == "" {
		return s.Pub
	}
	pub, err := telemetry.NewPublisher(brokerURL)
	if err != nil {
		glog.Errorf("sh: bad broker URL: %v", err)
		return nil
	}
	if err = pub.Connect(); err != nil {
		glog.Errorf("sh: broker connect: %v", err)
		return nil
	}
	s.Pub = pub
	return s.Pub
}

// RCSOptions returns the flag-configured base options for a region client.
func (s *Shell) RCSOptions() []rcs.Option {
	return []rcs.Option{
		rcs.WithNetwork(rcsSSID, rcsPass),
		rcs.WithServer(ParseIPv4(rcsServer)),
	}
}

// UpdateNetwork returns the configured update access point credentials.
func (s *Shell) UpdateNetwork() (ssid, pass string) {
	return updateSSID, updatePass
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// ParseIPv4 parses a dotted quad, returning the zero address on garbage.
func ParseIPv4(str string) (ip [4]byte) {
	parts := strings.Split(str, ".")
	if len(parts) != 4 {
		return [4]byte{}
	}
	for n, part := range parts {
		v, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return [4]byte{}
		}
		ip[n] = byte(v)
	}
	return
}

// ParseVersion parses a dotted MAJOR.MINOR.PATCH string.
func ParseVersion(str string) (v session.Version, err error) {
	parts := strings.Split(str, ".")
	if len(parts) != 3 {
		return v, fmt.Errorf("version must be MAJOR.MINOR.PATCH, got %q", str)
	}
	fields := []*byte{&v.Major, &v.Minor, &v.Patch}
	for n, part := range parts {
		val, perr := strconv.ParseUint(part, 10, 8)
		if perr != nil {
			return v, fmt.Errorf("bad version component %q", part)
		}
		*fields[n] = byte(val)
	}
	return v, nil
}

var (
	// ConnectCmd attaches the shell to a peer.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "sim | serial PORT",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("target required: sim | serial PORT"))
				return
			}
			switch c.Args[0] {
			case "sim":
				s.AttachSim()
			case "serial":
				if len(c.Args) < 2 {
					c.Err(fmt.Errorf("PORT required"))
					return
				}
				if err := s.AttachSerial(c.Args[1], baudRate); err != nil {
					c.Err(err)
					return
				}
			default:
				c.Err(fmt.Errorf("unknown target %q", c.Args[0]))
			}
		},
	}

	// DisconnectCmd detaches the shell from the current peer.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Detach()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New().Run(flag.Args()...)
}
