package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robolink/netcop.go/pkg/cli/sh"
	"github.com/robolink/netcop.go/pkg/proto"
	"github.com/robolink/netcop.go/pkg/session"
)

func partitionName(p byte) string {
	switch p {
	case proto.PartitionFactory:
		return "factory"
	case proto.PartitionOTA0:
		return "ota0"
	case session.PartitionUnknown:
		return "unknown"
	}
	return fmt.Sprintf("0x%02X", p)
}

func bleStateName(s byte) string {
	switch s {
	case proto.BLEStateOff:
		return "off"
	case proto.BLEStateAdvertising:
		return "advertising"
	case proto.BLEStateConnected:
		return "connected"
	}
	return fmt.Sprintf("0x%02X", s)
}

var debugLevels = map[string]byte{
	"off":     proto.DebugLevelOff,
	"error":   proto.DebugLevelError,
	"warning": proto.DebugLevelWarning,
	"info":    proto.DebugLevelInfo,
	"verbose": proto.DebugLevelVerbose,
}

var (
	// PingCmd pings the peer and reports its firmware version.
	PingCmd = ishell.Cmd{
		Name:    "ping",
		Aliases: []string{"p"},
		Help:    "",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			if !s.Sess.WaitForReady(time.Second) {
				c.Err(fmt.Errorf("no pong"))
				return
			}
			c.Printf("firmware %s on %s\n",
				s.Sess.Version(), partitionName(s.Sess.Partition()))
		}),
	}

	// StatusCmd summarizes everything the session has learned from the peer.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			c.Printf("firmware:  %s\n", s.Sess.Version())
			c.Printf("partition: %s\n", partitionName(s.Sess.Partition()))
			c.Printf("wifi:      connected=%v\n", s.Sess.IsConnected())
			c.Printf("rcs:       connected=%v\n", s.Sess.IsRCSConnected())
			c.Printf("ble:       %s\n", bleStateName(s.Sess.BLEState()))
			if s.Sess.IsFlashing() {
				c.Printf("flash:     %d%%\n", int(s.Sess.FlashProgress()*100))
			}
			if code, cmd, ok := s.Sess.LastError(); ok {
				c.Printf("error:     code=0x%02X cmd=0x%02X\n", code, cmd)
			}
		}),
	}

	// ResetCmd power-cycles the peer.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "[factory]",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			factory := len(c.Args) > 0 && c.Args[0] == "factory"
			s.Sess.Reset(factory)
			if !s.Sess.WaitForReady(2 * time.Second) {
				c.Err(fmt.Errorf("peer did not come back after reset"))
				return
			}
			c.Printf("firmware %s on %s\n",
				s.Sess.Version(), partitionName(s.Sess.Partition()))
		}),
	}

	// DebugCmd sets the peer debug verbosity.
	DebugCmd = ishell.Cmd{
		Name: "debug",
		Help: "off|error|warning|info|verbose",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("LEVEL required"))
				return
			}
			level, ok := debugLevels[c.Args[0]]
			if !ok {
				v, err := strconv.ParseUint(c.Args[0], 0, 8)
				if err != nil {
					c.Err(fmt.Errorf("unknown level %q", c.Args[0]))
					return
				}
				level = byte(v)
			}
			sh.ShellFrom(c).Sess.SetDebugLevel(level)
		}),
	}

	// PollCmd runs empty exchanges to surface queued notifications.
	PollCmd = ishell.Cmd{
		Name: "poll",
		Help: "[COUNT]",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			count := 1
			if len(c.Args) > 0 {
				v, err := strconv.Atoi(c.Args[0])
				if err != nil || v < 1 {
					c.Err(fmt.Errorf("invalid COUNT %q", c.Args[0]))
					return
				}
				count = v
			}
			s := sh.ShellFrom(c)
			for n := 0; n < count; n++ {
				s.Sess.Poll()
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&PingCmd,
		&StatusCmd,
		&ResetCmd,
		&DebugCmd,
		&PollCmd,
	)
}
