package ble

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robolink/netcop.go/pkg/blelog"
	"github.com/robolink/netcop.go/pkg/cli/sh"
)

var (
	// StartCmd starts BLE advertising with the log service.
	StartCmd = ishell.Cmd{
		Name: "ble.start",
		Help: "[NAME]",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			name := blelog.DefaultDeviceName()
			if len(c.Args) > 0 {
				name = c.Args[0]
			}
			s := sh.ShellFrom(c)
			if !s.Logger.EnableBLE(name) {
				c.Err(fmt.Errorf("BLE start failed"))
				return
			}
			c.Printf("advertising as %q\n", name)
		}),
	}

	// StopCmd shuts the BLE service down.
	StopCmd = ishell.Cmd{
		Name: "ble.stop",
		Help: "",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			sh.ShellFrom(c).Logger.DisableBLE()
		}),
	}

	// LogCmd sends one log line over BLE.
	LogCmd = ishell.Cmd{
		Name: "ble.log",
		Help: "MESSAGE...",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("MESSAGE required"))
				return
			}
			sh.ShellFrom(c).Logger.Print(strings.Join(c.Args, " "))
		}),
	}
)

func init() {
	sh.AddCmds(
		&StartCmd,
		&StopCmd,
		&LogCmd,
	)
}
