// Package fw exposes the firmware update orchestrator over the shell.
package fw

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robolink/netcop.go/pkg/cli/sh"
	"github.com/robolink/netcop.go/pkg/update"
)

// UpdateCmd runs the full firmware update flow against the attached peer.
var UpdateCmd = ishell.Cmd{
	Name:    "update",
	Aliases: []string{"up"},
	Help:    "URL [EXPECTED_VERSION]",
	Func: sh.MustBeAttached(func(c *ishell.Context) {
		if len(c.Args) < 1 {
			c.Err(fmt.Errorf("URL required"))
			return
		}
		s := sh.ShellFrom(c)
		pub := s.Publisher()

		opts := []update.Option{
			update.WithFirmwareURL(c.Args[0]),
			update.WithStatusFunc(func(status string) {
				c.Println(status)
				if pub != nil {
					pub.PublishStatus(status)
				}
			}),
			update.WithProgressFunc(func(fraction float64) {
				c.Printf("  %d%%\n", int(fraction*100))
				if pub != nil {
					pub.PublishProgress(fraction)
				}
			}),
		}
		if ssid, pass := s.UpdateNetwork(); ssid != "" {
			opts = append(opts, update.WithAccessPoint(ssid, pass))
		}
		if len(c.Args) > 1 {
			expected, err := sh.ParseVersion(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			opts = append(opts, update.WithExpectedVersion(expected))
		}

		outcome := update.New(s.Sess, opts...).Run()
		c.Printf("outcome: %s, firmware %s\n", outcome, s.Sess.Version())
	}),
}

func init() {
	sh.AddCmds(&UpdateCmd)
}
