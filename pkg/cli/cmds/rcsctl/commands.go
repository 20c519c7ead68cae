// Package rcsctl exposes region communication over the shell.
package rcsctl

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robolink/netcop.go/pkg/cli/sh"
	"github.com/robolink/netcop.go/pkg/rcs"
)

var (
	// ConnectCmd joins the region network and starts region communication.
	ConnectCmd = ishell.Cmd{
		Name: "rcs.connect",
		Help: "REGION(A-H) [TEAMKEY]",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			if len(c.Args) < 1 || len(c.Args[0]) != 1 {
				c.Err(fmt.Errorf("REGION letter required"))
				return
			}
			s := sh.ShellFrom(c)
			opts := s.RCSOptions()
			if len(c.Args) > 1 {
				opts = append(opts, rcs.WithTeamKey(c.Args[1]))
			}
			client := rcs.New(s.Sess, opts...)
			client.OnKill(func() {
				c.Println("KILL received from region server")
			})
			if pub := s.Publisher(); pub != nil {
				client.OnData(pub.PublishRCS)
			}
			if err := client.Connect(c.Args[0][0]); err != nil {
				c.Err(err)
				return
			}
			s.RCS = client
			c.Printf("region %c connected\n", client.Region())
		}),
	}

	// StatusCmd prints the latest region payload.
	StatusCmd = ishell.Cmd{
		Name: "rcs.status",
		Help: "",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			if !s.RCS.Connected() {
				c.Println("not connected")
				return
			}
			// Give a queued data notification a chance to land.
			s.Sess.Poll()
			c.Printf("region: %c (course %d)\n", s.RCS.Region(), s.RCS.CourseIndex())
			p, ok := s.RCS.Latest()
			if !ok {
				c.Println("no match data yet")
				return
			}
			c.Printf("lever: %d flipped=%v window=%v time=%ds kill=%v\n",
				p.CorrectLever, p.LeverFlipped, s.RCS.IsWindowOpen(), p.MatchTime, p.Kill)
		}),
	}

	// DisconnectCmd stops region communication.
	DisconnectCmd = ishell.Cmd{
		Name: "rcs.disconnect",
		Help: "",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			sh.ShellFrom(c).RCS.Disconnect()
		}),
	}
)

func init() {
	sh.AddCmds(
		&ConnectCmd,
		&StatusCmd,
		&DisconnectCmd,
	)
}
