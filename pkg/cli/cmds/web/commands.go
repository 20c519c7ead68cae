package web

import (
	"fmt"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robolink/netcop.go/pkg/cli/sh"
)

const fetchTimeout = 5 * time.Second

// GetCmd fetches a small file over the peer's HTTP client.
var GetCmd = ishell.Cmd{
	Name:    "http.get",
	Aliases: []string{"get"},
	Help:    "URL",
	Func: sh.MustBeAttached(func(c *ishell.Context) {
		if len(c.Args) < 1 {
			c.Err(fmt.Errorf("URL required"))
			return
		}
		s := sh.ShellFrom(c)
		if !s.Sess.HTTPGet(c.Args[0]) {
			c.Err(fmt.Errorf("request not sent, URL too long?"))
			return
		}
		body, ok := s.Sess.WaitForHTTPData(fetchTimeout)
		if !ok {
			if code, cmd, seen := s.Sess.LastError(); seen {
				s.Sess.ClearLastError()
				c.Err(fmt.Errorf("fetch failed: code=0x%02X cmd=0x%02X", code, cmd))
				return
			}
			c.Err(fmt.Errorf("no reply"))
			return
		}
		c.Printf("%d byte(s): %q\n", len(body), body)
	}),
}

func init() {
	sh.AddCmds(&GetCmd)
}
