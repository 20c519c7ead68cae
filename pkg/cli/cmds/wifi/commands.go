package wifi

import (
	"fmt"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robolink/netcop.go/pkg/cli/sh"
	"github.com/robolink/netcop.go/pkg/proto"
	"github.com/robolink/netcop.go/pkg/session"
)

const (
	joinTimeout = 10 * time.Second
	scanTimeout = 8 * time.Second
)

func encryptionName(e byte) string {
	switch e {
	case proto.WifiEncryptionOpen:
		return "open"
	case proto.WifiEncryptionWEP:
		return "wep"
	case proto.WifiEncryptionWPAPSK:
		return "wpa-psk"
	case proto.WifiEncryptionWPA2PSK:
		return "wpa2-psk"
	case proto.WifiEncryptionWPAWPA2PSK:
		return "wpa/wpa2-psk"
	}
	return fmt.Sprintf("0x%02X", e)
}

var (
	// JoinCmd joins a network.
	JoinCmd = ishell.Cmd{
		Name:    "wifi.join",
		Aliases: []string{"wj"},
		Help:    "SSID [PASSWORD]",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("SSID required"))
				return
			}
			var pass string
			if len(c.Args) > 1 {
				pass = c.Args[1]
			}
			s := sh.ShellFrom(c)
			if !s.Sess.ConnectWifi(c.Args[0], pass) {
				c.Err(fmt.Errorf("join not sent, credentials too long?"))
				return
			}
			if !s.Sess.WaitForWifiConnect(joinTimeout) {
				c.Err(fmt.Errorf("join %q failed", c.Args[0]))
				return
			}
			c.Println("connected")
		}),
	}

	// LeaveCmd drops the current association.
	LeaveCmd = ishell.Cmd{
		Name:    "wifi.leave",
		Aliases: []string{"wl"},
		Help:    "",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			s.Sess.DisconnectWifi()
			s.Sess.Poll()
		}),
	}

	// StatusCmd queries the association state.
	StatusCmd = ishell.Cmd{
		Name:    "wifi.status",
		Aliases: []string{"ws"},
		Help:    "",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			if !s.Sess.QueryWifiStatus() {
				c.Err(fmt.Errorf("status query not sent"))
				return
			}
			deadline := time.Now().Add(time.Second)
			for time.Now().Before(deadline) {
				s.Sess.Poll()
				if state, ok := s.Sess.WifiStatus(); ok {
					switch state {
					case proto.WifiStateConnected:
						c.Println("connected")
					case proto.WifiStateConnecting:
						c.Println("connecting")
					default:
						c.Println("disconnected")
					}
					return
				}
				time.Sleep(session.PollInterval)
			}
			c.Err(fmt.Errorf("no status reply"))
		}),
	}

	// ScanCmd scans for networks and prints every result.
	ScanCmd = ishell.Cmd{
		Name: "wifi.scan",
		Help: "[hidden] [active]",
		Func: sh.MustBeAttached(func(c *ishell.Context) {
			options := proto.WifiScanOptionNone
			for _, arg := range c.Args {
				switch arg {
				case "hidden":
					options |= proto.WifiScanOptionShowHidden
				case "active":
					options |= proto.WifiScanOptionActiveScan
				default:
					c.Err(fmt.Errorf("unknown option %q", arg))
					return
				}
			}
			s := sh.ShellFrom(c)
			found := 0
			s.Sess.SetScanResultFunc(func(r session.ScanResult) {
				found++
				c.Printf("%-16s ch%-2d %4ddBm %s\n",
					r.SSID, r.Channel, r.RSSI, encryptionName(r.Encryption))
			})
			defer s.Sess.SetScanResultFunc(nil)
			if !s.Sess.ScanWifi(options) {
				c.Err(fmt.Errorf("scan not sent"))
				return
			}
			if !s.Sess.WaitForScanDone(scanTimeout) {
				c.Err(fmt.Errorf("scan did not finish"))
				return
			}
			c.Printf("%d network(s)\n", found)
		}),
	}
)

func init() {
	sh.AddCmds(
		&JoinCmd,
		&LeaveCmd,
		&StatusCmd,
		&ScanCmd,
	)
}
