// Package all pulls in every shell command provider.
package all

import (
	_ "github.com/robolink/netcop.go/pkg/cli/cmds/ble"
	_ "github.com/robolink/netcop.go/pkg/cli/cmds/core"
	_ "github.com/robolink/netcop.go/pkg/cli/cmds/fw"
	_ "github.com/robolink/netcop.go/pkg/cli/cmds/rcsctl"
	_ "github.com/robolink/netcop.go/pkg/cli/cmds/web"
	_ "github.com/robolink/netcop.go/pkg/cli/cmds/wifi"
)
