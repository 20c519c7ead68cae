package main

import (
	"github.com/robolink/netcop.go/pkg/cli/sh"

	_ "github.com/robolink/netcop.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
