package main

import (
	"context"

	"github.com/scott-cotton/cli"
	"github.com/syogandev/go-observable/cmd/obs/commands"
)

func main() {
	cli.MainContext(context.Background(), commands.Root())
}
