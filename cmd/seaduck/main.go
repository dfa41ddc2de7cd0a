package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/gear6io/seaduck/cli"
	"github.com/gear6io/seaduck/display"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	display.DisableStylingUnlessTerminal()
	d := display.New()
	ctx = display.WithDisplay(ctx, d)

	if err := cli.ExecuteWithContext(ctx, os.Args[1:]); err != nil {
		d.Error("%v", err)
		stop()
		os.Exit(1)
	}
}
