package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/idilsaglam/itemdesk/internal/cli"
	"github.com/idilsaglam/itemdesk/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		ui.Fail(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}
