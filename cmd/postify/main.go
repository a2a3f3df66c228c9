package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/postify/internal/cmd"
	"github.com/felixgeelhaar/postify/internal/exitcode"
	"github.com/felixgeelhaar/postify/internal/tui"
)

func main() {
	// Create a context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled")
			exitcode.Exit(exitcode.Cancelled)
		}

		styles := tui.StylesFor(os.Getenv("NO_COLOR") != "")
		fmt.Fprintln(os.Stderr, tui.RenderError(styles, err))
		exitcode.ExitWithError(err)
	}
	exitcode.Exit(exitcode.Success)
}
