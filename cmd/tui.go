package cmd

import (
	"context"
	"flag"

	"github.com/nibzard/todo-go/internal/exitcode"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/ui"
)

// tuiCommand launches the TUI over the configured store. Pending writes
// are flushed when the program exits.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo tui", flag.ContinueOnError)
	animate := fs.Bool("animate", a.cfg.UI.Animate, "Pulse the add button when a task is added")
	ok, err := a.parseSubFlags(fs, args)
	if !ok {
		return err
	}
	if fs.NArg() > 0 {
		return exitcode.Userf("unexpected arguments: %v", fs.Args())
	}
	if !ui.IsTTY(a.stdout) {
		return exitcode.Userf("tui requires a TTY")
	}

	return a.withStore(ctx, true, func(s *store.Store) error {
		return ui.RunTUI(ctx, s,
			ui.WithPulse(a.cfg.Pulse()),
			ui.WithAnimate(*animate),
			ui.WithLogger(a.logger),
		)
	})
}
