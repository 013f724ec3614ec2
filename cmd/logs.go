package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nibzard/todo-go/internal/exitcode"
	"github.com/nibzard/todo-go/internal/logging"
)

// logsCommand prints the configured log file.
func (a *app) logsCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo logs", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	ok, err := a.parseSubFlags(fs, args)
	if !ok {
		return err
	}

	path := a.cfg.LogFile
	if path == "" {
		fmt.Fprintln(a.stderr, "No log file configured (set log_file or --log-file).")
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(a.stderr, "No log file at %s yet.\n", path)
		return nil
	}
	if *follow {
		fmt.Fprintf(a.stderr, "Tailing: %s (Ctrl+C to stop)\n", path)
	}
	if err := logging.TailLog(ctx, a.stdout, path, *n, *follow); err != nil {
		return exitcode.User(err)
	}
	return nil
}
