// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/exitcode"
	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/todo"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries what every command needs. Command output goes to stdout;
// logs, notes and usage go to stderr.
type app struct {
	stdout io.Writer
	stderr io.Writer
	cws    *config.ConfigWithSources
	cfg    *config.Config
	logger *log.Logger
}

// Run executes the todo CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		var ferr *config.FlagError
		if errors.As(err, &ferr) {
			return exitcode.User(err)
		}
		return exitcode.Config(fmt.Errorf("loading config: %w", err))
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}

	a := &app{stdout: stdout, stderr: stderr, cws: cws, cfg: cws.Config}
	if *showVersion {
		return a.versionCommand()
	}

	// Determine the subcommand; list is the default
	subcommand := "list"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	// Commands that never touch storage
	switch subcommand {
	case "version":
		return a.versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	case "config":
		return a.configCommand(remainingArgs)
	case "completion":
		return a.completionCommand(remainingArgs)
	}

	closeLog, err := a.setupLogging()
	if err != nil {
		return exitcode.Config(fmt.Errorf("opening log file: %w", err))
	}
	defer closeLog()
	for _, w := range cws.Warnings {
		a.logger.Warn(w)
	}

	switch subcommand {
	case "list", "ls":
		return a.listCommand(ctx, remainingArgs)
	case "add":
		return a.addCommand(ctx, remainingArgs)
	case "done", "toggle":
		return a.toggleCommand(ctx, remainingArgs)
	case "rm", "delete":
		return a.deleteCommand(ctx, remainingArgs)
	case "edit":
		return a.editCommand(ctx, remainingArgs)
	case "export":
		return a.exportCommand(ctx, remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(ctx, remainingArgs)
	case "logs":
		return a.logsCommand(ctx, remainingArgs)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return exitcode.Userf("unknown command: %s", subcommand)
	}
}

// setupLogging builds the process logger from config. The returned
// function closes the log file, if one was opened.
func (a *app) setupLogging() (func(), error) {
	opts := logging.DefaultOptions()
	opts.Level = logging.ParseLevel(a.cfg.LogLevel)
	opts.Formatter = logging.ParseFormatter(a.cfg.LogFormat)
	opts.ReportTimestamp = a.cfg.LogTimestamps
	opts.ReportCaller = a.cfg.LogCaller

	logger, closeFn, err := logging.Setup(a.cfg.LogFile, a.stderr, opts)
	if err != nil {
		return func() {}, err
	}
	a.logger = logger
	return func() { _ = closeFn() }, nil
}

// session is an opened store and the backend under it.
type session struct {
	store *store.Store
	kv    kv.Store
}

// close drains pending writes, then releases the backend.
func (s *session) close(ctx context.Context) error {
	err := s.store.Close(context.WithoutCancel(ctx))
	return errors.Join(err, s.kv.Close())
}

// openStore validates config, opens the backend and loads the list.
// Undecodable stored data is logged and treated as an empty list.
func (a *app) openStore(ctx context.Context) (*session, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, exitcode.Config(fmt.Errorf("invalid config: %w", err))
	}

	ids, err := todo.NewIDGenerator(a.cfg.IDScheme)
	if err != nil {
		return nil, exitcode.Config(err)
	}
	validator, warnings := todo.NewValidator(a.cfg.SchemaFile)
	for _, w := range warnings {
		a.logger.Warn(w)
	}

	kvs, err := kv.Open(ctx, kv.Options{
		Backend: a.cfg.StorageBackend,
		DataDir: a.cfg.DataDir,
		DSN:     a.cfg.MySQLDSN,
	})
	if err != nil {
		return nil, exitcode.Storage(fmt.Errorf("opening %s storage: %w", a.cfg.StorageBackend, err))
	}

	s := store.New(kvs,
		store.WithKey(a.cfg.StorageKey),
		store.WithIDGenerator(ids),
		store.WithValidator(validator),
		store.WithLogger(a.logger),
		store.WithAllowEmptyEdit(a.cfg.AllowEmptyEdit),
		store.WithWriteTimeout(a.cfg.WriteTimeout()),
	)
	sess := &session{store: s, kv: kvs}

	if err := s.Load(ctx); err != nil {
		var perr *store.PersistenceError
		if errors.As(err, &perr) {
			_ = sess.close(ctx)
			return nil, exitcode.Storage(fmt.Errorf("loading tasks: %w", err))
		}
		// Malformed data: the store already logged it and starts empty.
	}
	return sess, nil
}

// withStore runs fn over an opened store and closes it afterwards. When
// mutate is set the pending write is flushed before returning, so the
// change has landed by the time the process exits.
func (a *app) withStore(ctx context.Context, mutate bool, fn func(*store.Store) error) error {
	sess, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	runErr := fn(sess.store)
	if mutate && runErr == nil {
		if err := sess.store.Flush(ctx); err != nil {
			runErr = exitcode.Storage(fmt.Errorf("saving tasks: %w", err))
		}
	}
	if err := sess.close(ctx); err != nil && runErr == nil {
		a.logger.Warn("closing storage", "err", err)
	}
	return runErr
}

// confirm prints a confirmation line unless --quiet is set.
func (a *app) confirm(format string, args ...any) {
	if a.cfg.Quiet {
		return
	}
	fmt.Fprintf(a.stdout, format+"\n", args...)
}

// parseSubFlags parses a subcommand flag set, mapping bad flags to a
// user error and -h to a clean exit.
func (a *app) parseSubFlags(fs *flag.FlagSet, args []string) (bool, error) {
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, exitcode.User(err)
	}
	return true, nil
}

// versionCommand prints version information.
func (a *app) versionCommand() error {
	fmt.Fprintf(a.stdout, "todo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todo - a small, persistent to-do list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todo [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list, ls [--all|--open|--done]  List tasks (default command)")
	fmt.Fprintln(w, "  add <text...>                   Add a task and print its id")
	fmt.Fprintln(w, "  done, toggle <ref>              Toggle a task's completion")
	fmt.Fprintln(w, "  rm, delete <ref>                Delete a task")
	fmt.Fprintln(w, "  edit <ref> <text...>            Replace a task's text")
	fmt.Fprintln(w, "  export [--format f] [--out p]   Export as json, csv, pdf or text")
	fmt.Fprintln(w, "  tui                             Launch the terminal UI")
	fmt.Fprintln(w, "  doctor                          Check config, storage and stored data")
	fmt.Fprintln(w, "  config [example]                Show effective config and sources")
	fmt.Fprintln(w, "  logs [-n N] [-f]                Show the log file")
	fmt.Fprintln(w, "  completion <shell>              Print a shell completion script")
	fmt.Fprintln(w, "  version                         Show version")
	fmt.Fprintln(w, "  help                            Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A <ref> is a row number from list or a task id.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 usage or input error, 2 config error, 3 storage error.")
}
