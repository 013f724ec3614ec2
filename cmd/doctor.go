package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/todo-go/internal/exitcode"
	"github.com/nibzard/todo-go/internal/export"
	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/todo"
)

// doctorCommand checks config, storage reachability and stored list
// validity. The exit code reflects the most serious failure.
func (a *app) doctorCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	ok, err := a.parseSubFlags(fs, args)
	if !ok {
		return err
	}
	if fs.NArg() > 0 {
		return exitcode.Userf("unexpected arguments: %v", fs.Args())
	}

	w := a.stdout
	cfg := a.cfg
	code := exitcode.Success
	fail := func(c int) {
		code = max(code, c)
	}

	fmt.Fprintln(w, "Todo Doctor")
	fmt.Fprintln(w, "===========")
	fmt.Fprintln(w)

	// Check config
	fmt.Fprintln(w, "Config:")
	if len(a.cws.Files) == 0 {
		fmt.Fprintln(w, "  ✅ No config files (defaults, environment and flags)")
	}
	for _, f := range a.cws.Files {
		fmt.Fprintf(w, "  ✅ Read %s\n", f)
	}
	for _, warning := range a.cws.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	configErr := cfg.Validate()
	if configErr != nil {
		for _, e := range unjoin(configErr) {
			fmt.Fprintf(w, "  ❌ %v\n", e)
		}
		fail(exitcode.ConfigError)
	} else {
		fmt.Fprintln(w, "  ✅ Valid")
	}
	fmt.Fprintln(w)

	// Check schema
	validator, warnings := todo.NewValidator(cfg.SchemaFile)
	fmt.Fprintf(w, "Schema: %s\n", validator.Source())
	for _, warning := range warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	if len(warnings) == 0 {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	// Check storage
	fmt.Fprintf(w, "Storage: %s\n", storageLocation(a))
	if configErr != nil {
		fmt.Fprintln(w, "  ⚠️  Skipped (invalid config)")
		fmt.Fprintln(w)
	} else {
		fail(a.checkStorage(ctx, validator, *verbose))
	}

	// Check log file
	if cfg.LogFile != "" {
		fmt.Fprintf(w, "Log file: %s\n", cfg.LogFile)
		if info, err := os.Stat(cfg.LogFile); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(w, "  ⚠️  Not found (created on first write)")
			} else {
				fmt.Fprintf(w, "  ❌ Error: %v\n", err)
				fail(exitcode.ConfigError)
			}
		} else if info.IsDir() {
			fmt.Fprintln(w, "  ❌ Error: path is a directory")
			fail(exitcode.ConfigError)
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
		fmt.Fprintln(w)
	}

	// Overall status
	if code == exitcode.Success {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return exitcode.New(code, errors.New("doctor checks failed"))
}

// checkStorage opens the backend and validates the stored value. It
// returns the exit code for what it found.
func (a *app) checkStorage(ctx context.Context, validator *todo.Validator, verbose bool) int {
	w := a.stdout
	defer fmt.Fprintln(w)

	kvs, err := kv.Open(ctx, kv.Options{
		Backend: a.cfg.StorageBackend,
		DataDir: a.cfg.DataDir,
		DSN:     a.cfg.MySQLDSN,
	})
	if err != nil {
		fmt.Fprintf(w, "  ❌ Unreachable: %v\n", err)
		return exitcode.StorageError
	}
	defer kvs.Close()
	fmt.Fprintln(w, "  ✅ Reachable")

	value, found, err := kvs.Get(ctx, a.cfg.StorageKey)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Read %q: %v\n", a.cfg.StorageKey, err)
		return exitcode.StorageError
	}
	if !found {
		fmt.Fprintf(w, "  ⚠️  No tasks stored under %q yet\n", a.cfg.StorageKey)
		return exitcode.Success
	}

	if errs := validator.Validate([]byte(value)); len(errs) > 0 {
		fmt.Fprintf(w, "  ❌ Stored list %q is invalid:\n", a.cfg.StorageKey)
		for _, e := range errs {
			fmt.Fprintf(w, "     - %v\n", e)
		}
		fmt.Fprintln(w, "     The list loads as empty and is overwritten by the next change.")
		return exitcode.StorageError
	}

	l, err := validator.Decode([]byte(value))
	if err != nil {
		fmt.Fprintf(w, "  ❌ Decode: %v\n", err)
		return exitcode.StorageError
	}
	active, completed := l.Counts()
	fmt.Fprintf(w, "  ✅ Valid: %d tasks (%d open, %d done)\n", len(l), active, completed)
	if verbose {
		for i, t := range l {
			fmt.Fprintf(w, "  %s  (%s)\n", export.Line(i+1, t), t.ID)
		}
	}
	return exitcode.Success
}

func storageLocation(a *app) string {
	switch a.cfg.StorageBackend {
	case kv.BackendFile:
		return fmt.Sprintf("file %s", filepath.Join(a.cfg.DataDir, a.cfg.StorageKey+".json"))
	case kv.BackendSQLite:
		return fmt.Sprintf("sqlite %s", filepath.Join(a.cfg.DataDir, kv.SQLiteFile))
	case kv.BackendMySQL:
		return fmt.Sprintf("mysql %s", a.cfg.Value("mysql_dsn"))
	}
	return a.cfg.StorageBackend
}

// unjoin splits an errors.Join result back into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
