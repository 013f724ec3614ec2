package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/exitcode"
	"github.com/nibzard/todo-go/internal/export"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/ui"
)

// exportCommand writes the list to stdout or a file. Without --format the
// format follows the --out extension, else json.
func (a *app) exportCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo export", flag.ContinueOnError)
	format := fs.String("format", "", "Output format (json, csv, pdf, text)")
	out := fs.String("out", "", "Write to this file instead of stdout")
	ok, err := a.parseSubFlags(fs, args)
	if !ok {
		return err
	}
	if fs.NArg() > 0 {
		return exitcode.Userf("unexpected arguments: %v", fs.Args())
	}

	path, err := config.ResolvePath(*out)
	if err != nil {
		return exitcode.User(fmt.Errorf("resolving output path: %w", err))
	}
	if *format == "" {
		*format = export.FormatJSON
		if path != "" {
			*format = export.FormatFromPath(path)
		}
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return exitcode.User(err)
	}
	if f == export.FormatPDF && path == "" && ui.IsTTY(a.stdout) {
		return exitcode.Userf("refusing to write pdf to a terminal, use --out")
	}

	return a.withStore(ctx, false, func(s *store.Store) error {
		l := s.Snapshot()
		if path == "" {
			return export.Write(a.stdout, l, f)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return exitcode.User(fmt.Errorf("creating output directory: %w", err))
		}
		file, err := os.Create(path)
		if err != nil {
			return exitcode.User(fmt.Errorf("creating %s: %w", path, err))
		}
		if err := export.Write(file, l, f); err != nil {
			_ = file.Close()
			return fmt.Errorf("exporting %s: %w", f, err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		a.logger.Debug("exported tasks", "format", f, "path", path, "count", len(l))
		a.confirm("exported %d tasks to %s", len(l), path)
		return nil
	})
}
