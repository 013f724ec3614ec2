package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/todo-go/internal/exitcode"
	"github.com/nibzard/todo-go/internal/export"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/todo"
)

// listCommand prints the numbered listing. Row numbers always refer to the
// unfiltered list so they can be passed to done, rm and edit.
func (a *app) listCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo list", flag.ContinueOnError)
	all := fs.Bool("all", false, "Show every task (default)")
	open := fs.Bool("open", false, "Show only open tasks")
	done := fs.Bool("done", false, "Show only completed tasks")
	ok, err := a.parseSubFlags(fs, args)
	if !ok {
		return err
	}
	if fs.NArg() > 0 {
		return exitcode.Userf("unexpected arguments: %v", fs.Args())
	}

	filter := todo.FilterAll
	switch {
	case *open && *done, *all && (*open || *done):
		return exitcode.Userf("--all, --open and --done are mutually exclusive")
	case *open:
		filter = todo.FilterActive
	case *done:
		filter = todo.FilterCompleted
	}

	return a.withStore(ctx, false, func(s *store.Store) error {
		printList(a, s.Snapshot(), filter)
		return nil
	})
}

func printList(a *app, l todo.List, filter todo.Filter) {
	shown := 0
	for i, t := range l {
		if !filter.Match(t) {
			continue
		}
		fmt.Fprintln(a.stdout, export.Line(i+1, t))
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(a.stdout, "no tasks found")
	}
}

// addCommand adds one task from the joined arguments and prints its id.
func (a *app) addCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo add", flag.ContinueOnError)
	ok, err := a.parseSubFlags(fs, args)
	if !ok {
		return err
	}
	if fs.NArg() == 0 {
		return exitcode.Userf("add: missing task text")
	}
	text := strings.Join(fs.Args(), " ")

	return a.withStore(ctx, true, func(s *store.Store) error {
		t, err := s.Add(text)
		if err != nil {
			return mutationError(err)
		}
		fmt.Fprintln(a.stdout, t.ID)
		return nil
	})
}

// toggleCommand flips completion of the referenced task.
func (a *app) toggleCommand(ctx context.Context, args []string) error {
	ref, _, err := refArgs("done", args, false)
	if err != nil {
		return err
	}
	return a.withStore(ctx, true, func(s *store.Store) error {
		t, found := resolveRef(s.Snapshot(), ref)
		if !found {
			return exitcode.Userf("no task %q", ref)
		}
		t, found = s.ToggleCompletion(t.ID)
		if !found {
			return exitcode.Userf("no task %q", ref)
		}
		a.confirm("%s %s", export.Checkbox(t), t.Text)
		return nil
	})
}

// deleteCommand removes the referenced task. An unknown ref is not an
// error: deleting is idempotent.
func (a *app) deleteCommand(ctx context.Context, args []string) error {
	ref, _, err := refArgs("rm", args, false)
	if err != nil {
		return err
	}
	return a.withStore(ctx, true, func(s *store.Store) error {
		t, found := resolveRef(s.Snapshot(), ref)
		if !found || !s.Delete(t.ID) {
			fmt.Fprintf(a.stderr, "no task %q, nothing deleted\n", ref)
			return nil
		}
		a.confirm("deleted %s", t.Text)
		return nil
	})
}

// editCommand replaces the text of the referenced task.
func (a *app) editCommand(ctx context.Context, args []string) error {
	ref, rest, err := refArgs("edit", args, true)
	if err != nil {
		return err
	}
	text := strings.Join(rest, " ")

	return a.withStore(ctx, true, func(s *store.Store) error {
		t, found := resolveRef(s.Snapshot(), ref)
		if !found {
			return exitcode.Userf("no task %q", ref)
		}
		edited, found, err := s.Edit(t.ID, text)
		if err != nil {
			return mutationError(err)
		}
		if !found {
			return exitcode.Userf("no task %q", ref)
		}
		a.confirm("%s %s", export.Checkbox(edited), edited.Text)
		return nil
	})
}

// refArgs splits a <ref> [text...] argument list.
func refArgs(cmd string, args []string, wantText bool) (string, []string, error) {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		return "", nil, exitcode.Userf("%s: missing task reference", cmd)
	}
	ref, rest := args[0], args[1:]
	if wantText && len(rest) == 0 {
		return "", nil, exitcode.Userf("%s: missing task text", cmd)
	}
	if !wantText && len(rest) > 0 {
		return "", nil, exitcode.Userf("unexpected arguments: %v", rest)
	}
	return ref, rest, nil
}

// resolveRef finds a task by 1-based row number or by id. A number that is
// in range is a row; anything else is looked up as an id.
func resolveRef(l todo.List, ref string) (todo.Task, bool) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(l) {
		return l[n-1], true
	}
	return l.Get(ref)
}

// mutationError maps store errors to exit codes.
func mutationError(err error) error {
	if errors.Is(err, store.ErrEmptyText) {
		return exitcode.User(err)
	}
	var perr *store.PersistenceError
	if errors.As(err, &perr) || errors.Is(err, store.ErrClosed) {
		return exitcode.Storage(err)
	}
	return exitcode.User(err)
}
