package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/exitcode"
)

// configCommand prints the effective config with the source of each
// value, or an example file with "config example".
func (a *app) configCommand(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "example":
			fmt.Fprint(a.stdout, config.ExampleConfig())
			return nil
		default:
			return exitcode.Userf("config: unknown argument %q (want: example)", args[0])
		}
	}

	if f := a.cws.GetConfigFile(); f != "" {
		fmt.Fprintf(a.stdout, "Config files: %v\n\n", a.cws.Files)
	} else {
		fmt.Fprintln(a.stdout, "Config files: none")
		fmt.Fprintln(a.stdout)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE\tSOURCE")
	for _, name := range config.FieldNames() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, a.cfg.Value(name), a.cws.Sources[name])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, w := range a.cws.Warnings {
		fmt.Fprintf(a.stderr, "warning: %s\n", w)
	}
	if err := a.cfg.Validate(); err != nil {
		return exitcode.Config(fmt.Errorf("invalid config: %w", err))
	}
	return nil
}
