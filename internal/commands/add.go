package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add and create commands.
type AddCmd struct {
	description string
	due         string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskdash add [common flags] [--description <text>] [--due YYYY-MM-DD] <title...>"
}
func (c *AddCmd) Requires() Requirement { return SessionRequired }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	due, err := parseDue(c.due)
	if err != nil {
		return printError(errOut, err)
	}

	// Join all args as title; the controller rejects a blank one
	in := service.NewTask{
		Title:       strings.Join(args, " "),
		Description: c.description,
		DueDate:     due,
	}
	dash := newDashboard(cfg, svc, notifier(cfg, out, errOut))
	if _, err := dash.Create(ctx, in); err != nil {
		return exitCode(err)
	}
	return exitcode.Success
}
