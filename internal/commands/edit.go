package commands

import (
	"context"
	"flag"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command: the edit form, pre-filled from the
// task, with the flags naming the fields that change.
type EditCmd struct {
	title       optionalString
	description optionalString
	due         optionalString
	clearDue    bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task" }
func (c *EditCmd) Usage() string {
	return "taskdash edit [common flags] [--title <text>] [--description <text>] [--due YYYY-MM-DD | --clear-due] <ref>"
}
func (c *EditCmd) Requires() Requirement { return SessionRequired }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.due = optionalString{}, optionalString{}, optionalString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.due, "due", "")
	fs.BoolVar(&c.clearDue, "clear-due", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return printError(errOut, err)
	}
	if !c.title.set && !c.description.set && !c.due.set && !c.clearDue {
		return printError(errOut, usageErrorf("nothing to change (use --title, --description, --due or --clear-due)"))
	}
	if c.due.set && c.clearDue {
		return printError(errOut, usageErrorf("cannot use both --due and --clear-due"))
	}
	due, err := parseDue(c.due.value)
	if err != nil {
		return printError(errOut, err)
	}

	dash := newDashboard(cfg, svc, notifier(cfg, out, errOut))
	if err := dash.Load(ctx); err != nil {
		return exitCode(err)
	}
	_, task, err := ref.Resolve(dash.Tasks())
	if err != nil {
		return printError(errOut, err)
	}

	draft, err := dash.BeginEdit(task.ID)
	if err != nil {
		return printError(errOut, err)
	}
	if c.title.set {
		draft.Title = c.title.value
	}
	if c.description.set {
		draft.Description = c.description.value
	}
	if c.due.set {
		draft.DueDate = due
	}
	if c.clearDue {
		draft.DueDate = nil
	}

	if _, err := dash.SubmitEdit(ctx); err != nil {
		return finish(errOut, err)
	}
	return exitcode.Success
}
