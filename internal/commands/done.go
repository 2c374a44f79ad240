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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles, so running it on a
// completed task marks it incomplete again.
type DoneCmd struct{}

func (c *DoneCmd) Name() string          { return "done" }
func (c *DoneCmd) Aliases() []string     { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string      { return "Toggle a task's completion" }
func (c *DoneCmd) Usage() string         { return "taskdash done [common flags] <ref>" }
func (c *DoneCmd) Requires() Requirement { return SessionRequired }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
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

	if err := dash.ToggleCompletion(ctx, task.ID); err != nil {
		return finish(errOut, err)
	}
	return exitcode.Success
}
