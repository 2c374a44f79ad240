package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/output"
	"taskdash/internal/service"
)

// deleteQuestion is asked before every delete that is not forced.
const deleteQuestion = "Are you sure you want to delete this task?"

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	// In supplies the confirmation answer. Nil means os.Stdin.
	In io.Reader

	yes bool
}

func (c *RmCmd) Name() string          { return "rm" }
func (c *RmCmd) Aliases() []string     { return []string{"delete"} }
func (c *RmCmd) Synopsis() string      { return "Delete a task (it moves to the recycle bin)" }
func (c *RmCmd) Usage() string         { return "taskdash rm [common flags] [--yes] <ref>" }
func (c *RmCmd) Requires() Requirement { return SessionRequired }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return printError(errOut, err)
	}

	dash := newDashboard(cfg, svc, notifier(cfg, out, errOut))
	if err := dash.Load(ctx); err != nil {
		return exitCode(err)
	}
	num, task, err := ref.Resolve(dash.Tasks())
	if err != nil {
		return printError(errOut, err)
	}

	// Stage first; nothing is sent until the delete is confirmed
	if err := dash.RequestDelete(task); err != nil {
		return finish(errOut, err)
	}
	if !c.yes {
		output.FormatTask(errOut, num, task)
		if !confirm(bufio.NewReader(stdin(c.In)), errOut, deleteQuestion) {
			dash.CancelDelete()
			if !cfg.Quiet {
				fmt.Fprintln(out, "cancelled")
			}
			return exitcode.Success
		}
	}

	if _, err := dash.ConfirmDelete(ctx); err != nil {
		return finish(errOut, err)
	}
	return exitcode.Success
}
