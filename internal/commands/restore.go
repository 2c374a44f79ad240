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
	Register(&RestoreCmd{})
}

// RestoreCmd implements the restore command. The reference is resolved
// against the recycle bin, not the active list.
type RestoreCmd struct{}

func (c *RestoreCmd) Name() string          { return "restore" }
func (c *RestoreCmd) Aliases() []string     { return nil }
func (c *RestoreCmd) Synopsis() string      { return "Restore a task from the recycle bin" }
func (c *RestoreCmd) Usage() string         { return "taskdash restore [common flags] <bin-ref>" }
func (c *RestoreCmd) Requires() Requirement { return SessionRequired }

func (c *RestoreCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RestoreCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return printError(errOut, err)
	}

	bin := newBin(cfg, svc, notifier(cfg, out, errOut))
	if err := bin.Load(ctx); err != nil {
		return exitCode(err)
	}
	_, task, err := ref.Resolve(bin.Tasks())
	if err != nil {
		return printError(errOut, err)
	}

	if err := bin.Restore(ctx, task.ID); err != nil {
		return exitCode(err)
	}
	return exitcode.Success
}
