package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/output"
	"taskdash/internal/service"
)

func init() {
	Register(&BinCmd{})
}

// BinCmd implements the bin command: the recycle bin in server order.
type BinCmd struct{}

func (c *BinCmd) Name() string          { return "bin" }
func (c *BinCmd) Aliases() []string     { return []string{"trash"} }
func (c *BinCmd) Synopsis() string      { return "List deleted tasks" }
func (c *BinCmd) Usage() string         { return "taskdash bin [common flags]" }
func (c *BinCmd) Requires() Requirement { return SessionRequired }

func (c *BinCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BinCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return printError(errOut, usageErrorf("unexpected argument: %s", args[0]))
	}

	bin := newBin(cfg, svc, notifier(cfg, out, errOut))
	if err := bin.Load(ctx); err != nil {
		return exitCode(err)
	}
	printDeleted(out, bin.Tasks())
	return exitcode.Success
}

func printDeleted(out io.Writer, tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No deleted tasks found.")
		return
	}
	for i, t := range tasks {
		output.FormatDeletedTask(out, i+1, t)
	}
}
