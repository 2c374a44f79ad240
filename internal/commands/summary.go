package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"taskdash/internal/config"
	"taskdash/internal/dashboard"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&SummaryCmd{})
}

// SummaryCmd implements the summary command. Active and deleted tasks are
// fetched concurrently.
type SummaryCmd struct{}

func (c *SummaryCmd) Name() string          { return "summary" }
func (c *SummaryCmd) Aliases() []string     { return []string{"stats"} }
func (c *SummaryCmd) Synopsis() string      { return "Count active and deleted tasks" }
func (c *SummaryCmd) Usage() string         { return "taskdash summary [common flags]" }
func (c *SummaryCmd) Requires() Requirement { return SessionRequired }

func (c *SummaryCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SummaryCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return printError(errOut, usageErrorf("unexpected argument: %s", args[0]))
	}

	n := notifier(cfg, out, errOut)
	dash := newDashboard(cfg, svc, n)
	bin := newBin(cfg, svc, n)

	// No shared cancellation: a failure in one load must not be reported
	// as a cancelled request in the other
	var g errgroup.Group
	g.Go(func() error { return dash.Load(ctx) })
	g.Go(func() error { return bin.Load(ctx) })
	if err := g.Wait(); err != nil {
		return exitCode(err)
	}

	active := dash.Tasks()
	completed := len(dashboard.View(active, dashboard.Query{Filter: dashboard.FilterCompleted}))
	fmt.Fprintf(out, "active:  %d (%d completed, %d incomplete)\n", len(active), completed, len(active)-completed)
	fmt.Fprintf(out, "deleted: %d\n", len(bin.Tasks()))
	return exitcode.Success
}
