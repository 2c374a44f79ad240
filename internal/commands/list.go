package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"golang.org/x/text/language"

	"taskdash/internal/config"
	"taskdash/internal/dashboard"
	"taskdash/internal/exitcode"
	"taskdash/internal/output"
	"taskdash/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	search string
	filter string
	sort   string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List active tasks" }
func (c *ListCmd) Usage() string {
	return "taskdash list [common flags] [--search <text>] [--filter all|completed|incomplete] [--sort newest|oldest|az|za]"
}
func (c *ListCmd) Requires() Requirement { return SessionRequired }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
	fs.StringVar(&c.sort, "sort", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return printError(errOut, usageErrorf("unexpected argument: %s", args[0]))
	}
	q, err := buildQuery(c.search, c.filter, c.sort, cfg.Language())
	if err != nil {
		return printError(errOut, err)
	}

	dash := newDashboard(cfg, svc, notifier(cfg, out, errOut))
	if err := dash.Load(ctx); err != nil {
		return exitCode(err)
	}
	printTasks(out, dash.Tasks(), dash.View(q))
	return exitcode.Success
}

// buildQuery turns flag values into a view query.
func buildQuery(search, filter, sort string, locale language.Tag) (dashboard.Query, error) {
	f, err := dashboard.ParseFilter(filter)
	if err != nil {
		return dashboard.Query{}, usageErrorf("%v", err)
	}
	s, err := dashboard.ParseSort(sort)
	if err != nil {
		return dashboard.Query{}, usageErrorf("%v", err)
	}
	return dashboard.Query{Search: search, Filter: f, Sort: s, Locale: locale}, nil
}

// printTasks prints view, numbering each task by its position in all so the
// numbers stay valid references whatever the filter and sort.
func printTasks(out io.Writer, all, view []service.Task) {
	if len(view) == 0 {
		fmt.Fprintln(out, "No tasks found")
		return
	}
	pos := make(map[string]int, len(all))
	for i, t := range all {
		pos[t.ID] = i + 1
	}
	for _, t := range view {
		output.FormatTask(out, pos[t.ID], t)
	}
}
