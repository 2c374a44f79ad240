package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string          { return "help" }
func (c *HelpCmd) Aliases() []string     { return nil }
func (c *HelpCmd) Synopsis() string      { return "Print usage" }
func (c *HelpCmd) Usage() string         { return "taskdash help" }
func (c *HelpCmd) Requires() Requirement { return NoService }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskdash                                           List active tasks
  taskdash list [common flags] [--search <text>] [--filter all|completed|incomplete] [--sort newest|oldest|az|za]
  taskdash add [common flags] [--description <text>] [--due YYYY-MM-DD] <title...>
  taskdash create [common flags] [--description <text>] [--due YYYY-MM-DD] <title...>
  taskdash edit [common flags] [--title <text>] [--description <text>] [--due YYYY-MM-DD | --clear-due] <ref>
  taskdash done [common flags] <ref>
  taskdash rm [common flags] [--yes] <ref>
  taskdash bin [common flags]
  taskdash restore [common flags] <bin-ref>
  taskdash summary [common flags]
  taskdash shell [common flags]
  taskdash login [common flags] [--email <email>] [--password <password>]
  taskdash register [common flags] [--name <name>] [--email <email>] [--password <password>]
  taskdash logout [common flags]
  taskdash whoami [common flags]
  taskdash help
  taskdash version

A <ref> is the number printed by list (or bin) or a task ID.

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override the task service URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
