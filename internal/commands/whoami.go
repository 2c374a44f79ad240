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
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command from the stored credential alone.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string          { return "whoami" }
func (c *WhoamiCmd) Aliases() []string     { return nil }
func (c *WhoamiCmd) Synopsis() string      { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string         { return "taskdash whoami [common flags]" }
func (c *WhoamiCmd) Requires() Requirement { return NoService }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	s, err := sessions(cfg).Current()
	if err != nil {
		fmt.Fprintln(errOut, "error: not logged in (run: taskdash login)")
		return exitcode.AuthError
	}
	output.FormatWelcome(out, s.Name)
	if s.Email != "" && s.Email != s.Name {
		fmt.Fprintf(out, "email: %s\n", s.Email)
	}
	return exitcode.Success
}
