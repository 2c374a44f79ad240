package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command. It creates an account but
// does not log in.
type RegisterCmd struct {
	// In supplies prompted values. Nil means os.Stdin.
	In io.Reader

	name     string
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskdash register [common flags] [--name <name>] [--email <email>] [--password <password>]"
}
func (c *RegisterCmd) Requires() Requirement { return PublicService }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.name, "n", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return printError(errOut, usageErrorf("unexpected argument: %s", args[0]))
	}

	in := stdin(c.In)
	r := bufio.NewReader(in)
	reg := service.Registration{
		Name:     strings.TrimSpace(c.name),
		Email:    strings.TrimSpace(c.email),
		Password: c.password,
	}
	var err error
	if reg.Name == "" {
		if reg.Name, err = prompt(r, errOut, "Name: "); err != nil {
			return printError(errOut, usageErrorf("name required"))
		}
	}
	if reg.Email == "" {
		if reg.Email, err = prompt(r, errOut, "Email: "); err != nil {
			return printError(errOut, usageErrorf("email required"))
		}
	}
	if reg.Password == "" {
		if reg.Password, err = promptSecret(in, r, errOut, "Password: "); err != nil {
			return printError(errOut, usageErrorf("password required"))
		}
	}
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		return printError(errOut, usageErrorf("name, email and password required"))
	}

	if err := svc.Register(ctx, reg); err != nil {
		fmt.Fprintf(errOut, "error: Registration failed: %v\n", err)
		return exitCode(err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "Registration successful! Please log in (run: taskdash login)")
	}
	return exitcode.Success
}
