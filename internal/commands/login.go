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
	"taskdash/internal/output"
	"taskdash/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command. Missing credentials are prompted
// for; the password is read without echo on a terminal.
type LoginCmd struct {
	// In supplies prompted values. Nil means os.Stdin.
	In io.Reader

	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the session" }
func (c *LoginCmd) Usage() string {
	return "taskdash login [common flags] [--email <email>] [--password <password>]"
}
func (c *LoginCmd) Requires() Requirement { return PublicService }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return printError(errOut, usageErrorf("unexpected argument: %s", args[0]))
	}

	in := stdin(c.In)
	r := bufio.NewReader(in)
	creds := service.Credentials{Email: strings.TrimSpace(c.email), Password: c.password}
	var err error
	if creds.Email == "" {
		if creds.Email, err = prompt(r, errOut, "Email: "); err != nil {
			return printError(errOut, usageErrorf("email required"))
		}
	}
	if creds.Password == "" {
		if creds.Password, err = promptSecret(in, r, errOut, "Password: "); err != nil {
			return printError(errOut, usageErrorf("password required"))
		}
	}
	if creds.Email == "" || creds.Password == "" {
		return printError(errOut, usageErrorf("email and password required"))
	}

	token, err := svc.Login(ctx, creds)
	if err != nil {
		fmt.Fprintf(errOut, "error: Login failed: %v\n", err)
		return exitCode(err)
	}

	s, err := sessions(cfg).Begin(token)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to store session: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "Logged in successfully!")
		output.FormatWelcome(out, s.Name)
	}
	return exitcode.Success
}
