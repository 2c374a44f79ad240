package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"

	"taskdash/internal/config"
	"taskdash/internal/dashboard"
	"taskdash/internal/exitcode"
	"taskdash/internal/notify"
	"taskdash/internal/output"
	"taskdash/internal/recyclebin"
	"taskdash/internal/service"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the interactive shell. The dashboard state (list,
// search, filter, sort, undo snapshot) lives for the whole session.
type ShellCmd struct {
	// In supplies command lines. Nil means os.Stdin.
	In io.Reader
}

func (c *ShellCmd) Name() string          { return "shell" }
func (c *ShellCmd) Aliases() []string     { return []string{"sh"} }
func (c *ShellCmd) Synopsis() string      { return "Interactive dashboard session (supports undo)" }
func (c *ShellCmd) Usage() string         { return "taskdash shell [common flags]" }
func (c *ShellCmd) Requires() Requirement { return SessionRequired }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return printError(errOut, usageErrorf("unexpected argument: %s", args[0]))
	}
	s, err := sessions(cfg).Current()
	if err != nil {
		fmt.Fprintln(errOut, "error: not logged in (run: taskdash login)")
		return exitcode.AuthError
	}

	sh := &shell{
		cfg:    cfg,
		out:    out,
		errOut: errOut,
		in:     bufio.NewReader(stdin(c.In)),
		name:   s.Name,
		query:  dashboard.Query{Locale: cfg.Language()},
	}
	w := notifier(cfg, out, errOut)
	n := notify.Func(func(n notify.Notification) {
		w.Notify(n)
		if n.Kind == notify.Redirect {
			sh.redirected = true
		}
	})
	sh.dash = newDashboard(cfg, svc, n)
	sh.bin = newBin(cfg, svc, n)
	return sh.run(ctx)
}

// shell is one interactive session. It runs on a single goroutine.
type shell struct {
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader
	name   string

	dash  *dashboard.Controller
	bin   *recyclebin.Controller
	query dashboard.Query

	// redirected is set once the session is found to be invalid.
	redirected bool
}

func (sh *shell) run(ctx context.Context) int {
	output.FormatWelcome(sh.out, sh.name)
	if err := sh.dash.Load(ctx); err == nil {
		sh.list()
	}
	if sh.redirected {
		return exitcode.AuthError
	}

	for ctx.Err() == nil {
		fmt.Fprint(sh.out, "> ")
		line, err := sh.in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(sh.out)
			return exitcode.Success
		}
		words, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(sh.errOut, "error: %v\n", err)
			continue
		}
		if len(words) == 0 {
			continue
		}
		quit := sh.exec(ctx, words[0], words[1:])
		if sh.redirected {
			return exitcode.AuthError
		}
		if quit {
			return exitcode.Success
		}
	}
	return exitcode.Success
}

// exec runs one shell command and reports whether the session should end.
func (sh *shell) exec(ctx context.Context, name string, args []string) bool {
	var err error
	switch name {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(sh.out, shellHelp)
	case "list", "ls":
		sh.list()
	case "reload":
		if sh.dash.Load(ctx) == nil {
			sh.list()
		}
	case "search":
		sh.query.Search = strings.Join(args, " ")
		sh.list()
	case "filter":
		err = sh.setFilter(args)
	case "sort":
		err = sh.setSort(args)
	case "add", "create":
		err = sh.add(ctx, args)
	case "edit":
		err = sh.edit(ctx, args)
	case "done", "toggle":
		err = sh.toggle(ctx, args)
	case "rm", "delete":
		err = sh.remove(ctx, args)
	case "undo":
		err = sh.undo(ctx)
	case "bin", "trash":
		if sh.bin.Load(ctx) == nil {
			printDeleted(sh.out, sh.bin.Tasks())
		}
	case "restore":
		err = sh.restore(ctx, args)
	case "whoami":
		output.FormatWelcome(sh.out, sh.name)
	default:
		err = usageErrorf("unknown command: %s (try: help)", name)
	}
	if err != nil && !errors.Is(err, errReported) {
		printError(sh.errOut, err)
	}
	return false
}

// errReported marks an error the controller has already shown.
var errReported = errors.New("reported")

// reported wraps a controller error unless it is one the controller rejects
// silently.
func reported(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dashboard.ErrActionInProgress),
		errors.Is(err, dashboard.ErrNoPendingDelete),
		errors.Is(err, dashboard.ErrTaskNotFound),
		errors.Is(err, dashboard.ErrNotEditing):
		return err
	}
	return errReported
}

func (sh *shell) list() {
	printTasks(sh.out, sh.dash.Tasks(), sh.dash.View(sh.query))
}

func (sh *shell) setFilter(args []string) error {
	f, err := dashboard.ParseFilter(strings.Join(args, " "))
	if err != nil {
		return usageErrorf("%v", err)
	}
	sh.query.Filter = f
	sh.list()
	return nil
}

func (sh *shell) setSort(args []string) error {
	arg := strings.Join(args, " ")
	if arg == "none" {
		arg = ""
	}
	s, err := dashboard.ParseSort(arg)
	if err != nil {
		return usageErrorf("%v", err)
	}
	sh.query.Sort = s
	sh.list()
	return nil
}

func (sh *shell) add(ctx context.Context, args []string) error {
	fs := newShellFlags("add")
	description := fs.String("description", "", "")
	fs.StringVar(description, "d", "", "")
	dueFlag := fs.String("due", "", "")
	words, err := ParseInterspersed(fs, args)
	if err != nil {
		return usageErrorf("%v", err)
	}
	due, err := parseDue(*dueFlag)
	if err != nil {
		return err
	}
	_, err = sh.dash.Create(ctx, service.NewTask{
		Title:       strings.Join(words, " "),
		Description: *description,
		DueDate:     due,
	})
	return reported(err)
}

func (sh *shell) edit(ctx context.Context, args []string) error {
	var title, description, dueFlag optionalString
	fs := newShellFlags("edit")
	fs.Var(&title, "title", "")
	fs.Var(&title, "t", "")
	fs.Var(&description, "description", "")
	fs.Var(&description, "d", "")
	fs.Var(&dueFlag, "due", "")
	clearDue := fs.Bool("clear-due", false, "")
	words, err := ParseInterspersed(fs, args)
	if err != nil {
		return usageErrorf("%v", err)
	}
	task, err := sh.resolve(words)
	if err != nil {
		return err
	}
	if dueFlag.set && *clearDue {
		return usageErrorf("cannot use both --due and --clear-due")
	}
	due, err := parseDue(dueFlag.value)
	if err != nil {
		return err
	}

	draft, err := sh.dash.BeginEdit(task.ID)
	if err != nil {
		return err
	}
	if !title.set && !description.set && !dueFlag.set && !*clearDue {
		// No flags: fill the form interactively, pre-filled with the current values
		if draft.Title, err = sh.field("Title", draft.Title); err != nil {
			sh.dash.CancelEdit()
			return nil
		}
		if draft.Description, err = sh.field("Description", draft.Description); err != nil {
			sh.dash.CancelEdit()
			return nil
		}
	}
	if title.set {
		draft.Title = title.value
	}
	if description.set {
		draft.Description = description.value
	}
	if dueFlag.set {
		draft.DueDate = due
	}
	if *clearDue {
		draft.DueDate = nil
	}

	if _, err := sh.dash.SubmitEdit(ctx); err != nil {
		// A failed submit keeps the draft open; the shell starts over next time
		sh.dash.CancelEdit()
		return reported(err)
	}
	return nil
}

// field prompts for one edit form field. An empty answer keeps current.
func (sh *shell) field(label, current string) (string, error) {
	answer, err := prompt(sh.in, sh.out, fmt.Sprintf("%s [%s]: ", label, current))
	if err != nil {
		return current, err
	}
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

func (sh *shell) toggle(ctx context.Context, args []string) error {
	task, err := sh.resolve(args)
	if err != nil {
		return err
	}
	return reported(sh.dash.ToggleCompletion(ctx, task.ID))
}

func (sh *shell) remove(ctx context.Context, args []string) error {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return err
	}
	num, task, err := ref.Resolve(sh.dash.Tasks())
	if err != nil {
		return err
	}
	if err := sh.dash.RequestDelete(task); err != nil {
		return err
	}
	output.FormatTask(sh.out, num, task)
	if !confirm(sh.in, sh.out, deleteQuestion) {
		sh.dash.CancelDelete()
		return nil
	}
	if _, err := sh.dash.ConfirmDelete(ctx); err != nil {
		return reported(err)
	}
	// Later tasks move up a number
	sh.list()
	if !sh.cfg.Quiet {
		fmt.Fprintln(sh.out, "(run: undo to re-create it)")
	}
	return nil
}

func (sh *shell) undo(ctx context.Context) error {
	snap, ok := sh.dash.LastDeleted()
	if !ok {
		return usageErrorf("nothing to undo")
	}
	if _, err := sh.dash.UndoDelete(ctx, snap); err != nil {
		return reported(err)
	}
	sh.list()
	return nil
}

func (sh *shell) restore(ctx context.Context, args []string) error {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return err
	}
	if err := sh.bin.Load(ctx); err != nil {
		return errReported
	}
	_, task, err := ref.Resolve(sh.bin.Tasks())
	if err != nil {
		return err
	}
	if err := sh.bin.Restore(ctx, task.ID); err != nil {
		return errReported
	}
	// The restored task is active again
	_ = sh.dash.Load(ctx)
	return nil
}

// resolve parses and resolves a reference against the list as last loaded,
// so the numbers match what was printed.
func (sh *shell) resolve(args []string) (service.Task, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return service.Task{}, err
	}
	_, task, err := ref.Resolve(sh.dash.Tasks())
	return task, err
}

func newShellFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

const shellHelp = `Commands:
  list                             Show tasks with the current search, filter and sort
  reload                           Fetch the list again
  search [<text...>]               Set the search term (empty clears it)
  filter all|completed|incomplete  Set the completion filter
  sort newest|oldest|az|za|none    Set the sort order
  add [-d <text>] [--due YYYY-MM-DD] <title...>
  edit <ref> [--title <text>] [--description <text>] [--due YYYY-MM-DD | --clear-due]
  done <ref>                       Toggle completion
  rm <ref>                         Delete (asks first)
  undo                             Re-create the last deleted task
  bin                              List deleted tasks
  restore <bin-ref>                Restore a deleted task
  whoami                           Show the logged-in user
  quit                             Leave the shell
`
