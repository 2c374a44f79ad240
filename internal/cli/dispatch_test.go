package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"taskdash/internal/backend/restapi"
	"taskdash/internal/cli"
	"taskdash/internal/commands"
	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
)

// factoryCall records what the dispatcher handed to the factory.
type factoryCall struct {
	cfg *config.Config
	ts  oauth2.TokenSource
}

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService, calls *[]factoryCall) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, ts oauth2.TokenSource) (service.Service, error) {
		if calls != nil {
			*calls = append(*calls, factoryCall{cfg: cfg, ts: ts})
		}
		return svc, nil
	}
}

func run(t *testing.T, factory cli.ServiceFactory, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func writeToken(t *testing.T, dir, token string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, config.TokenFile), []byte(token), 0600); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "help", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "version", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskdash 0.1.0\n" {
		t.Errorf("expected 'taskdash 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "list", "--search")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -search\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

// Protected commands without a session fail before the backend is built.
func TestDispatcher_NoSession(t *testing.T) {
	svc := testutil.NewFakeService()
	var calls []factoryCall

	for _, name := range []string{"list", "add", "done", "rm", "bin", "restore", "summary", "shell"} {
		t.Run(name, func(t *testing.T) {
			_, stderr, code := run(t, testFactory(svc, &calls), name, "--config", t.TempDir(), "1")

			if code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
			}
			expected := "error: not logged in (run: taskdash login)\n"
			if stderr != expected {
				t.Errorf("expected %q, got %q", expected, stderr)
			}
		})
	}
	if len(calls) != 0 {
		t.Errorf("factory should not be called, got %d calls", len(calls))
	}
	if len(svc.Calls()) != 0 {
		t.Errorf("expected no service calls, got %v", svc.Calls())
	}
}

func TestDispatcher_UndecodableSession(t *testing.T) {
	dir := t.TempDir()
	writeToken(t, dir, "garbage")
	var calls []factoryCall

	_, _, code := run(t, testFactory(testutil.NewFakeService(), &calls), "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if len(calls) != 0 {
		t.Error("an undecodable credential counts as no session")
	}
}

func TestDispatcher_DefaultsToList(t *testing.T) {
	// With no --config the XDG directory is used
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, config.AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	token := testutil.Token("Ana", "ana@example.com")
	writeToken(t, dir, token)

	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk", false)
	var calls []factoryCall

	stdout, stderr, code := run(t, testFactory(svc, &calls))

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  [ ] Buy milk\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if len(calls) != 1 || calls[0].ts == nil {
		t.Fatalf("expected one factory call with a token source, got %+v", calls)
	}
	tok, err := calls[0].ts.Token()
	if err != nil {
		t.Fatalf("token source failed: %v", err)
	}
	if tok.AccessToken != token {
		t.Error("token source should serve the stored credential")
	}
}

func TestDispatcher_APIOverride(t *testing.T) {
	dir := t.TempDir()
	writeToken(t, dir, testutil.Token("Ana", "ana@example.com"))
	t.Setenv(config.EnvAPIURL, "http://env.example/api")
	var calls []factoryCall

	_, _, code := run(t, testFactory(testutil.NewFakeService(), &calls), "list", "--config", dir)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	_, _, code = run(t, testFactory(testutil.NewFakeService(), &calls), "list", "--config", dir, "--api", "http://flag.example/api")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}

	if got := calls[0].cfg.APIURL; got != "http://env.example/api" {
		t.Errorf("expected env URL, got %q", got)
	}
	if got := calls[1].cfg.APIURL; got != "http://flag.example/api" {
		t.Errorf("expected flag URL, got %q", got)
	}
}

func TestDispatcher_LoginIsPublic(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Ana", "ana@example.com", "secret")
	var calls []factoryCall

	_, stderr, code := run(t, testFactory(svc, &calls),
		"login", "--config", t.TempDir(), "--quiet", "--email", "ana@example.com", "--password", "secret")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if len(calls) != 1 || calls[0].ts != nil {
		t.Errorf("login should get a backend without a token source, got %+v", calls)
	}
}

// TestDispatcher_EndToEnd drives the REST client against the fake server.
func TestDispatcher_EndToEnd(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Ana", "ana@example.com", "secret")
	srv := testutil.NewServer(svc)
	defer srv.Close()

	factory := func(ctx context.Context, cfg *config.Config, ts oauth2.TokenSource) (service.Service, error) {
		return restapi.New(cfg, ts, cfg.Log)
	}
	dir := t.TempDir()
	common := []string{"--config", dir, "--api", srv.APIURL()}
	step := func(args ...string) string {
		t.Helper()
		stdout, stderr, code := run(t, factory, append(args, common...)...)
		if code != exitcode.Success {
			t.Fatalf("%v: exit code %d, stderr %q", args, code, stderr)
		}
		return stdout
	}

	step("login", "--email", "ana@example.com", "--password", "secret")
	step("add", "--due", "2025-02-01", "Buy", "milk")
	if got := step("list"); got != "   1  [ ] Buy milk  (due Feb 1, 2025)\n" {
		t.Errorf("unexpected list %q", got)
	}
	step("done", "1")
	step("rm", "--yes", "1")
	if got := step("list"); got != "No tasks found\n" {
		t.Errorf("unexpected list after delete %q", got)
	}
	step("restore", "1")
	if got := step("list"); got != "   1  [x] Buy milk  (due Feb 1, 2025)\n" {
		t.Errorf("unexpected list after restore %q", got)
	}
	step("logout")

	_, _, code := run(t, factory, append([]string{"list"}, common...)...)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d after logout, got %d", exitcode.AuthError, code)
	}

	for i, req := range srv.Requests() {
		if strings.HasPrefix(req, "POST /api/login") {
			continue
		}
		if h := srv.AuthHeaders()[i]; !strings.HasPrefix(h, "Bearer ") {
			t.Errorf("%s sent without bearer credential", req)
		}
	}
}
