// Package restapi implements the service.Service interface over the task
// service's REST API.
package restapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/go-logr/logr"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskdash/internal/config"
	"taskdash/internal/service"
)

const (
	loginPath        = "/login"
	registerPath     = "/register"
	tasksPath        = "/tasks"
	deletedTasksPath = "/tasks/deleted"
	restorePath      = "/tasks/restore/"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:5000/api.
	BaseURL string

	// Timeout bounds each call. Zero means config.DefaultTimeout.
	Timeout time.Duration

	// TokenSource supplies the bearer credential for protected calls.
	// Nil makes every protected call fail with service.ErrUnauthorized.
	TokenSource oauth2.TokenSource

	// Transport is the base round tripper. Nil means http.DefaultTransport.
	Transport http.RoundTripper

	Logger logr.Logger
}

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	log     logr.Logger

	// public carries no credential (login, register); authed attaches the
	// bearer token to every request.
	public *http.Client
	authed *http.Client
}

// New creates a client for the configured API URL.
func New(cfg *config.Config, ts oauth2.TokenSource, log logr.Logger) (*Client, error) {
	return NewWithOptions(Options{
		BaseURL:     cfg.APIURL,
		Timeout:     cfg.APITimeout(),
		TokenSource: ts,
		Logger:      log,
	})
}

// NewWithOptions creates a client from explicit options.
func NewWithOptions(o Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url: %q", o.BaseURL)
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	rt := o.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	rt = otelhttp.NewTransport(rt)

	ts := o.TokenSource
	if ts == nil {
		ts = noToken{}
	}

	return &Client{
		baseURL: base,
		timeout: timeout,
		log:     o.Logger,
		public:  &http.Client{Transport: rt},
		authed:  &http.Client{Transport: &oauth2.Transport{Source: ts, Base: rt}},
	}, nil
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, c.public, "login", http.MethodPost, loginPath, creds, &resp)
	if err != nil {
		// The service answers bad credentials with 400 or 401.
		var re *service.RequestError
		if errors.As(err, &re) && (re.Status == http.StatusBadRequest || re.Status == http.StatusUnauthorized) {
			re.Err = service.ErrUnauthorized
		}
		return "", err
	}
	if resp.Token == "" {
		return "", &service.RequestError{Op: "login", Message: "no token in response", Err: service.ErrUnauthorized}
	}
	return resp.Token, nil
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, reg service.Registration) error {
	return c.do(ctx, c.public, "register", http.MethodPost, registerPath, reg, nil)
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, c.authed, "list tasks", http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, in service.NewTask) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, c.authed, "create task", http.MethodPost, tasksPath, in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, c.authed, "update task", http.MethodPut, taskPath(id), patch, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, "delete task", http.MethodDelete, taskPath(id), nil, nil)
}

// ListDeletedTasks implements service.Service.
func (c *Client) ListDeletedTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, c.authed, "list deleted tasks", http.MethodGet, deletedTasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// RestoreTask implements service.Service.
func (c *Client) RestoreTask(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, "restore task", http.MethodPut, restorePath+url.PathEscape(id), nil, nil)
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}

// do sends one JSON request and decodes the response into out (if non-nil).
func (c *Client) do(ctx context.Context, hc *http.Client, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.V(1).Info("request failed", "method", method, "path", path, "error", err.Error())
		return wrapError(op, err)
	}
	defer resp.Body.Close()
	c.log.V(1).Info("request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start).String())

	if err := googleapi.CheckResponse(resp); err != nil {
		return wrapError(op, err)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &service.RequestError{Op: op, Status: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}

// wrapError classifies transport and HTTP errors.
func wrapError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		re := &service.RequestError{Op: op, Status: gerr.Code, Message: gerr.Message, Err: gerr}
		if re.Message == "" {
			re.Message = serverMessage(gerr.Body)
		}
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			re.Err = service.ErrUnauthorized
		case http.StatusNotFound:
			re.Err = service.ErrNotFound
		}
		return re
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return &service.RequestError{Op: op, Err: service.ErrUnauthorized}
	case errors.Is(err, context.DeadlineExceeded):
		return &service.RequestError{Op: op, Err: service.ErrTimeout}
	}
	return &service.RequestError{Op: op, Err: err}
}

// serverMessage extracts {"message": "..."} or {"error": "..."} from an error body.
func serverMessage(body string) string {
	var reply struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return strings.TrimSpace(body)
	}
	if reply.Message != "" {
		return reply.Message
	}
	if s, ok := reply.Error.(string); ok {
		return s
	}
	return ""
}

// noToken is the token source of a client built without one.
type noToken struct{}

func (noToken) Token() (*oauth2.Token, error) {
	return nil, service.ErrUnauthorized
}
