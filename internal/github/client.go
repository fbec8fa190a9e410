package github

//go:generate go run go.uber.org/mock/mockgen -destination client_mock.gen.go -package github . WorkflowDispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
)

const (
	dispatchPathFmt = "repos/%s/%s/actions/workflows/%s/dispatches"
	defaultTimeout  = 30 * time.Second
	// maxErrorBody caps how much of a rejected response is kept for logs.
	maxErrorBody = 64 << 10
)

// WorkflowDispatcher starts a workflow run (used by the trigger service).
type WorkflowDispatcher interface {
	DispatchWorkflow(ctx context.Context, owner, repo, workflow string, req DispatchRequest) error
}

// ClientConfig configures Client. Only Token is required.
type ClientConfig struct {
	Token     string
	UserAgent string
	// BaseURL replaces https://api.github.com/ when set (GHES, httptest.Server.URL).
	BaseURL string
	Timeout time.Duration
}

// Client implements WorkflowDispatcher using the GitHub REST API.
type Client struct {
	api *gh.Client
	log *slog.Logger
}

// NewClient returns a GitHub API client authenticating with a bearer token.
func NewClient(cfg ClientConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(cfg.Token)})
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &oauth2.Transport{Source: ts, Base: http.DefaultTransport},
	}
	api := gh.NewClient(httpClient)
	if cfg.UserAgent != "" {
		api.UserAgent = cfg.UserAgent
	}
	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		api.BaseURL = u
	}
	return &Client{api: api, log: slog.Default()}, nil
}

// DispatchWorkflow sends one workflow_dispatch event. Any 2xx is success.
// A non-2xx answer returns *DispatchError carrying the status and raw body.
// There is no retry.
func (c *Client) DispatchWorkflow(ctx context.Context, owner, repo, workflow string, body DispatchRequest) error {
	u := fmt.Sprintf(dispatchPathFmt, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(workflow))
	req, err := c.api.NewRequest(http.MethodPost, u, body)
	if err != nil {
		return fmt.Errorf("build dispatch request: %w", err)
	}
	// go-github short-circuits requests while a cached rate limit is exhausted;
	// every dispatch must reach the API with its own answer.
	resp, err := c.api.Do(context.WithValue(ctx, gh.BypassRateLimitCheck, true), req, nil)
	if err == nil {
		return nil
	}
	// go-github reports 202 as an error; it is still an accepted dispatch.
	var accepted *gh.AcceptedError
	if errors.As(err, &accepted) {
		return nil
	}
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("dispatch %s: %w", workflow, err)
	}
	dErr := &DispatchError{StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	c.log.Error("failed to trigger workflow", "workflow", workflow, "status", dErr.StatusCode, "body", dErr.Body)
	return dErr
}

// readBody drains a response body that go-github has already buffered on error.
func readBody(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return string(b)
}
