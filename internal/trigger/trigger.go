package trigger

//go:generate go run go.uber.org/mock/mockgen -destination trigger_mock.gen.go -package trigger . Dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hn-digest/trigger/internal/github"
	"github.com/hn-digest/trigger/internal/metrics"
)

// Source identifies what invoked a dispatch.
type Source string

const (
	SourceSchedule Source = "schedule"
	SourceHTTP     Source = "http"
	SourceCLI      Source = "cli"
)

// Fixed dispatch parameters. Every source sends the same request.
const (
	Ref        = "main"
	StoryCount = "20"
)

// NewRequest returns the workflow_dispatch body: {"ref":"main","inputs":{"story_count":"20"}}.
func NewRequest() github.DispatchRequest {
	return github.DispatchRequest{
		Ref:    Ref,
		Inputs: map[string]string{"story_count": StoryCount},
	}
}

// Dispatcher starts the remote workflow once (used by server, scheduler and CLI).
type Dispatcher interface {
	Dispatch(ctx context.Context, src Source) error
}

// Target names the workflow to start.
type Target struct {
	Owner    string
	Repo     string
	Workflow string
}

// Service implements Dispatcher on top of a github.WorkflowDispatcher.
type Service struct {
	client  github.WorkflowDispatcher
	target  Target
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewService returns a dispatcher for target. m may be nil.
func NewService(client github.WorkflowDispatcher, target Target, m *metrics.Metrics) *Service {
	return &Service{client: client, target: target, metrics: m, log: slog.Default(), now: time.Now}
}

// Dispatch makes a single attempt. Upstream rejections come back as *github.DispatchError.
func (s *Service) Dispatch(ctx context.Context, src Source) error {
	start := s.now()
	err := s.client.DispatchWorkflow(ctx, s.target.Owner, s.target.Repo, s.target.Workflow, NewRequest())
	if s.metrics != nil {
		s.metrics.ObserveDispatch(string(src), s.now().Sub(start), err)
	}
	if err != nil {
		var dErr *github.DispatchError
		if !errors.As(err, &dErr) {
			// Rejections are logged with their body by the client.
			s.log.Error("workflow dispatch request failed", "workflow", s.target.Workflow, "source", src, "err", err)
		}
		return err
	}
	s.log.Info("triggered workflow", "workflow", s.target.Workflow, "source", src, "at", s.now().UTC().Format(time.RFC3339))
	return nil
}
