package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hn-digest/trigger/internal/trigger"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the timer-driven dispatch. Depends only on trigger.Dispatcher.
type Scheduler struct {
	dispatcher trigger.Dispatcher
	cron       *cron.Cron
	spec       string
	loc        *time.Location
	timeout    time.Duration
	log        *slog.Logger
}

// NewScheduler parses spec (standard 5-field cron or descriptor) in loc.
// timeout bounds each tick's dispatch.
func NewScheduler(d trigger.Dispatcher, spec string, loc *time.Location, timeout time.Duration) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{dispatcher: d, spec: spec, loc: loc, timeout: timeout, log: slog.Default()}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{s.log}), cron.SkipIfStillRunning(cronLogger{s.log})),
	)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing ticks in the background. It does not block.
func (s *Scheduler) Start() {
	s.log.Info("scheduler running", "schedule", s.spec, "next", s.Next())
	s.cron.Start()
}

// Stop prevents new ticks and waits for a running one or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next activation time in the scheduler location.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if next := entries[0].Next; !next.IsZero() {
		return next
	}
	return entries[0].Schedule.Next(time.Now().In(s.loc))
}

// tick has no response channel: failures end in the log and the dispatch metrics.
func (s *Scheduler) tick() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.dispatcher.Dispatch(ctx, trigger.SourceSchedule); err != nil {
		s.log.Warn("scheduled dispatch failed", "err", err)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
