package cron

import (
	"context"
	"errors"
	"testing"
)

type countingExpirer struct {
	calls int
	err   error
}

func (c *countingExpirer) ExpireOverdue(ctx context.Context) (int64, error) {
	c.calls++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("job ran without a deadline")
	}
	return 2, c.err
}

type countingWarmer struct{ calls int }

func (c *countingWarmer) Warm(context.Context) int {
	c.calls++
	return 3
}

func TestManualTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		job        string
		ok         bool
		wantQuotes int
		wantFeeds  int
	}{
		{"quote_expiry", true, 1, 0},
		{"feed_warmup", true, 0, 1},
		{"all", true, 1, 1},
		{"sprint_deadlines", false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.job, func(t *testing.T) {
			t.Parallel()
			q, f := &countingExpirer{}, &countingWarmer{}
			s := NewScheduler(q, f)
			if got := s.ManualTrigger(tt.job); got != tt.ok {
				t.Errorf("ManualTrigger: got %v, want %v", got, tt.ok)
			}
			if q.calls != tt.wantQuotes || f.calls != tt.wantFeeds {
				t.Errorf("calls: got quotes=%d feeds=%d, want %d/%d", q.calls, f.calls, tt.wantQuotes, tt.wantFeeds)
			}
		})
	}
}

func TestJobsTolerateMissingSources(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil)
	if n := s.expireQuotes(); n != 0 {
		t.Errorf("expireQuotes: got %d, want 0", n)
	}
	if n := s.warmFeeds(); n != 0 {
		t.Errorf("warmFeeds: got %d, want 0", n)
	}

	failing := NewScheduler(&countingExpirer{err: errors.New("db down")}, nil)
	if n := failing.expireQuotes(); n != 0 {
		t.Errorf("failing expiry: got %d, want 0", n)
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(&countingExpirer{}, &countingWarmer{})
	s.Start()
	if got := len(s.cron.Entries()); got != 2 {
		t.Errorf("entries: got %d, want 2", got)
	}
	s.Stop()
}
