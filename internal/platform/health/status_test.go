package health

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestStatusTransitions(t *testing.T) {
	s := NewStatus(true)
	if !s.IsHealthy() {
		t.Fatal("expected a new status to start healthy")
	}

	s.Assess(false)
	if s.State() != StateDegraded {
		t.Fatalf("expected degraded, got %s", s.State())
	}
	s.Assess(false)
	if s.State() != StateDegraded {
		t.Fatalf("expected to stay degraded, got %s", s.State())
	}
	s.Assess(true)
	if !s.IsHealthy() {
		t.Fatalf("expected recovery to healthy, got %s", s.State())
	}
}

func TestStatusDisabledIgnoresChecks(t *testing.T) {
	s := NewStatus(false)
	s.Assess(true)
	if s.State() != StateDisabled || s.IsHealthy() {
		t.Errorf("expected disabled status to stay disabled, got %s", s.State())
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "ping")
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func TestCheckerUpdatesStatus(t *testing.T) {
	s := NewStatus(true)

	NewChecker(fakePinger{err: errors.New("connection refused")}, s).PerformCheck(context.Background())
	if s.State() != StateDegraded {
		t.Fatalf("expected degraded after a failed ping, got %s", s.State())
	}

	NewChecker(fakePinger{}, s).PerformCheck(context.Background())
	if !s.IsHealthy() {
		t.Fatalf("expected healthy after a successful ping, got %s", s.State())
	}
}
