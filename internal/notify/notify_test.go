package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeSink records every delivery attempt, failed or not.
type fakeSink struct {
	failing  bool
	attempts []string
}

func (f *fakeSink) Push(ctx context.Context, text string) error {
	f.attempts = append(f.attempts, text)
	if f.failing {
		return errors.New("transport down")
	}
	return nil
}

func countEscalations(attempts []string) int {
	n := 0
	for _, m := range attempts {
		if strings.HasPrefix(m, "ALERT:") {
			n++
		}
	}
	return n
}

func TestServiceEscalatesExactlyOnceAtThreeFailures(t *testing.T) {
	sink := &fakeSink{failing: true}
	svc := NewService(sink)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if ok := svc.Push(ctx, "status"); ok {
			t.Fatalf("expected failure on push %d", i)
		}
	}

	if got := countEscalations(sink.attempts); got != 1 {
		t.Fatalf("expected exactly one escalation attempt, got %d", got)
	}
	if svc.ConsecutiveFailures() != 5 {
		t.Fatalf("escalation must not reset the counter, got %d", svc.ConsecutiveFailures())
	}
}

func TestServiceKeepsAttemptingAfterEscalation(t *testing.T) {
	sink := &fakeSink{failing: true}
	svc := NewService(sink)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Push(ctx, "status")
	}
	sink.failing = false
	if ok := svc.Push(ctx, "recovered"); !ok {
		t.Fatalf("expected success after transport recovery")
	}
	if svc.ConsecutiveFailures() != 0 {
		t.Fatalf("success must reset the counter, got %d", svc.ConsecutiveFailures())
	}
}

func TestServiceSuccessBeforeThresholdPreventsEscalation(t *testing.T) {
	sink := &fakeSink{failing: true}
	svc := NewService(sink)
	ctx := context.Background()

	svc.Push(ctx, "one")
	svc.Push(ctx, "two")
	sink.failing = false
	svc.Push(ctx, "three")
	sink.failing = true
	svc.Push(ctx, "four")
	svc.Push(ctx, "five")

	if got := countEscalations(sink.attempts); got != 0 {
		t.Fatalf("counter reset must prevent escalation, found %d", got)
	}
}
