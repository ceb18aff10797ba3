package schedule

import (
	"testing"
	"time"
)

func TestHeartbeatRequiresIdleAndInterval(t *testing.T) {
	hb := Heartbeat{Interval: time.Hour, IdleThreshold: 2 * time.Hour}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if !hb.Observe(now, now.Add(-3*time.Hour), now.Add(-2*time.Hour)) {
		t.Fatalf("expected beat when idle and interval elapsed")
	}
	if hb.Observe(now, now.Add(-30*time.Minute), now.Add(-2*time.Hour)) {
		t.Fatalf("recent trade must suppress heartbeat")
	}
	if hb.Observe(now, now.Add(-3*time.Hour), now.Add(-30*time.Minute)) {
		t.Fatalf("recent beat must suppress heartbeat")
	}
}

func TestSummaryDueOncePerDate(t *testing.T) {
	daily := Daily{Zone: time.FixedZone("UTC-6", -6*3600), SummaryHour: 21, SummaryMinute: 30}
	// 21:45 local on 2024-05-01.
	now := time.Date(2024, 5, 2, 3, 45, 0, 0, time.UTC)

	if !daily.SummaryDue(now, "") {
		t.Fatalf("expected summary due after configured time")
	}
	if daily.SummaryDue(now, "2024-05-01") {
		t.Fatalf("summary must not re-fire on the same date")
	}
	if !daily.SummaryDue(now.Add(24*time.Hour), "2024-05-01") {
		t.Fatalf("expected summary due again the next date")
	}
}

func TestSummaryNotDueBeforeConfiguredTime(t *testing.T) {
	daily := Daily{Zone: time.UTC, SummaryHour: 21, SummaryMinute: 30}
	now := time.Date(2024, 5, 1, 21, 29, 0, 0, time.UTC)

	if daily.SummaryDue(now, "") {
		t.Fatalf("summary must wait for the configured time")
	}
}

func TestRestartDueOnlyInsideWindow(t *testing.T) {
	daily := Daily{Zone: time.UTC, RestartHour: 4, RestartWindow: 5 * time.Minute}

	inWindow := time.Date(2024, 5, 1, 4, 2, 0, 0, time.UTC)
	if !daily.RestartDue(inWindow, "") {
		t.Fatalf("expected restart due inside window")
	}
	if daily.RestartDue(inWindow, "2024-05-01") {
		t.Fatalf("restart must not re-fire on the same date")
	}

	late := time.Date(2024, 5, 1, 4, 6, 0, 0, time.UTC)
	if daily.RestartDue(late, "") {
		t.Fatalf("restart window must close after tolerance")
	}

	early := time.Date(2024, 5, 1, 3, 59, 0, 0, time.UTC)
	if daily.RestartDue(early, "") {
		t.Fatalf("restart must not fire before the hour")
	}
}
