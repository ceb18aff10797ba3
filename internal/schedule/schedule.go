package schedule

import "time"

const dateLayout = "2006-01-02"

// Heartbeat decides when to emit a liveness notification. A recent trade
// already proves liveness, so beats only fire when the loop has been idle.
type Heartbeat struct {
	Interval      time.Duration
	IdleThreshold time.Duration
}

// Observe reports whether a heartbeat is due at `now`.
func (h Heartbeat) Observe(now, lastTrade, lastBeat time.Time) bool {
	if now.Sub(lastBeat) < h.Interval {
		return false
	}
	return now.Sub(lastTrade) >= h.IdleThreshold
}

// Daily evaluates the two date-latched triggers against a fixed-offset clock:
// the end-of-day summary and the once-per-day restart request.
type Daily struct {
	Zone          *time.Location
	SummaryHour   int
	SummaryMinute int
	RestartHour   int
	RestartWindow time.Duration
}

// Today returns the current calendar date in the scheduler's zone.
func (d Daily) Today(now time.Time) string {
	return now.In(d.Zone).Format(dateLayout)
}

// SummaryDue reports whether the daily summary should fire. It latches per
// date: once lastSummaryDate equals today it stays quiet until tomorrow.
func (d Daily) SummaryDue(now time.Time, lastSummaryDate string) bool {
	local := now.In(d.Zone)
	if local.Format(dateLayout) == lastSummaryDate {
		return false
	}
	due := time.Date(local.Year(), local.Month(), local.Day(), d.SummaryHour, d.SummaryMinute, 0, 0, d.Zone)
	return !local.Before(due)
}

// RestartDue reports whether the daily restart should be requested. Only the
// first RestartWindow of the restart hour qualifies, once per date.
func (d Daily) RestartDue(now time.Time, lastRestartDate string) bool {
	local := now.In(d.Zone)
	if local.Format(dateLayout) == lastRestartDate {
		return false
	}
	start := time.Date(local.Year(), local.Month(), local.Day(), d.RestartHour, 0, 0, 0, d.Zone)
	return !local.Before(start) && local.Before(start.Add(d.RestartWindow))
}
