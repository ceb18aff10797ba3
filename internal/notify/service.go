package notify

import (
	"context"
	"log"
)

const escalationThreshold = 3

// Service wraps a Notifier with failure accounting. Push never returns an
// error: notification outcomes are advisory and must not influence trading.
// At exactly three consecutive failures one distinct escalation message is
// attempted; the counter keeps running until a delivery succeeds.
type Service struct {
	sink     Notifier
	failures int
}

func NewService(sink Notifier) *Service {
	return &Service{sink: sink}
}

func (s *Service) Push(ctx context.Context, text string) bool {
	if err := s.sink.Push(ctx, text); err != nil {
		s.failures++
		log.Printf("notification failed (consecutive=%d): %v", s.failures, err)
		if s.failures == escalationThreshold {
			if err := s.sink.Push(ctx, "ALERT: notification delivery failing repeatedly"); err != nil {
				log.Printf("escalation notification failed: %v", err)
			}
		}
		return false
	}
	s.failures = 0
	return true
}

func (s *Service) ConsecutiveFailures() int { return s.failures }

// Restore reinstates the failure counter from a checkpoint.
func (s *Service) Restore(failures int) { s.failures = failures }
