package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"report-intake-gateway/pkg/models/private"
)

type Policy string

const (
	// PolicyCooldown denies while the client's last accepted submission is
	// younger than Cooldown.
	PolicyCooldown Policy = "cooldown"
	// PolicyWindow denies once the client has MaxRequests accepted
	// submissions inside the current Window.
	PolicyWindow Policy = "window"
)

type Config struct {
	Policy      Policy
	Cooldown    time.Duration
	MaxRequests int
	Window      time.Duration
}

// Retention is how long a submission record stays meaningful; records
// older than this are safe to purge.
func (c Config) Retention() time.Duration {
	if c.Policy == PolicyWindow {
		return c.Window
	}
	return c.Cooldown
}

type submissions interface {
	GetSubmission(ctx context.Context, id string) (*private.SubmissionRecord, error)
	SetSubmission(ctx context.Context, id string, record private.SubmissionRecord) error
}

type Gate interface {
	Allow(ctx context.Context, id string) (bool, error)
}

type service struct {
	store  submissions
	config Config
	logger *slog.Logger
	now    func() time.Time

	// mu serializes the read-modify-write across Get and Set; without it
	// two concurrent calls could both read a stale record and both be
	// admitted.
	mu sync.Mutex
}

// Allow decides whether a submission from id may proceed. Denied calls
// leave the client's record untouched, so a blocked client's cooldown
// does not keep extending.
func (s *service) Allow(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	record, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return false, err
	}

	switch s.config.Policy {
	case PolicyWindow:
		if record != nil && now.Sub(record.WindowStart) < s.config.Window {
			if record.Count >= s.config.MaxRequests {
				s.logger.Debug("submission denied by window policy",
					slog.String("id", id), slog.Int("count", record.Count))
				return false, nil
			}

			record.Count++
			record.LastSubmission = now
			return true, s.store.SetSubmission(ctx, id, *record)
		}

		// Absent record or elapsed window: start a fresh one.
		return true, s.store.SetSubmission(ctx, id, private.SubmissionRecord{
			Count:          1,
			WindowStart:    now,
			LastSubmission: now,
		})

	default:
		if record != nil && now.Sub(record.LastSubmission) < s.config.Cooldown {
			s.logger.Debug("submission denied by cooldown policy", slog.String("id", id))
			return false, nil
		}

		return true, s.store.SetSubmission(ctx, id, private.SubmissionRecord{
			Count:          1,
			WindowStart:    now,
			LastSubmission: now,
		})
	}
}

func NewService(store submissions, config Config, logger *slog.Logger) (Gate, error) {
	if store == nil {
		return nil, fmt.Errorf("submissions store is required")
	}

	switch config.Policy {
	case PolicyCooldown:
		if config.Cooldown <= 0 {
			return nil, fmt.Errorf("cooldown policy requires a positive cooldown")
		}
	case PolicyWindow:
		if config.MaxRequests <= 0 || config.Window <= 0 {
			return nil, fmt.Errorf("window policy requires positive max requests and window")
		}
	default:
		return nil, fmt.Errorf("unknown rate limit policy: %q", config.Policy)
	}

	return &service{
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
	}, nil
}
