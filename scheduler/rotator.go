package scheduler

import (
	"fmt"
	"time"

	"rollcall_backend/tokens"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionLister returns the sessions whose tokens are due for rotation.
type SessionLister interface {
	ListRotatable(now time.Time) ([]int, error)
}

// Rotator drives periodic token rotation. The issuer itself decides whether
// a given session's token actually needs replacing, so tick timing only has
// to be at least once per rotation interval, never exact.
type Rotator struct {
	issuer   *tokens.Issuer
	sessions SessionLister
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewRotator(issuer *tokens.Issuer, sessions SessionLister, interval time.Duration, logger *zap.Logger) *Rotator {
	return &Rotator{
		issuer:   issuer,
		sessions: sessions,
		interval: interval,
		logger:   logger,
	}
}

// Start schedules the rotation job and returns. The job runs until Stop.
func (r *Rotator) Start() error {
	r.cron = cron.New()
	spec := fmt.Sprintf("@every %ds", int(r.interval.Seconds()))
	if _, err := r.cron.AddFunc(spec, r.RotateAll); err != nil {
		return fmt.Errorf("error scheduling token rotation: %w", err)
	}
	r.cron.Start()
	r.logger.Info("token rotation scheduled", zap.Duration("interval", r.interval))
	return nil
}

func (r *Rotator) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// RotateAll visits every running session that holds an unsuperseded token.
// Per-session failures are logged and skipped so one bad session cannot
// stall rotation for the rest.
func (r *Rotator) RotateAll() {
	ids, err := r.sessions.ListRotatable(time.Now())
	if err != nil {
		r.logger.Error("failed to list sessions for rotation", zap.Error(err))
		return
	}

	for _, id := range ids {
		if _, err := r.issuer.Rotate(id, false); err != nil {
			// A session can end between the listing and the rotate call.
			if err == tokens.ErrSessionClosed {
				continue
			}
			r.logger.Error("failed to rotate session token",
				zap.Int("session_id", id),
				zap.Error(err),
			)
		}
	}
}
