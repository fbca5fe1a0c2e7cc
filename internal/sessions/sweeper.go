package sessions

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/config"
)

type Expirer interface {
	ExpireIdleSessions(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper ends sessions whose browser stopped sending heartbeats without
// reaching the unload beacon.
type Sweeper struct {
	store    Expirer
	idle     time.Duration
	interval time.Duration
	logger   *logrus.Logger
	now      func() time.Time
}

func NewSweeper(store Expirer, cfg *config.SessionsConfig, logger *logrus.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		idle:     cfg.IdleTimeout,
		interval: cfg.SweepInterval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Session sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass and returns how many sessions it ended.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	n, err := s.store.ExpireIdleSessions(ctx, s.now().Add(-s.idle))
	if err != nil {
		s.logger.WithError(err).Error("Idle session sweep failed")
		return 0
	}
	if n > 0 {
		s.logger.WithField("sessions", n).Info("Ended idle sessions")
	}
	return n
}
