// Package revocation keeps the ledger of revoked access tokens and reclaims
// rows whose tokens have expired anyway.
package revocation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/exeat-management/internal"
)

// Ledger records revoked tokens by signature segment.
type Ledger interface {
	Revoke(ctx context.Context, sig string, exp time.Time) error
	IsRevoked(ctx context.Context, sig string) (bool, error)
}

// SweepStore deletes ledger rows that expired before now.
type SweepStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Signature returns the part of a compact JWT after the last ".".
func Signature(token string) string {
	if i := strings.LastIndex(token, "."); i >= 0 {
		return token[i+1:]
	}
	return token
}

type Sweeper struct {
	store    SweepStore
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewSweeper(store SweepStore, interval, timeout time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SweepOnce deletes every ledger row with exp < now and reports how many went.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	tickCtx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	removed, err := s.store.DeleteExpired(tickCtx, s.now())
	if err != nil {
		s.logger.Error("revocation sweep failed", "error", err)
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("revocation sweep removed expired tokens", "count", removed)
	}
	return removed, nil
}

// Run sweeps every interval until ctx is cancelled. Failures are logged and
// retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("revocation sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("revocation sweeper stopped")
			return
		case <-ticker.C:
			_, _ = s.SweepOnce(ctx)
		}
	}
}

// Start runs the sweeper on its own goroutine and returns a channel closed once it exits.
func (s *Sweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}
