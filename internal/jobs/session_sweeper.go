// session_sweeper.go implements the SessionSweeper background job, which
// periodically deletes sessions past their expiry so the sessions table does
// not grow without bound. Login always re-creates a session row, so sweeping
// is safe at any time; an expired token already fails JWT verification before
// the session table is ever consulted.
package jobs

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/orgboard/orgboard/internal/db/repositories"
	"github.com/orgboard/orgboard/internal/telemetry"
)

// SessionSweeper periodically removes expired session rows.
type SessionSweeper struct {
	sessions *repositories.SessionRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewSessionSweeper creates a new sweeper. A non-positive interval falls back
// to hourly.
func NewSessionSweeper(db *sql.DB, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionSweeper{
		sessions: repositories.NewSessionRepository(db),
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background sweep loop. It runs one sweep immediately, then
// repeats on the configured interval. The loop exits when ctx is cancelled or
// Stop is called.
func (s *SessionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("session sweeper started", "interval", s.interval)

	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			slog.Info("session sweeper stopped")
			return
		case <-ctx.Done():
			slog.Info("session sweeper context cancelled")
			return
		}
	}
}

// Stop signals the background loop to exit.
func (s *SessionSweeper) Stop() {
	close(s.stopChan)
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	removed, err := s.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		return
	}
	if removed > 0 {
		telemetry.SessionsPurgedTotal.Add(float64(removed))
		slog.Info("expired sessions removed", "count", removed)
	}
}
