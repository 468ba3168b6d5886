package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often idle sessions are looked for when the
// idle timeout does not suggest a shorter period.
const DefaultSweepInterval = time.Minute

// SessionSweeper closes idle sessions on a timer.
type SessionSweeper struct {
	sessions *Sessions
	logger   *slog.Logger
	idle     time.Duration
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSessionSweeper creates a sweeper closing sessions idle for longer than
// idle. A zero idle disables it.
func NewSessionSweeper(sessions *Sessions, idle time.Duration, logger *slog.Logger) *SessionSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	interval := DefaultSweepInterval
	if idle > 0 && idle/2 < interval {
		interval = idle / 2
	}
	return &SessionSweeper{
		sessions: sessions,
		logger:   logger,
		idle:     idle,
		interval: interval,
	}
}

// Start begins sweeping in a background goroutine.
// If disabled, this is a no-op.
func (p *SessionSweeper) Start(ctx context.Context) {
	if p.idle <= 0 {
		p.logger.Info("session sweeper disabled")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Go(func() {
		p.run(ctx)
	})

	p.logger.Info("session sweeper started",
		slog.Duration("idle_timeout", p.idle),
		slog.Duration("interval", p.interval),
	)
}

// Stop cancels the background goroutine and waits for it to finish.
func (p *SessionSweeper) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Info("session sweeper stopped")
}

func (p *SessionSweeper) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep()
		}
	}
}

// Sweep closes idle sessions once and returns how many were closed.
func (p *SessionSweeper) Sweep() int {
	expired := p.sessions.Expire(p.idle)
	for _, id := range expired {
		p.logger.Info("session expired", slog.String("session_id", id))
	}
	if len(expired) > 0 {
		p.logger.Debug("session sweep", slog.Int("expired", len(expired)), slog.Int("live", p.sessions.Len()))
	}
	return len(expired)
}
