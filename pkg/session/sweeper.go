package session

import (
	"context"
	"sync"
	"time"

	"rag-api-explorer-be/internal/pkg/logger"
)

const DefaultSweepInterval = time.Hour

// Sweeper runs Manager.Sweep on a ticker. The host starts and stops it.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   logger.ILogger
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(manager *Manager, interval time.Duration, log logger.ILogger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		manager:  manager,
		interval: interval,
		logger:   log,
		now:      time.Now,
	}
}

// Start launches the loop. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)

	s.logger.Info("SWEEPER", "Session sweeper started", map[string]interface{}{
		"interval": s.interval.String(),
	})
}

// Stop cancels the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	s.logger.Info("SWEEPER", "Session sweeper stopped", nil)
}

func (s *Sweeper) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.manager.Sweep(s.now())
		}
	}
}
