package service

import (
	"context"
	"sync"
	"time"

	"github.com/mindmap-server/internal/auth"
	"github.com/rs/zerolog"
)

// sessionSweeper is the concrete implementation of SessionSweeper
type sessionSweeper struct {
	sessions *auth.SessionManager
	interval time.Duration
	log      zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	running  bool
	mu       sync.Mutex
}

func newSessionSweeper(sessions *auth.SessionManager, interval time.Duration, log zerolog.Logger) *sessionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &sessionSweeper{
		sessions: sessions,
		interval: interval,
		log:      log.With().Str("service", "session_sweeper").Logger(),
	}
}

// Start runs the sweep loop until ctx is cancelled or Stop is called. It blocks.
func (s *sessionSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	defer close(s.done)

	s.log.Info().Dur("interval", s.interval).Msg("Session sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Session sweeper stopping")
			return
		case <-ticker.C:
			s.Sweep(s.ctx)
		}
	}
}

// Stop cancels the loop and waits for it to exit
func (s *sessionSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.done
	s.running = false
	s.log.Info().Msg("Session sweeper stopped")
}

// Sweep deletes expired sessions once
func (s *sessionSweeper) Sweep(ctx context.Context) {
	// a panicking store must not take the process down
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Session sweep panicked - recovered")
		}
	}()

	n, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to sweep expired sessions")
		return
	}
	if n > 0 {
		s.log.Info().Int64("count", n).Msg("Expired sessions removed")
	}
}
