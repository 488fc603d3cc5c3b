package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-rename/internal/filehandler"
	"github.com/fpang/media-rename/internal/jobs"
	"github.com/fpang/media-rename/internal/metrics"
)

// ErrBatchActive is returned by Session.Start while another batch runs.
var ErrBatchActive = errors.New("a batch is already running")

// eventBuffer lets the worker run ahead of a slow renderer by a few files.
const eventBuffer = 16

// Session owns the single batch a process may run at a time.
type Session struct {
	mu     sync.Mutex
	active *RunState
	done   chan struct{}
}

// NewSession returns an idle Session.
func NewSession() *Session {
	return &Session{}
}

// Start launches a batch over dir in a new worker goroutine. The returned
// channel delivers every event and is closed after the summary event; by
// then the session is idle again.
// Starting while a batch is active fails with ErrBatchActive.
func (s *Session) Start(ctx context.Context, dir string, kind filehandler.Kind, opts Options) (*RunState, <-chan Event, error) {
	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		log.Warn().Str("active_run", s.active.ID).Msg("Rejected batch start: another batch is running")
		return nil, nil, ErrBatchActive
	}
	state := NewRunState(jobs.GenerateID(kind.String()+"-"), dir, kind)
	done := make(chan struct{})
	s.active = state
	s.done = done
	s.mu.Unlock()

	metrics.SetDefaultDimension("RunId", state.ID)

	events := make(chan Event, eventBuffer)
	go func() {
		defer close(done)
		defer close(events)
		defer s.release(state)
		Run(ctx, state, opts, func(e Event) { events <- e })
	}()

	return state, events, nil
}

func (s *Session) release(state *RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == state {
		s.active = nil
		s.done = nil
	}
	metrics.SetDefaultDimension("RunId", "")
}

// Cancel requests cancellation of the active batch. It reports whether a
// batch was running.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return false
	}
	s.active.Cancel()
	log.Info().Str("run", s.active.ID).Msg("Cancellation requested, finishing current file")
	return true
}

// Active returns the running batch, or nil.
func (s *Session) Active() *RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Wait blocks until the active batch, if any, has fully stopped.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}
