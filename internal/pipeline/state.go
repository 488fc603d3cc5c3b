package pipeline

import (
	"sync/atomic"

	"github.com/fpang/media-rename/internal/filehandler"
)

// RunState is the shared handle on one batch. The worker reads the cancel
// flag before each file; any goroutine may set it.
type RunState struct {
	ID   string
	Dir  string
	Kind filehandler.Kind

	canceled atomic.Bool
}

// NewRunState creates the state for a batch over dir.
func NewRunState(id, dir string, kind filehandler.Kind) *RunState {
	return &RunState{ID: id, Dir: dir, Kind: kind}
}

// Cancel asks the worker to stop before the next file. The file in flight
// finishes.
func (s *RunState) Cancel() {
	s.canceled.Store(true)
}

// Canceled reports whether Cancel was called.
func (s *RunState) Canceled() bool {
	return s.canceled.Load()
}
