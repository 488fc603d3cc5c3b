package pipeline

import "time"

// Outcome classifies how one file ended.
type Outcome int

const (
	// OutcomeSucceeded means the file was renamed (or would be, in a dry run).
	OutcomeSucceeded Outcome = iota
	// OutcomeSkipped means no usable name could be derived.
	OutcomeSkipped
	// OutcomeFailed means extraction or the rename itself returned an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// EventType discriminates Event payloads.
type EventType int

const (
	EventStarted EventType = iota
	EventProgress
	EventSummary
)

// Event is sent from the batch worker to whoever renders progress.
type Event struct {
	Type  EventType
	RunID string

	// EventStarted and EventProgress
	Total int

	// EventProgress
	Index   int
	File    string
	NewName string
	Outcome Outcome
	Err     error

	// EventSummary
	Summary *Summary
}

// EventSink receives events synchronously from the worker. It must not block
// for long; Session forwards to a buffered channel.
type EventSink func(Event)

// Summary is the final tally of a batch.
type Summary struct {
	RunID     string
	Dir       string
	Total     int
	Processed int
	Succeeded int
	Skipped   int
	Failed    int
	Canceled  bool
	DryRun    bool
	Err       error

	Described       int
	DescribeCalls   int
	DescribeLatency time.Duration
	Elapsed         time.Duration
}

func (s *Summary) count(o Outcome) {
	s.Processed++
	switch o {
	case OutcomeSucceeded:
		s.Succeeded++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}
