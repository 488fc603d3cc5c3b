package cli

import (
	"fmt"
	"io"

	"github.com/fpang/media-rename/internal/pipeline"
)

// RenderEvent writes a one-line, human-readable form of e to w. It is the
// only writer of batch progress to the terminal.
func RenderEvent(w io.Writer, e pipeline.Event) {
	switch e.Type {
	case pipeline.EventStarted:
		fmt.Fprintf(w, "Renaming %d file(s)\n", e.Total)

	case pipeline.EventProgress:
		switch e.Outcome {
		case pipeline.OutcomeSucceeded:
			if e.NewName == e.File {
				fmt.Fprintf(w, "[%d/%d] %s (unchanged)\n", e.Index, e.Total, e.File)
			} else {
				fmt.Fprintf(w, "[%d/%d] %s -> %s\n", e.Index, e.Total, e.File, e.NewName)
			}
		case pipeline.OutcomeSkipped:
			fmt.Fprintf(w, "[%d/%d] %s skipped\n", e.Index, e.Total, e.File)
		default:
			fmt.Fprintf(w, "[%d/%d] %s failed: %v\n", e.Index, e.Total, e.File, e.Err)
		}

	case pipeline.EventSummary:
		s := e.Summary
		if s == nil {
			return
		}
		if s.Err != nil {
			fmt.Fprintf(w, "Batch aborted: %v\n", s.Err)
			return
		}
		status := "Done"
		if s.Canceled {
			status = "Canceled"
		}
		if s.DryRun {
			status += " (dry run)"
		}
		fmt.Fprintf(w, "%s: processed %d, success %d, skipped %d, failed %d in %s\n",
			status, s.Processed, s.Succeeded, s.Skipped, s.Failed, FormatDurationShort(s.Elapsed))
		if s.DescribeCalls > 0 {
			fmt.Fprintf(w, "Descriptions: %d/%d\n", s.Described, s.DescribeCalls)
		}
	}
}
