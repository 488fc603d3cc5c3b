// Package pipeline drives a rename batch: it lists eligible files, derives
// a name for each from its metadata (and optionally an AI description),
// resolves collisions against the live directory and renames in place.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-rename/internal/filehandler"
	"github.com/fpang/media-rename/internal/metrics"
	"github.com/fpang/media-rename/internal/naming"
)

// DefaultProbeTimeout bounds one ffprobe call.
const DefaultProbeTimeout = 30 * time.Second

// Describer produces the optional description part of a name.
type Describer interface {
	DescribeKnown(ctx context.Context, path string, kind filehandler.Kind, known string) (string, bool)
}

// VideoProber reads the video record for a file.
type VideoProber interface {
	Probe(ctx context.Context, path string) (naming.VideoRecord, error)
}

// Options configures one batch.
type Options struct {
	// Fields selects the name parts. FieldDescription is honoured only when
	// Describer is set.
	Fields naming.Selection

	Photo     filehandler.PhotoExtractor
	Video     VideoProber
	Describer Describer

	// DryRun logs the computed names without renaming.
	DryRun bool

	// ProbeTimeout bounds each ffprobe call. Zero means DefaultProbeTimeout.
	ProbeTimeout time.Duration

	// Resolver and Rename default to the live directory and os.Rename.
	Resolver *naming.Resolver
	Rename   func(oldPath, newPath string) error
}

// SeparatorFor returns the name separator used for kind.
func SeparatorFor(kind filehandler.Kind) naming.Separator {
	if kind == filehandler.KindVideo {
		return naming.VideoSeparator
	}
	return naming.PhotoSeparator
}

// Run processes every eligible file in state.Dir sequentially and returns
// the tally. No per-file error aborts the batch; cancellation is observed
// between files only.
func Run(ctx context.Context, state *RunState, opts Options, sink EventSink) Summary {
	start := time.Now()
	if sink == nil {
		sink = func(Event) {}
	}

	sep := SeparatorFor(state.Kind)
	if opts.Resolver == nil {
		opts.Resolver = naming.NewResolver(sep)
	}
	if opts.Rename == nil {
		opts.Rename = os.Rename
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}

	summary := Summary{RunID: state.ID, Dir: state.Dir, DryRun: opts.DryRun}

	names, err := filehandler.ListEligible(state.Dir, state.Kind)
	if err != nil {
		log.Error().Err(err).Str("dir", state.Dir).Msg("File discovery failed")
		summary.Err = err
		return finish(state, &summary, start, sink)
	}
	summary.Total = len(names)

	log.Info().
		Str("run", state.ID).
		Str("dir", state.Dir).
		Str("kind", state.Kind.String()).
		Str("fields", opts.Fields.String()).
		Int("files", len(names)).
		Bool("dry_run", opts.DryRun).
		Msg("Batch started")
	sink(Event{Type: EventStarted, RunID: state.ID, Total: len(names)})

	p := &processor{state: state, opts: opts, sep: sep, summary: &summary}

	for i, name := range names {
		if state.Canceled() {
			summary.Canceled = true
			log.Warn().
				Str("run", state.ID).
				Int("remaining", len(names)-i).
				Msg("Batch canceled by user")
			break
		}

		newName, outcome, err := p.processFile(ctx, name)
		summary.count(outcome)

		sink(Event{
			Type:    EventProgress,
			RunID:   state.ID,
			Index:   i + 1,
			Total:   len(names),
			File:    name,
			NewName: newName,
			Outcome: outcome,
			Err:     err,
		})
	}

	return finish(state, &summary, start, sink)
}

// finish logs the summary line, flushes batch metrics and emits the
// summary event.
func finish(state *RunState, summary *Summary, start time.Time, sink EventSink) Summary {
	summary.Elapsed = time.Since(start)

	log.Info().
		Str("run", state.ID).
		Int("processed", summary.Processed).
		Int("succeeded", summary.Succeeded).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Bool("canceled", summary.Canceled).
		Dur("elapsed", summary.Elapsed).
		Msgf("Processed %d, success %d, skipped %d, failed %d",
			summary.Processed, summary.Succeeded, summary.Skipped, summary.Failed)

	rec := metrics.New("MediaRename").
		Dimension("Kind", state.Kind.String()).
		Metric("FilesProcessed", float64(summary.Processed), metrics.UnitCount).
		Metric("FilesSucceeded", float64(summary.Succeeded), metrics.UnitCount).
		Metric("FilesSkipped", float64(summary.Skipped), metrics.UnitCount).
		Metric("FilesFailed", float64(summary.Failed), metrics.UnitCount).
		Metric("BatchMs", float64(summary.Elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Property("canceled", summary.Canceled).
		Property("dryRun", summary.DryRun)
	if summary.DescribeCalls > 0 {
		rec.Metric("DescribeCalls", float64(summary.DescribeCalls), metrics.UnitCount).
			Metric("Described", float64(summary.Described), metrics.UnitCount).
			Metric("DescribeAvgMs", float64(summary.DescribeLatency.Milliseconds())/float64(summary.DescribeCalls), metrics.UnitMilliseconds)
	}
	rec.Flush()

	out := *summary
	sink(Event{Type: EventSummary, RunID: state.ID, Total: summary.Total, Summary: &out})
	return out
}

// processor carries the per-batch context through processFile.
type processor struct {
	state   *RunState
	opts    Options
	sep     naming.Separator
	summary *Summary

	// claimed holds the targets a dry run would have created so far.
	claimed []string
}

// processFile handles one file: extract → normalize → describe →
// synthesize → resolve → rename.
func (p *processor) processFile(ctx context.Context, name string) (string, Outcome, error) {
	path := filepath.Join(p.state.Dir, name)
	ext := strings.ToLower(filepath.Ext(name))

	parts, err := p.extract(ctx, path)
	if err != nil {
		if errors.Is(err, filehandler.ErrNoMetadata) {
			log.Warn().Err(err).Str("file", name).Msg("Skipped: no usable metadata")
			return "", OutcomeSkipped, err
		}
		log.Error().Err(err).Str("file", name).Msg("Failed to read metadata")
		return "", OutcomeFailed, err
	}

	if p.opts.Describer != nil && p.opts.Fields.Has(naming.FieldDescription) {
		known := naming.Synthesize(parts, p.sep)
		start := time.Now()
		desc, ok := p.opts.Describer.DescribeKnown(ctx, path, p.state.Kind, known)
		p.summary.DescribeCalls++
		p.summary.DescribeLatency += time.Since(start)
		if ok {
			p.summary.Described++
			parts = parts.Add(naming.FieldDescription, desc)
		}
	}

	base := naming.Synthesize(parts, p.sep)
	if base == "" {
		log.Warn().Str("file", name).Msg("Skipped: no name parts available")
		return "", OutcomeSkipped, nil
	}

	if base+ext == name {
		log.Info().Str("file", name).Msg("Already named, unchanged")
		return name, OutcomeSucceeded, nil
	}

	newName, err := p.opts.Resolver.Resolve(p.state.Dir, base, ext, p.claimed...)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("Failed to resolve target name")
		return "", OutcomeFailed, err
	}

	if p.opts.DryRun {
		p.claimed = append(p.claimed, newName)
		log.Info().Str("file", name).Msgf("%s -> %s (dry run)", name, newName)
		return newName, OutcomeSucceeded, nil
	}

	if err := p.opts.Rename(path, filepath.Join(p.state.Dir, newName)); err != nil {
		err = fmt.Errorf("rename %s: %w", name, err)
		log.Error().Err(err).Str("file", name).Msg("Rename failed")
		return "", OutcomeFailed, err
	}

	log.Info().Msgf("%s -> %s", name, newName)
	return newName, OutcomeSucceeded, nil
}

// extract reads and normalizes metadata for the batch's media kind.
func (p *processor) extract(ctx context.Context, path string) (naming.Parts, error) {
	var (
		parts    naming.Parts
		warnings []naming.Warning
	)

	switch p.state.Kind {
	case filehandler.KindPhoto:
		if p.opts.Photo == nil {
			return nil, fmt.Errorf("no photo extractor configured")
		}
		rec, err := filehandler.ExtractPhotoRecord(p.opts.Photo, path)
		if err != nil {
			return nil, err
		}
		parts, warnings = naming.NormalizePhoto(rec, p.opts.Fields)

	case filehandler.KindVideo:
		if p.opts.Video == nil {
			return nil, fmt.Errorf("no video prober configured")
		}
		probeCtx, cancel := context.WithTimeout(ctx, p.opts.ProbeTimeout)
		rec, err := p.opts.Video.Probe(probeCtx, path)
		cancel()
		if err != nil {
			return nil, err
		}
		parts, warnings = naming.NormalizeVideo(rec, p.opts.Fields)

	default:
		return nil, fmt.Errorf("unsupported media kind %s", p.state.Kind)
	}

	for _, w := range warnings {
		log.Warn().
			Str("file", filepath.Base(path)).
			Str("field", w.Field.String()).
			Str("raw", truncate(w.Raw, 80)).
			Err(w.Err).
			Msg("Field omitted")
	}
	return parts, nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
