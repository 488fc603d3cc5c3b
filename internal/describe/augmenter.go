// Package describe adds an AI-generated phrase to a file's name parts. It
// never fails a file: every error is logged and reported as "no description".
package describe

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-rename/internal/assets"
	"github.com/fpang/media-rename/internal/auth"
	"github.com/fpang/media-rename/internal/filehandler"
	"github.com/fpang/media-rename/internal/naming"
	"github.com/fpang/media-rename/internal/textutil"
)

// DefaultTimeout bounds one description, including frame extraction.
const DefaultTimeout = 30 * time.Second

// Vision describes a single JPEG image.
type Vision interface {
	Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// FrameSource extracts a representative still from a video.
type FrameSource interface {
	Extract(ctx context.Context, videoPath string) ([]byte, error)
}

// Options configures an Augmenter.
type Options struct {
	// Prompt overrides the built-in request for every kind when non-empty.
	Prompt string
	// Timeout bounds each Describe call. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxDimension bounds the uploaded image edge. Zero means
	// filehandler.DefaultUploadMaxDimension.
	MaxDimension int
	// Frames overrides the ffmpeg keyframe extractor.
	Frames FrameSource
}

// Augmenter turns a media file into a sanitized description phrase.
type Augmenter struct {
	vision       Vision
	frames       FrameSource
	prompt       string
	timeout      time.Duration
	maxDimension int

	// disabled holds the persistent failure that stopped further calls.
	disabled atomic.Pointer[auth.ValidationError]
}

// New creates an Augmenter backed by vision.
func New(vision Vision, opts Options) *Augmenter {
	a := &Augmenter{
		vision:       vision,
		frames:       opts.Frames,
		prompt:       opts.Prompt,
		timeout:      opts.Timeout,
		maxDimension: opts.MaxDimension,
	}
	if a.frames == nil {
		a.frames = filehandler.KeyframeExtractor{}
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	if a.maxDimension <= 0 {
		a.maxDimension = filehandler.DefaultUploadMaxDimension
	}
	return a
}

// PromptFor returns the request sent for kind.
func (a *Augmenter) PromptFor(kind filehandler.Kind) string {
	if a.prompt != "" {
		return a.prompt
	}
	return assets.DefaultPrompt(kind.String())
}

// Describe returns a sanitized description of the file at path, or
// ("", false) when none could be produced.
func (a *Augmenter) Describe(ctx context.Context, path string, kind filehandler.Kind) (string, bool) {
	return a.DescribeKnown(ctx, path, kind, "")
}

// DescribeKnown is Describe with the name parts already derived from
// metadata, so the model does not repeat them.
func (a *Augmenter) DescribeKnown(ctx context.Context, path string, kind filehandler.Kind, known string) (string, bool) {
	file := filepath.Base(path)

	if verr := a.disabled.Load(); verr != nil {
		log.Debug().Str("file", file).Str("reason", verr.Type.String()).Msg("Description skipped: service disabled for this batch")
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	image, err := a.prepare(ctx, path, kind)
	if err != nil {
		log.Warn().Err(err).Str("file", file).Msg("Description skipped: could not prepare image")
		return "", false
	}

	start := time.Now()
	reply, err := a.vision.Describe(ctx, image, "image/jpeg", assets.RenderDescriptionPrompt(a.PromptFor(kind), known))
	elapsed := time.Since(start)

	if err != nil {
		verr := auth.Classify(err)
		log.Warn().Err(err).
			Str("file", file).
			Str("reason", verr.Type.String()).
			Dur("latency", elapsed).
			Msg("Description request failed")
		if verr.Type.Persistent() && a.disabled.CompareAndSwap(nil, verr) {
			log.Error().Err(verr).Msg("Descriptions disabled for the rest of the batch")
		}
		return "", false
	}

	description := naming.Sanitize(textutil.CleanDescription(reply))
	if description == "" {
		log.Warn().Str("file", file).Dur("latency", elapsed).Msg("Description was empty after cleaning")
		return "", false
	}

	log.Debug().
		Str("file", file).
		Str("description", description).
		Dur("latency", elapsed).
		Msg("Description generated")
	return description, true
}

// prepare produces the JPEG upload for path.
func (a *Augmenter) prepare(ctx context.Context, path string, kind filehandler.Kind) ([]byte, error) {
	var (
		img *filehandler.CompressedImage
		err error
	)
	switch kind {
	case filehandler.KindPhoto:
		img, err = filehandler.CompressForUpload(path, a.maxDimension)
	case filehandler.KindVideo:
		var frame []byte
		frame, err = a.frames.Extract(ctx, path)
		if err != nil {
			return nil, err
		}
		img, err = filehandler.CompressReader(bytes.NewReader(frame), a.maxDimension)
	default:
		return nil, fmt.Errorf("unsupported media kind %s", kind)
	}
	if err != nil {
		return nil, err
	}
	return img.Data, nil
}

// Disabled returns the failure that stopped description calls, or nil.
func (a *Augmenter) Disabled() error {
	if verr := a.disabled.Load(); verr != nil {
		return verr
	}
	return nil
}
