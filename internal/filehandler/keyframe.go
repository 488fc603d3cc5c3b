package filehandler

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// KeyframeExtractor pulls a single still out of a video with ffmpeg.
type KeyframeExtractor struct {
	// Binary is the ffmpeg executable. Empty means "ffmpeg" from PATH.
	Binary string
}

// keyframeArgs builds the ffmpeg arguments that write the first intra-coded
// frame of videoPath to stdout as a JPEG.
func keyframeArgs(videoPath string) []string {
	return []string{
		"-v", "error",
		"-i", videoPath,
		"-vf", `select=eq(pict_type\,I)`,
		"-vframes", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	}
}

// Extract returns the first I-frame of videoPath as JPEG bytes.
func (k KeyframeExtractor) Extract(ctx context.Context, videoPath string) ([]byte, error) {
	bin := k.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	ffmpegPath, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: keyframe extraction requires ffmpeg: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegPath, keyframeArgs(videoPath)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg keyframe extraction failed: %w: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no keyframe for %s", filepath.Base(videoPath))
	}

	log.Debug().
		Str("video", filepath.Base(videoPath)).
		Int("frame_size", stdout.Len()).
		Msg("Keyframe extracted")

	return stdout.Bytes(), nil
}
