package filehandler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-rename/internal/naming"
)

// CheckFFprobeAvailable checks if ffprobe is available in the system PATH.
// Returns nil if ffprobe is available, or an error describing the issue.
func CheckFFprobeAvailable() error {
	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return fmt.Errorf("ffprobe not found in PATH: video renaming is unavailable. Install FFmpeg with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)")
	}
	log.Debug().Str("path", path).Msg("ffprobe found")
	return nil
}

// ffprobeOutput represents the JSON structure from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string            `json:"filename"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

type ffprobeStream struct {
	Index      int               `json:"index"`
	CodecName  string            `json:"codec_name"`
	CodecType  string            `json:"codec_type"`
	Profile    string            `json:"profile"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	RFrameRate string            `json:"r_frame_rate"`
	Tags       map[string]string `json:"tags"`
}

// VideoProber runs ffprobe and assembles the naming.VideoRecord for a file.
type VideoProber struct {
	// Binary is the ffprobe executable. Empty means "ffprobe" from PATH.
	Binary string
}

// Probe extracts the container tags, first video stream and modification
// time of path. Any ffprobe failure is returned as an error; the caller
// counts the file as failed.
func (p VideoProber) Probe(ctx context.Context, path string) (naming.VideoRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return naming.VideoRecord{}, fmt.Errorf("failed to stat file: %w", err)
	}

	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return naming.VideoRecord{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	rec, err := parseProbeOutput(output)
	if err != nil {
		return naming.VideoRecord{}, err
	}
	rec.ModTime = info.ModTime()

	log.Debug().
		Str("path", path).
		Int("format_tags", len(rec.FormatTags)).
		Bool("has_video_stream", rec.VideoStream != nil).
		Msg("Video probed")

	return rec, nil
}

// parseProbeOutput decodes ffprobe JSON into a record without ModTime.
func parseProbeOutput(data []byte) (naming.VideoRecord, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return naming.VideoRecord{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	rec := naming.VideoRecord{FormatTags: probe.Format.Tags}
	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		rec.VideoStream = &naming.Stream{
			CodecName:  stream.CodecName,
			Profile:    stream.Profile,
			Width:      stream.Width,
			Height:     stream.Height,
			RFrameRate: stream.RFrameRate,
		}
		break
	}
	return rec, nil
}
