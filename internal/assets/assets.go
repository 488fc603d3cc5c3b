// Package assets provides embedded static assets for the application.
package assets

import (
	_ "embed"
	"strings"
)

// photoDefaultPrompt is the description request used for photos when no
// --prompt is given.
//
//go:embed prompts/photo-default.txt
var photoDefaultPrompt string

// videoDefaultPrompt is the description request used for video keyframes
// when no --prompt is given.
//
//go:embed prompts/video-default.txt
var videoDefaultPrompt string

// DefaultPrompt returns the built-in description request for a media kind
// ("photo" or "video").
func DefaultPrompt(kind string) string {
	if kind == "video" {
		return strings.TrimSpace(videoDefaultPrompt)
	}
	return strings.TrimSpace(photoDefaultPrompt)
}
