// Package filehandler wraps the external tools and libraries that read media
// files on behalf of the rename engine.
//
// Metadata extraction follows a split-provider model:
//   - Photos: exiftool (go-exiftool) with pure Go fallbacks (goexif, imagemeta)
//   - Videos: ffprobe subprocess, JSON output
//
// It also prepares still images for the description service: photos are
// downscaled and re-encoded under a size ceiling, videos contribute their
// first intra-coded frame via ffmpeg.
package filehandler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Kind is the media family a batch operates on.
type Kind int

const (
	KindPhoto Kind = iota
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SupportedPhotoExtensions lists the photo extensions eligible for renaming.
var SupportedPhotoExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".nef":  "image/x-nikon-nef",
	".tiff": "image/tiff",
	".dng":  "image/x-adobe-dng",
}

// SupportedVideoExtensions lists the video extensions eligible for renaming.
var SupportedVideoExtensions = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".avi": "video/x-msvideo",
	".mkv": "video/x-matroska",
}

// GetMIMEType returns the MIME type for a given file extension.
func GetMIMEType(ext string) (string, error) {
	ext = strings.ToLower(ext)

	if mimeType, ok := SupportedPhotoExtensions[ext]; ok {
		return mimeType, nil
	}

	if mimeType, ok := SupportedVideoExtensions[ext]; ok {
		return mimeType, nil
	}

	return "", fmt.Errorf("unsupported file extension: %s", ext)
}

// IsPhoto returns true if the file extension corresponds to a supported photo.
func IsPhoto(ext string) bool {
	_, ok := SupportedPhotoExtensions[strings.ToLower(ext)]
	return ok
}

// IsVideo returns true if the file extension corresponds to a supported video.
func IsVideo(ext string) bool {
	_, ok := SupportedVideoExtensions[strings.ToLower(ext)]
	return ok
}

// Matches reports whether name has an extension of the given kind.
func (k Kind) Matches(name string) bool {
	ext := filepath.Ext(name)
	switch k {
	case KindPhoto:
		return IsPhoto(ext)
	case KindVideo:
		return IsVideo(ext)
	}
	return false
}

// ListEligible returns the names of regular files in dir whose extension
// matches kind, in directory-listing order. Subdirectories are not visited.
func ListEligible(dir string, kind Kind) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if kind.Matches(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	log.Debug().
		Str("dir", dir).
		Str("kind", kind.String()).
		Int("eligible", len(names)).
		Int("entries", len(entries)).
		Msg("Directory listed")

	return names, nil
}
