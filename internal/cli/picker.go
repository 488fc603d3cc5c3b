package cli

import (
	"errors"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// ErrPickCanceled is returned when the user closes the folder picker.
var ErrPickCanceled = errors.New("directory selection canceled")

// PickDirectory opens a native folder picker titled for the media kind.
func PickDirectory(kind string) (string, error) {
	selected, err := zenity.SelectFile(
		zenity.Directory(),
		zenity.Title("Select folder with "+kind+"s to rename"),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrPickCanceled
		}
		return "", err
	}
	log.Debug().Str("dir", selected).Msg("Directory picked")
	return selected, nil
}
