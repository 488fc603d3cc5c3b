package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/media-rename/internal/config"
	"github.com/fpang/media-rename/internal/filehandler"
)

var configFileFlag string

// rootCmd is the main Cobra command for the media-rename CLI.
var rootCmd = &cobra.Command{
	Use:   "media-rename",
	Short: "Rename photos and videos from their metadata",
	Long: `Media Rename renames every photo or video in a directory to a name built
from its metadata: capture time, device, lens and exposure for photos;
modification time, device, resolution, frame rate and codec for videos.

An optional short description generated by Gemini can be appended to each
name. Name collisions get a _1, _2, ... suffix; rerunning over files that
were already renamed leaves them alone.

Settings come from flags, MEDIA_RENAME_* environment variables or
~/.media-rename.yaml, in that order of precedence.

Examples:
  media-rename photo -d ~/Pictures/trip
  media-rename photo -d ./shots --fields datetime,device,lens --dry-run
  media-rename video -d ./clips --describe --prompt "3 words about the scene"
  media-rename video --pick
  media-rename photo  # Interactive mode - prompts for directory`,
}

var photoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Rename photos (" + extList(filehandler.SupportedPhotoExtensions) + ")",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runBatch(cmd, filehandler.KindPhoto))
	},
}

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Rename videos (" + extList(filehandler.SupportedVideoExtensions) + ")",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runBatch(cmd, filehandler.KindVideo))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFileFlag, "config", "", "Config file (default ~/"+config.DefaultFileName+")")
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(photoCmd, videoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
