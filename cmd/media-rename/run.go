package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/media-rename/internal/chat"
	"github.com/fpang/media-rename/internal/cli"
	"github.com/fpang/media-rename/internal/config"
	"github.com/fpang/media-rename/internal/describe"
	"github.com/fpang/media-rename/internal/filehandler"
	"github.com/fpang/media-rename/internal/logging"
	"github.com/fpang/media-rename/internal/pipeline"
)

// runBatch resolves the configuration, runs one batch in the foreground and
// returns the process exit code.
func runBatch(cmd *cobra.Command, kind filehandler.Kind) int {
	initStart := time.Now()
	logging.Init()

	cfg, err := config.Load(cmd.Flags(), kind, configFileFlag)
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return 2
	}

	dirPath, ok := chooseDirectory(cfg)
	if !ok {
		return 0
	}
	dirPath = cli.ValidateAndResolveDirectory(dirPath)

	ctx := context.Background()
	opts := pipeline.Options{
		Fields: cfg.Fields,
		DryRun: cfg.DryRun,
	}

	switch kind {
	case filehandler.KindPhoto:
		extractor, closeExtractor := filehandler.NewPhotoExtractor()
		defer closeExtractor()
		opts.Photo = extractor
	case filehandler.KindVideo:
		if err := filehandler.CheckFFprobeAvailable(); err != nil {
			log.Error().Err(err).Msg("Missing dependency")
			return 2
		}
		opts.Video = filehandler.VideoProber{}
	}

	if cfg.Describe {
		if kind == filehandler.KindVideo && lookPath("ffmpeg") == "unavailable" {
			log.Warn().Msg("ffmpeg not found: videos will be renamed without descriptions")
		}
		client := cli.InitGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.ValidateKey)
		opts.Describer = describe.New(chat.NewDescriber(client, cfg.Model), describe.Options{
			Prompt:  cfg.Prompt,
			Timeout: cfg.Timeout,
		})
	}

	session := pipeline.NewSession()
	state, events, err := session.Start(ctx, dirPath, kind, opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to start batch")
		return 1
	}

	logStartup(cfg, kind, state.ID, dirPath, opts, time.Since(initStart))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	go watchSignals(sigCh, done, session.Cancel)

	var summary *pipeline.Summary
	for e := range events {
		cli.RenderEvent(os.Stdout, e)
		if e.Type == pipeline.EventSummary {
			summary = e.Summary
		}
	}
	session.Wait()

	if summary == nil || summary.Err != nil || summary.Failed > 0 {
		return 1
	}
	return 0
}

// watchSignals cancels the batch on every signal until done is closed.
func watchSignals(sigCh <-chan os.Signal, done <-chan struct{}, cancel func() bool) {
	for {
		select {
		case <-sigCh:
			if cancel() {
				log.Warn().Msg("Received interrupt, finishing current file…")
			}
		case <-done:
			return
		}
	}
}

// chooseDirectory returns the directory from configuration, the folder
// picker or an interactive prompt. ok is false when the user canceled the
// picker.
func chooseDirectory(cfg *config.Config) (dir string, ok bool) {
	switch {
	case cfg.Directory != "":
		return cfg.Directory, true
	case cfg.Pick:
		picked, err := cli.PickDirectory(cfg.Kind.String())
		if errors.Is(err, cli.ErrPickCanceled) {
			log.Info().Msg("Directory selection canceled")
			return "", false
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Folder picker failed")
		}
		return picked, true
	default:
		return cli.PromptForDirectory(), true
	}
}

func logStartup(cfg *config.Config, kind filehandler.Kind, runID, dir string, opts pipeline.Options, initDuration time.Duration) {
	sl := logging.NewStartupLogger(kind.String()).
		RunID(runID).
		Feature("describe", cfg.Describe).
		Feature("dryRun", cfg.DryRun).
		Config("dir", dir).
		Config("fields", cfg.Fields.String()).
		InitDuration(initDuration)

	if opts.Photo != nil {
		sl.Config("extractor", opts.Photo.Name())
		sl.Tool("exiftool", lookPath("exiftool"))
	}
	if kind == filehandler.KindVideo {
		sl.Tool("ffprobe", lookPath("ffprobe"))
		sl.Tool("ffmpeg", lookPath("ffmpeg"))
	}
	if cfg.Describe {
		sl.Config("model", cfg.Model)
		sl.Config("timeout", cfg.Timeout.String())
		if cfg.Prompt != "" {
			sl.Config("prompt", cfg.Prompt)
		}
	}
	if cfg.File != "" {
		sl.Config("configFile", cfg.File)
	}
	sl.Log()
}

func lookPath(name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		return "unavailable"
	}
	return path
}

// extList renders the keys of an extension table as ".a .b .c".
func extList(table map[string]string) string {
	exts := make([]string, 0, len(table))
	for ext := range table {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return strings.Join(exts, " ")
}
