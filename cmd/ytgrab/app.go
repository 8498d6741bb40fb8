package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jmagar/ytgrab/internal/backend"
	"github.com/jmagar/ytgrab/internal/download"
	"github.com/jmagar/ytgrab/internal/ffmpeg"
	"github.com/jmagar/ytgrab/internal/model"
	"github.com/jmagar/ytgrab/internal/pipeline"
	"github.com/jmagar/ytgrab/internal/selector"
	"github.com/jmagar/ytgrab/internal/ui"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const (
	urlQuestion  = "Enter the URL of the video you want to download:"
	destQuestion = "Enter the destination (leave blank for current directory):"
)

// versionProber is implemented by transcoders that can report a version.
type versionProber interface {
	Version(ctx context.Context) (string, error)
}

// app is one invocation with every outside dependency injected.
type app struct {
	cfg         *model.Config
	logger      *zap.Logger
	transcoder  ffmpeg.Transcoder
	stdin       io.Reader
	stdout      io.Writer
	interactive bool
	newBackends func(names []string, opts backend.Options) ([]backend.Backend, error)
}

func (a *app) run(ctx context.Context) int {
	if a.cfg.CheckFfmpeg {
		return a.checkFfmpeg(ctx)
	}

	prompter := selector.NewLinePrompter(a.stdin, a.stdout, ui.PrintCatalog)
	if a.cfg.URL == "" {
		if !a.interactive {
			ui.PrintError(model.ErrMissingURL.Error() + ": pass --url or run on a terminal")
			return exitUsage
		}
		if code := a.promptTarget(prompter); code != exitOK {
			return code
		}
	}

	progress := ui.NewProgress()
	backends, err := a.newBackends(a.cfg.Backends, backend.Options{
		Logger:     a.logger,
		OnProgress: progress.Update,
	})
	if err != nil {
		ui.PrintError(err.Error())
		return exitUsage
	}

	hooks := pipeline.Hooks{
		OnMetadata:  ui.PrintMetadata,
		OnSelection: ui.PrintSelection,
		OnNotice:    ui.PrintWarning,
		OnFailure: func(attempt pipeline.AttemptError) {
			ui.PrintError("Attempt failed: " + attempt.Error())
			if next := nextBackend(backends, attempt.Backend); next != "" {
				ui.PrintFallback(attempt.Backend, next)
			}
		},
		Download: &download.Deps{
			OnStart: func(stream model.StreamDescriptor, path string) {
				ui.PrintDownload(fmt.Sprintf("Downloading %s stream %d to %s", stream.Kind, stream.Itag, path))
				progress.Start(stream.Kind.String())
			},
			OnDone: func(res model.DownloadResult) {
				progress.Finish()
				ui.PrintDownloadDone(res)
			},
		},
	}
	var p selector.Prompter
	if !a.cfg.Auto {
		p = prompter
	}
	controller := pipeline.NewController(backends, pipeline.NewRunner(a.transcoder, p, a.logger, hooks), a.logger)

	if a.cfg.ListOnly {
		return a.list(ctx, controller)
	}

	defer a.logSummary()
	mode := a.cfg.MediaType()
	ui.PrintInfo(fmt.Sprintf("%s Downloading %s", ui.GetMediaTypeIndicator(mode), ui.DescribeMediaType(mode)))
	a.logger.Info("run started",
		zap.String("mode", mode.String()),
		zap.Strings("backends", a.cfg.Backends),
		zap.Bool("auto", a.cfg.Auto))
	out, err := controller.Run(ctx, pipeline.RequestFromConfig(a.cfg))
	progress.Finish()
	if err != nil {
		var all *pipeline.AllBackendsFailedError
		if errors.As(err, &all) {
			ui.PrintError(fmt.Sprintf("All %d backends failed", len(all.Attempts)))
		} else {
			ui.PrintError(err.Error())
		}
		a.logger.Error("run failed", zap.Error(err))
		return exitFailure
	}
	ui.PrintDivider()
	if out.Mp3Path != "" {
		ui.PrintMusic("mp3 written to " + out.Mp3Path)
	}
	ui.PrintOutcome(out)
	return exitOK
}

// promptTarget asks for the URL and, when it was left at the default, the
// destination directory.
func (a *app) promptTarget(p *selector.LinePrompter) int {
	url, err := p.Ask(urlQuestion)
	if err != nil {
		ui.PrintError(err.Error())
		return exitFailure
	}
	if url == "" {
		ui.PrintError(model.ErrMissingURL.Error())
		return exitUsage
	}
	a.cfg.URL = url

	if a.cfg.DestDir != "" && a.cfg.DestDir != "." {
		return exitOK
	}
	dest, err := p.Ask(destQuestion)
	if err != nil {
		ui.PrintError(err.Error())
		return exitFailure
	}
	if dest != "" {
		a.cfg.DestDir = dest
	}
	return exitOK
}

func (a *app) checkFfmpeg(ctx context.Context) int {
	if a.transcoder == nil || !a.transcoder.Available() {
		ui.PrintWarning("ffmpeg not found; mp3 extraction and merging will be skipped")
		return exitFailure
	}
	prober, ok := a.transcoder.(versionProber)
	if !ok {
		ui.PrintSuccess("ffmpeg is available")
		return exitOK
	}
	version, err := prober.Version(ctx)
	if err != nil {
		ui.PrintError(fmt.Sprintf("ffmpeg version check failed: %v", err))
		return exitFailure
	}
	ui.PrintSuccess("ffmpeg version " + version)
	return exitOK
}

func (a *app) list(ctx context.Context, c *pipeline.Controller) int {
	cat, err := c.Inspect(ctx, a.cfg.URL)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Could not list streams: %v", err))
		return exitFailure
	}
	ui.PrintMetadata(cat.Backend, cat.Metadata)
	mode := a.cfg.MediaType()
	if mode.HasVideo() {
		ui.PrintCatalog(model.StreamKindVideo, selector.VideoCandidates(cat.Streams))
	}
	if mode.HasAudio() {
		ui.PrintCatalog(model.StreamKindAudio, selector.AudioCandidates(cat.Streams))
	}
	return exitOK
}

func (a *app) logSummary() {
	a.logger.Info("run finished",
		zap.Int("errors", ui.RunErrorCount),
		zap.Int("warnings", ui.RunWarningCount))
}

func nextBackend(backends []backend.Backend, name string) string {
	for i, b := range backends {
		if b.Name() == name && i+1 < len(backends) {
			return backends[i+1].Name()
		}
	}
	return ""
}
