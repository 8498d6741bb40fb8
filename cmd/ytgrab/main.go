// Command ytgrab downloads the video and audio streams of an online video,
// optionally merging them and extracting an mp3.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jmagar/ytgrab/internal/backend"
	"github.com/jmagar/ytgrab/internal/config"
	"github.com/jmagar/ytgrab/internal/ffmpeg"
	"github.com/jmagar/ytgrab/internal/logging"
	"github.com/jmagar/ytgrab/internal/selector"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseCfg()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse config/args: %v\n", err)
		return exitUsage
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, FilePath: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()
	logger = logging.WithRunID(logger, logging.NewRunID())
	if config.LoadedConfigPath != "" {
		logger.Debug("config loaded", zap.String("path", config.LoadedConfigPath))
	}

	a := &app{
		cfg:         cfg,
		logger:      logger,
		transcoder:  ffmpeg.New(cfg.FfmpegPath),
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		interactive: selector.IsTerminal(os.Stdin),
		newBackends: backend.New,
	}
	return a.run(context.Background())
}
