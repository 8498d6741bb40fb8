// Package merge muxes the downloaded video and audio files into one
// container and names it after the video title.
package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jmagar/ytgrab/internal/ffmpeg"
	"github.com/jmagar/ytgrab/internal/helpers"
	"github.com/jmagar/ytgrab/internal/model"
)

// NoticeMergeSkipped is reported when no transcoder is available.
const NoticeMergeSkipped = "ffmpeg not available, keeping video.mp4 and audio.mp4 unmerged"

// fallbackStem names the merged file when the title sanitizes to nothing.
const fallbackStem = "merged"

// maxNameBytes is the filename length limit of common filesystems.
const maxNameBytes = 255

// Result is the outcome of a merge step. Path is empty when it was skipped.
type Result struct {
	Path   string
	Notice string
}

// Orchestrator runs the merge step.
type Orchestrator struct {
	transcoder ffmpeg.Transcoder
	logger     *zap.Logger
}

// NewOrchestrator returns a merge orchestrator. tc may be nil or unavailable,
// in which case Run skips with a notice.
func NewOrchestrator(tc ffmpeg.Transcoder, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{transcoder: tc, logger: logger}
}

// Run muxes <destDir>/video.mp4 and <destDir>/audio.mp4 into output.mp4
// without re-encoding and renames it to <sanitized title>.mp4. An existing
// file with that name is never replaced. Failures are *model.MergeError; the
// source files are left in place either way.
func (o *Orchestrator) Run(ctx context.Context, destDir string, meta *model.VideoMetadata) (Result, error) {
	if o.transcoder == nil || !o.transcoder.Available() {
		o.logger.Warn("merge skipped", zap.Error(model.ErrTranscoderUnavailable))
		return Result{Notice: NoticeMergeSkipped}, nil
	}

	video := filepath.Join(destDir, model.VideoFilename)
	audio := filepath.Join(destDir, model.AudioFilename)
	output := filepath.Join(destDir, model.MergedFilename)
	if err := o.transcoder.Run(ctx, ffmpeg.MergeArgs(video, audio, output), output); err != nil {
		return Result{}, &model.MergeError{Err: err}
	}

	target := filepath.Join(destDir, TargetName(meta))
	if _, err := os.Lstat(target); err == nil {
		return Result{}, &model.MergeError{Err: fmt.Errorf("rename %s: %s already exists", model.MergedFilename, target)}
	} else if !os.IsNotExist(err) {
		return Result{}, &model.MergeError{Err: err}
	}
	if err := os.Rename(output, target); err != nil {
		return Result{}, &model.MergeError{Err: err}
	}
	o.logger.Info("streams merged", zap.String("path", target), zap.Int64("bytes", helpers.FileSize(target)))
	return Result{Path: target}, nil
}

// TargetName returns the final filename for the merged file of meta. The
// stem is shortened on a rune boundary when the name would not fit in
// maxNameBytes.
func TargetName(meta *model.VideoMetadata) string {
	const ext = ".mp4"
	stem := helpers.SanitizeTitle(meta.DisplayTitle())
	for len(stem)+len(ext) > maxNameBytes {
		_, size := utf8.DecodeLastRuneInString(stem)
		stem = stem[:len(stem)-size]
	}
	if stem == "" {
		stem = fallbackStem
	}
	return stem + ext
}
