package download

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jmagar/ytgrab/internal/ffmpeg"
	"github.com/jmagar/ytgrab/internal/helpers"
	"github.com/jmagar/ytgrab/internal/model"
)

// NoticeMp3Skipped is reported when mp3 extraction is requested but no
// transcoder is available.
const NoticeMp3Skipped = "ffmpeg not available, skipping mp3 extraction"

// StreamDownloader is the part of a backend the orchestrator drives.
type StreamDownloader interface {
	Name() string
	DownloadStream(ctx context.Context, meta *model.VideoMetadata, stream model.StreamDescriptor, destDir, filename string) (model.DownloadResult, error)
}

// Request describes one download step.
type Request struct {
	DestDir   string
	Mode      model.MediaType
	CreateMp3 bool
}

// Result is what the download step left in the destination directory.
type Result struct {
	DestDir   string
	Downloads []model.DownloadResult
	Mp3Path   string
	Notices   []string
}

// Path returns the downloaded file of the given kind, or "".
func (r Result) Path(kind model.StreamKind) string {
	for _, d := range r.Downloads {
		if d.Kind == kind {
			return d.Path
		}
	}
	return ""
}

// Orchestrator downloads streams one after another, video first.
type Orchestrator struct {
	transcoder ffmpeg.Transcoder
	logger     *zap.Logger
	deps       *Deps
}

// NewOrchestrator returns an orchestrator using tc for mp3 extraction. tc
// may be nil or unavailable.
func NewOrchestrator(tc ffmpeg.Transcoder, logger *zap.Logger, deps *Deps) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{transcoder: tc, logger: logger, deps: deps}
}

// Run downloads the streams req.Mode needs from sel into req.DestDir. Every
// failure is a *model.DownloadError naming the stream kind.
func (o *Orchestrator) Run(ctx context.Context, b StreamDownloader, meta *model.VideoMetadata, sel model.SelectionResult, req Request) (Result, error) {
	dest, err := helpers.ResolveDestDir(req.DestDir)
	if err != nil {
		return Result{}, &model.DownloadError{Backend: b.Name(), Stage: model.StageDownload, Kind: model.StreamKindUnknown, Err: err}
	}
	res := Result{DestDir: dest}

	for _, kind := range kinds(req.Mode) {
		stream := sel.For(kind)
		if stream == nil {
			return res, &model.DownloadError{Backend: b.Name(), Stage: model.StageDownload, Kind: kind, Err: model.ErrNoStreamSelected}
		}
		path := filepath.Join(dest, kind.Filename())
		o.deps.start(*stream, path)
		o.logger.Info("downloading stream",
			zap.String("kind", kind.String()),
			zap.Int("itag", stream.Itag),
			zap.String("path", path))

		dl, err := b.DownloadStream(ctx, meta, *stream, dest, kind.Filename())
		if err != nil {
			return res, asDownloadError(b.Name(), kind, err)
		}
		o.logger.Info("stream downloaded",
			zap.String("kind", kind.String()),
			zap.Duration("elapsed", dl.Elapsed),
			zap.Int64("bytes", dl.SizeBytes))
		o.deps.done(dl)
		res.Downloads = append(res.Downloads, dl)
	}

	if req.CreateMp3 && req.Mode.HasAudio() {
		mp3, err := o.extractMp3(ctx, b.Name(), res)
		if err != nil {
			return res, err
		}
		if mp3 == "" {
			res.Notices = append(res.Notices, NoticeMp3Skipped)
			o.deps.notice(NoticeMp3Skipped)
		}
		res.Mp3Path = mp3
	}
	return res, nil
}

// extractMp3 returns "" without error when no transcoder is available.
func (o *Orchestrator) extractMp3(ctx context.Context, backend string, res Result) (string, error) {
	if o.transcoder == nil || !o.transcoder.Available() {
		o.logger.Warn("mp3 extraction skipped", zap.Error(model.ErrTranscoderUnavailable))
		return "", nil
	}
	audio := res.Path(model.StreamKindAudio)
	out := filepath.Join(res.DestDir, model.Mp3Filename)
	if err := o.transcoder.Run(ctx, ffmpeg.Mp3Args(audio, out), out); err != nil {
		return "", &model.DownloadError{Backend: backend, Stage: model.StageMp3, Kind: model.StreamKindAudio, Err: err}
	}
	o.logger.Info("mp3 extracted", zap.String("path", out))
	return out, nil
}

func asDownloadError(backend string, kind model.StreamKind, err error) error {
	var dlErr *model.DownloadError
	if errors.As(err, &dlErr) {
		return model.AttachBackend(err, backend)
	}
	return &model.DownloadError{Backend: backend, Stage: model.StageDownload, Kind: kind, Err: err}
}

func kinds(mode model.MediaType) []model.StreamKind {
	switch mode {
	case model.MediaTypeVideo:
		return []model.StreamKind{model.StreamKindVideo}
	case model.MediaTypeAudio:
		return []model.StreamKind{model.StreamKindAudio}
	case model.MediaTypeBoth:
		return []model.StreamKind{model.StreamKindVideo, model.StreamKindAudio}
	}
	return nil
}
