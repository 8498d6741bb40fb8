// Package pipeline runs one backend attempt end to end and falls back to the
// next backend when an attempt fails.
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jmagar/ytgrab/internal/backend"
	"github.com/jmagar/ytgrab/internal/download"
	"github.com/jmagar/ytgrab/internal/ffmpeg"
	"github.com/jmagar/ytgrab/internal/merge"
	"github.com/jmagar/ytgrab/internal/model"
	"github.com/jmagar/ytgrab/internal/selector"
)

// ErrNoPrompter is returned when interactive selection has no prompter.
var ErrNoPrompter = errors.New("interactive selection needs a prompter")

// Request holds the per-run inputs shared by every attempt.
type Request struct {
	URL       string
	DestDir   string
	Mode      model.MediaType
	Auto      bool
	Merge     bool
	CreateMp3 bool
}

// RequestFromConfig builds a Request from resolved settings.
func RequestFromConfig(cfg *model.Config) Request {
	return Request{
		URL:       cfg.URL,
		DestDir:   cfg.DestDir,
		Mode:      cfg.MediaType(),
		Auto:      cfg.Auto,
		Merge:     cfg.Merge,
		CreateMp3: cfg.CreateMp3,
	}
}

// Hooks are UI callbacks. Any of them may be nil.
type Hooks struct {
	OnMetadata  func(backend string, meta *model.VideoMetadata)
	OnSelection func(sel model.SelectionResult)
	OnNotice    func(msg string)
	OnFailure   func(attempt AttemptError)
	Download    *download.Deps
}

// Runner executes single backend attempts.
type Runner struct {
	prompter  selector.Prompter
	downloads *download.Orchestrator
	merges    *merge.Orchestrator
	hooks     Hooks
	logger    *zap.Logger
}

// NewRunner returns a Runner. tc may be nil or unavailable; prompter is only
// needed for interactive selection.
func NewRunner(tc ffmpeg.Transcoder, prompter selector.Prompter, logger *zap.Logger, hooks Hooks) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	var deps *download.Deps
	if hooks.Download != nil {
		d := *hooks.Download
		// notices are reported once, through Hooks.OnNotice
		d.OnNotice = nil
		deps = &d
	}
	return &Runner{
		prompter:  prompter,
		downloads: download.NewOrchestrator(tc, logger, deps),
		merges:    merge.NewOrchestrator(tc, logger),
		hooks:     hooks,
		logger:    logger,
	}
}

// Attempt runs fetch, age gate bypass, listing, selection, download and
// merge against b. It never panics on backend failures; the first error ends
// the attempt and is recorded in the outcome.
func (r *Runner) Attempt(ctx context.Context, b backend.Backend, req Request) *model.PipelineOutcome {
	name := b.Name()
	log := r.logger.With(zap.String("backend", name))
	out := &model.PipelineOutcome{Backend: name}

	log.Info("attempt started", zap.String("stage", string(model.StageFetch)), zap.String("mode", req.Mode.String()))
	meta, err := b.FetchMetadata(ctx, req.URL)
	if err != nil {
		return r.fail(log, out, model.StageFetch, err)
	}
	out.Metadata = meta
	if r.hooks.OnMetadata != nil {
		r.hooks.OnMetadata(name, meta)
	}

	if bypasser, ok := b.(backend.AgeGateBypasser); ok {
		log.Debug("bypassing age gate", zap.String("stage", string(model.StageAgeGate)))
		if err := bypasser.BypassAgeGate(ctx, meta); err != nil {
			return r.fail(log, out, model.StageAgeGate, err)
		}
	}

	catalog, err := b.ListStreams(ctx, meta)
	if err != nil {
		return r.fail(log, out, model.StageList, err)
	}
	log.Debug("catalog listed", zap.String("stage", string(model.StageList)), zap.Int("streams", len(catalog)))

	sel, err := r.selectStreams(catalog, req)
	if err != nil {
		return r.fail(log, out, model.StageSelect, err)
	}
	out.Selection = sel
	if r.hooks.OnSelection != nil {
		r.hooks.OnSelection(sel)
	}

	res, err := r.downloads.Run(ctx, b, meta, sel, download.Request{
		DestDir:   req.DestDir,
		Mode:      req.Mode,
		CreateMp3: req.CreateMp3,
	})
	out.Downloads = res.Downloads
	out.Mp3Path = res.Mp3Path
	for _, n := range res.Notices {
		r.notice(out, n)
	}
	if err != nil {
		stage := model.StageOf(err)
		if stage == "" {
			stage = model.StageDownload
		}
		return r.fail(log, out, stage, err)
	}

	if req.Mode.DownloadBoth() && req.Merge {
		mres, err := r.merges.Run(ctx, res.DestDir, meta)
		if err != nil {
			return r.fail(log, out, model.StageMerge, err)
		}
		out.MergedPath = mres.Path
		if mres.Notice != "" {
			r.notice(out, mres.Notice)
		}
	}

	log.Info("attempt succeeded", zap.Strings("outputs", out.OutputPaths()))
	return out
}

func (r *Runner) selectStreams(catalog []model.StreamDescriptor, req Request) (model.SelectionResult, error) {
	if req.Auto {
		return selector.Auto(catalog, req.Mode), nil
	}
	if r.prompter == nil {
		return model.SelectionResult{}, ErrNoPrompter
	}
	return selector.Interactive(catalog, req.Mode, r.prompter)
}

func (r *Runner) notice(out *model.PipelineOutcome, msg string) {
	out.Notices = append(out.Notices, msg)
	if r.hooks.OnNotice != nil {
		r.hooks.OnNotice(msg)
	}
}

func (r *Runner) fail(log *zap.Logger, out *model.PipelineOutcome, stage model.Stage, err error) *model.PipelineOutcome {
	if model.StageOf(err) == "" {
		switch stage {
		case model.StageFetch, model.StageAgeGate, model.StageList:
			err = &model.ExtractionError{Stage: stage, Err: err}
		}
	}
	out.Err = model.AttachBackend(err, out.Backend)
	out.FailedStage = stage
	log.Warn("attempt failed", zap.String("stage", string(stage)), zap.Error(out.Err))
	return out
}

// Controller tries each backend in order until one attempt succeeds.
type Controller struct {
	backends []backend.Backend
	runner   *Runner
	logger   *zap.Logger
}

// NewController returns a Controller over backends, tried in order.
func NewController(backends []backend.Backend, runner *Runner, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{backends: backends, runner: runner, logger: logger}
}

// Run attempts each backend once, from scratch, in order. Files left by a
// failed attempt stay in place and may be overwritten by the next one. When
// every attempt fails the error is an *AllBackendsFailedError.
func (c *Controller) Run(ctx context.Context, req Request) (*model.PipelineOutcome, error) {
	if len(c.backends) == 0 {
		return nil, model.ErrNoBackends
	}
	attempts := make([]AttemptError, 0, len(c.backends))
	for i, b := range c.backends {
		out := c.runner.Attempt(ctx, b, req)
		if out.Succeeded() {
			c.logger.Info("download succeeded", zap.String("backend", b.Name()), zap.Int("attempt", i+1))
			return out, nil
		}
		attempt := AttemptError{Backend: b.Name(), Stage: out.FailedStage, Err: out.Err}
		attempts = append(attempts, attempt)
		if c.runner.hooks.OnFailure != nil {
			c.runner.hooks.OnFailure(attempt)
		}
		if i+1 < len(c.backends) {
			c.logger.Info("falling back", zap.String("from", b.Name()), zap.String("to", c.backends[i+1].Name()))
		}
	}
	return nil, &AllBackendsFailedError{Attempts: attempts}
}
