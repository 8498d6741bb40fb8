package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/jmagar/ytgrab/internal/backend"
	"github.com/jmagar/ytgrab/internal/model"
)

// Catalog is what a backend reports for one URL, without downloading.
type Catalog struct {
	Backend  string
	Metadata *model.VideoMetadata
	Streams  []model.StreamDescriptor
}

// Inspect fetches metadata and lists streams with the first backend that
// succeeds, bypassing the age gate where the backend supports it.
func (c *Controller) Inspect(ctx context.Context, url string) (*Catalog, error) {
	if len(c.backends) == 0 {
		return nil, model.ErrNoBackends
	}
	attempts := make([]AttemptError, 0, len(c.backends))
	for _, b := range c.backends {
		cat, attempt := inspect(ctx, b, url)
		if attempt == nil {
			return cat, nil
		}
		attempts = append(attempts, *attempt)
		c.logger.Warn("inspect failed", zap.String("backend", b.Name()),
			zap.String("stage", string(attempt.Stage)), zap.Error(attempt.Err))
		if c.runner != nil && c.runner.hooks.OnFailure != nil {
			c.runner.hooks.OnFailure(*attempt)
		}
	}
	return nil, &AllBackendsFailedError{Attempts: attempts}
}

func inspect(ctx context.Context, b backend.Backend, url string) (*Catalog, *AttemptError) {
	name := b.Name()
	failed := func(stage model.Stage, err error) *AttemptError {
		if model.StageOf(err) == "" {
			err = &model.ExtractionError{Stage: stage, Err: err}
		}
		return &AttemptError{Backend: name, Stage: stage, Err: model.AttachBackend(err, name)}
	}

	meta, err := b.FetchMetadata(ctx, url)
	if err != nil {
		return nil, failed(model.StageFetch, err)
	}
	if bypasser, ok := b.(backend.AgeGateBypasser); ok {
		if err := bypasser.BypassAgeGate(ctx, meta); err != nil {
			return nil, failed(model.StageAgeGate, err)
		}
	}
	streams, err := b.ListStreams(ctx, meta)
	if err != nil {
		return nil, failed(model.StageList, err)
	}
	return &Catalog{Backend: name, Metadata: meta, Streams: streams}, nil
}
