// Package backend adapts the extraction libraries to one capability surface:
// fetch metadata, list the stream catalog and download a stream.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/jmagar/ytgrab/internal/model"
)

// Backend is one extraction library. Implementations keep the resource
// fetched by FetchMetadata so ListStreams and DownloadStream can use it.
type Backend interface {
	Name() string
	FetchMetadata(ctx context.Context, url string) (*model.VideoMetadata, error)
	ListStreams(ctx context.Context, meta *model.VideoMetadata) ([]model.StreamDescriptor, error)
	DownloadStream(ctx context.Context, meta *model.VideoMetadata, stream model.StreamDescriptor, destDir, filename string) (model.DownloadResult, error)
}

// AgeGateBypasser is implemented by backends that must switch to an
// unrestricted client right after the metadata fetch.
type AgeGateBypasser interface {
	BypassAgeGate(ctx context.Context, meta *model.VideoMetadata) error
}

// Options configures every backend built by New.
type Options struct {
	HTTPClient *http.Client
	Logger     *zap.Logger
	// OnProgress receives byte counts while a stream is written.
	OnProgress func(downloaded, total, speed int64)
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// New builds the backends named in names, in order.
func New(names []string, opts Options) ([]Backend, error) {
	if len(names) == 0 {
		return nil, model.ErrNoBackends
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient(opts.logger())
	}
	backends := make([]Backend, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		switch name {
		case model.BackendYouTube:
			backends = append(backends, NewYouTube(opts))
		case model.BackendYtdlp:
			backends = append(backends, NewYtdlp(opts))
		default:
			return nil, fmt.Errorf("unknown backend %q (supported: %s)", raw, strings.Join(model.DefaultBackends, ", "))
		}
	}
	if len(backends) == 0 {
		return nil, model.ErrNoBackends
	}
	return backends, nil
}

func extractionErr(name string, stage model.Stage, err error) error {
	return &model.ExtractionError{Backend: name, Stage: stage, Err: err}
}

func downloadErr(name string, kind model.StreamKind, err error) error {
	return &model.DownloadError{Backend: name, Stage: model.StageDownload, Kind: kind, Err: err}
}

// writeStream copies r into path, truncating any existing file, and
// returns the number of bytes written.
func writeStream(path string, r io.Reader, total int64, onProgress func(downloaded, total, speed int64)) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	counter := &model.WriteCounter{
		Total:      total,
		TotalStr:   humanize.Bytes(uint64(max(total, 0))),
		StartTime:  time.Now().UnixMilli(),
		OnProgress: onProgress,
	}
	n, err := io.Copy(f, io.TeeReader(r, counter))
	if err != nil {
		return n, err
	}
	return n, f.Close()
}

func targetPath(destDir, filename string) string {
	return filepath.Join(destDir, filename)
}
