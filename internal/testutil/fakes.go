package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmagar/ytgrab/internal/model"
)

// FakeBackend is an in-memory backend. Downloads write "<kind>:<itag>"
// into the target file.
type FakeBackend struct {
	BackendName string
	Meta        *model.VideoMetadata
	Catalog     []model.StreamDescriptor

	FetchErr    error
	ListErr     error
	DownloadErr error
	// FailKind restricts DownloadErr to one stream kind when set.
	FailKind model.StreamKind

	mu    sync.Mutex
	calls []string
}

func (f *FakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

// Calls returns the recorded method calls in order.
func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeBackend) Name() string { return f.BackendName }

func (f *FakeBackend) FetchMetadata(_ context.Context, url string) (*model.VideoMetadata, error) {
	f.record("fetch")
	if f.FetchErr != nil {
		return nil, &model.ExtractionError{Backend: f.BackendName, Stage: model.StageFetch, Err: f.FetchErr}
	}
	meta := *f.Meta
	meta.URL = url
	return &meta, nil
}

func (f *FakeBackend) ListStreams(_ context.Context, _ *model.VideoMetadata) ([]model.StreamDescriptor, error) {
	f.record("list")
	if f.ListErr != nil {
		return nil, &model.ExtractionError{Backend: f.BackendName, Stage: model.StageList, Err: f.ListErr}
	}
	return append([]model.StreamDescriptor(nil), f.Catalog...), nil
}

func (f *FakeBackend) DownloadStream(_ context.Context, _ *model.VideoMetadata, stream model.StreamDescriptor, destDir, filename string) (model.DownloadResult, error) {
	f.record(fmt.Sprintf("download:%d", stream.Itag))
	if f.DownloadErr != nil && (f.FailKind == model.StreamKindUnknown || f.FailKind == stream.Kind) {
		return model.DownloadResult{}, &model.DownloadError{Backend: f.BackendName, Stage: model.StageDownload, Kind: stream.Kind, Err: f.DownloadErr}
	}
	start := time.Now()
	path := filepath.Join(destDir, filename)
	content := fmt.Sprintf("%s:%d", stream.Kind, stream.Itag)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return model.DownloadResult{}, &model.DownloadError{Backend: f.BackendName, Stage: model.StageDownload, Kind: stream.Kind, Err: err}
	}
	return model.DownloadResult{
		Kind:      stream.Kind,
		Itag:      stream.Itag,
		Path:      path,
		Elapsed:   time.Since(start),
		SizeBytes: int64(len(content)),
	}, nil
}

// FakeAgeGateBackend is a FakeBackend that also bypasses the age gate.
type FakeAgeGateBackend struct {
	*FakeBackend
	BypassErr error
}

func (f *FakeAgeGateBackend) BypassAgeGate(_ context.Context, _ *model.VideoMetadata) error {
	f.record("bypass")
	if f.BypassErr != nil {
		return &model.ExtractionError{Backend: f.BackendName, Stage: model.StageAgeGate, Err: f.BypassErr}
	}
	return nil
}

// FakeTranscoder records invocations and writes the output file unless Err
// is set.
type FakeTranscoder struct {
	Unavailable bool
	Err         error

	mu   sync.Mutex
	runs [][]string
}

func (f *FakeTranscoder) Available() bool { return !f.Unavailable }

func (f *FakeTranscoder) Run(_ context.Context, args []string, outputPath string) error {
	f.mu.Lock()
	f.runs = append(f.runs, append([]string(nil), args...))
	f.mu.Unlock()
	if f.Unavailable {
		return model.ErrTranscoderUnavailable
	}
	if f.Err != nil {
		return f.Err
	}
	return os.WriteFile(outputPath, []byte("transcoded"), 0644)
}

// Runs returns the recorded argument lists.
func (f *FakeTranscoder) Runs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.runs...)
}

// SampleCatalog returns video itags 18 (360p) and 22 (720p) and audio itags
// 140 (128 kbps) and 141 (256 kbps), plus streams the selector filters out.
func SampleCatalog() []model.StreamDescriptor {
	return []model.StreamDescriptor{
		model.NewVideoStream(18, `video/mp4; codecs="avc1.42001E"`, true, "360p", 30, "avc1.42001E", 1000),
		model.NewVideoStream(22, `video/mp4; codecs="avc1.64001F"`, true, "720p", 30, "avc1.64001F", 4000),
		model.NewVideoStream(248, `video/webm; codecs="vp9"`, true, "1080p", 30, "vp9", 8000),
		model.NewAudioStream(140, `audio/mp4; codecs="mp4a.40.2"`, 128000, "mp4a.40.2", 500),
		model.NewAudioStream(141, `audio/mp4; codecs="mp4a.40.2"`, 256000, "mp4a.40.2", 900),
		model.NewAudioStream(251, `audio/webm; codecs="opus"`, 160000, "opus", 700),
	}
}
