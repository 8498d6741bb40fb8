package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jmagar/ytgrab/internal/model"
	"github.com/jmagar/ytgrab/internal/selector"
	"github.com/jmagar/ytgrab/internal/testutil"
)

func newFake() *testutil.FakeBackend {
	return &testutil.FakeBackend{
		BackendName: "fake",
		Meta:        &model.VideoMetadata{Title: "Clip", VideoID: "id1"},
		Catalog:     testutil.SampleCatalog(),
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRun_BothSequentialVideoFirst(t *testing.T) {
	dir := t.TempDir()
	fb := newFake()
	sel := selector.Auto(fb.Catalog, model.MediaTypeBoth)

	var started []string
	deps := &Deps{OnStart: func(s model.StreamDescriptor, _ string) { started = append(started, s.Kind.String()) }}
	res, err := NewOrchestrator(&testutil.FakeTranscoder{}, nil, deps).Run(context.Background(), fb, fb.Meta, sel, Request{DestDir: dir, Mode: model.MediaTypeBoth})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !reflect.DeepEqual(fb.Calls(), []string{"download:22", "download:141"}) {
		t.Fatalf("calls = %v", fb.Calls())
	}
	if !reflect.DeepEqual(started, []string{"video", "audio"}) {
		t.Fatalf("start order = %v", started)
	}
	if got := readFile(t, filepath.Join(dir, "video.mp4")); got != "video:22" {
		t.Fatalf("video.mp4 = %q", got)
	}
	if got := readFile(t, filepath.Join(dir, "audio.mp4")); got != "audio:141" {
		t.Fatalf("audio.mp4 = %q", got)
	}
	if res.Mp3Path != "" || len(res.Notices) != 0 {
		t.Fatalf("mp3 step should not run: %+v", res)
	}
	if !filepath.IsAbs(res.DestDir) {
		t.Fatalf("destination not absolute: %q", res.DestDir)
	}
}

func TestRun_SingleKind(t *testing.T) {
	tests := []struct {
		name      string
		audioOnly bool
		videoOnly bool
		wantFile  string
		absent    string
	}{
		{"video only", false, true, "video.mp4", "audio.mp4"},
		{"audio only", true, false, "audio.mp4", "video.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			fb := newFake()
			mode := model.ResolveMediaType(tt.audioOnly, tt.videoOnly)
			sel := selector.Auto(fb.Catalog, mode)
			res, err := NewOrchestrator(nil, nil, nil).Run(context.Background(), fb, fb.Meta, sel, Request{DestDir: dir, Mode: mode})
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if len(res.Downloads) != 1 {
				t.Fatalf("downloads = %+v", res.Downloads)
			}
			if _, err := os.Stat(filepath.Join(dir, tt.wantFile)); err != nil {
				t.Fatalf("expected %s: %v", tt.wantFile, err)
			}
			if _, err := os.Stat(filepath.Join(dir, tt.absent)); !os.IsNotExist(err) {
				t.Fatalf("%s should not exist", tt.absent)
			}
		})
	}
}

func TestRun_Mp3(t *testing.T) {
	dir := t.TempDir()
	fb := newFake()
	tc := &testutil.FakeTranscoder{}
	sel := selector.Auto(fb.Catalog, model.MediaTypeAudio)

	res, err := NewOrchestrator(tc, nil, nil).Run(context.Background(), fb, fb.Meta, sel, Request{DestDir: dir, Mode: model.MediaTypeAudio, CreateMp3: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	wantMp3 := filepath.Join(res.DestDir, "audio.mp3")
	if res.Mp3Path != wantMp3 {
		t.Fatalf("Mp3Path = %q, want %q", res.Mp3Path, wantMp3)
	}
	runs := tc.Runs()
	if len(runs) != 1 {
		t.Fatalf("expected one transcoder run, got %d", len(runs))
	}
	want := []string{"-y", "-i", filepath.Join(res.DestDir, "audio.mp4"), "-f", "mp3", "-ab", "320000", "-vn", wantMp3}
	if !reflect.DeepEqual(runs[0], want) {
		t.Fatalf("args = %v", runs[0])
	}
}

func TestRun_Mp3SkippedForVideoOnly(t *testing.T) {
	fb := newFake()
	tc := &testutil.FakeTranscoder{}
	sel := selector.Auto(fb.Catalog, model.MediaTypeVideo)
	res, err := NewOrchestrator(tc, nil, nil).Run(context.Background(), fb, fb.Meta, sel, Request{DestDir: t.TempDir(), Mode: model.MediaTypeVideo, CreateMp3: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(tc.Runs()) != 0 || res.Mp3Path != "" {
		t.Fatal("mp3 must not be extracted in video-only mode")
	}
}

func TestRun_Mp3TranscoderUnavailable(t *testing.T) {
	dir := t.TempDir()
	fb := newFake()
	var notices []string
	deps := &Deps{OnNotice: func(msg string) { notices = append(notices, msg) }}
	sel := selector.Auto(fb.Catalog, model.MediaTypeBoth)

	res, err := NewOrchestrator(&testutil.FakeTranscoder{Unavailable: true}, nil, deps).Run(context.Background(), fb, fb.Meta, sel, Request{DestDir: dir, Mode: model.MediaTypeBoth, CreateMp3: true})
	if err != nil {
		t.Fatalf("unavailable transcoder must not fail the run: %v", err)
	}
	if res.Mp3Path != "" || len(res.Notices) != 1 || len(notices) != 1 || notices[0] != NoticeMp3Skipped {
		t.Fatalf("expected skip notice, got %+v / %v", res, notices)
	}
	if _, err := os.Stat(filepath.Join(dir, "audio.mp3")); !os.IsNotExist(err) {
		t.Fatal("audio.mp3 should not exist")
	}
}

func TestRun_Mp3Failure(t *testing.T) {
	fb := newFake()
	cause := errors.New("exit status 1")
	sel := selector.Auto(fb.Catalog, model.MediaTypeAudio)
	_, err := NewOrchestrator(&testutil.FakeTranscoder{Err: cause}, nil, nil).Run(context.Background(), fb, fb.Meta, sel, Request{DestDir: t.TempDir(), Mode: model.MediaTypeAudio, CreateMp3: true})

	var dlErr *model.DownloadError
	if !errors.As(err, &dlErr) || dlErr.Stage != model.StageMp3 || dlErr.Kind != model.StreamKindAudio || !errors.Is(err, cause) {
		t.Fatalf("expected mp3 DownloadError, got %v", err)
	}
}

func TestRun_DownloadFailureNamesKind(t *testing.T) {
	fb := newFake()
	fb.DownloadErr = errors.New("connection reset")
	fb.FailKind = model.StreamKindAudio
	dir := t.TempDir()
	sel := selector.Auto(fb.Catalog, model.MediaTypeBoth)

	res, err := NewOrchestrator(nil, nil, nil).Run(context.Background(), fb, fb.Meta, sel, Request{DestDir: dir, Mode: model.MediaTypeBoth})
	var dlErr *model.DownloadError
	if !errors.As(err, &dlErr) || dlErr.Kind != model.StreamKindAudio {
		t.Fatalf("expected audio DownloadError, got %v", err)
	}
	if !strings.Contains(err.Error(), "audio") || !strings.Contains(err.Error(), "fake") {
		t.Fatalf("message should name backend and kind: %v", err)
	}
	if len(res.Downloads) != 1 {
		t.Fatalf("video download should be kept in the result: %+v", res.Downloads)
	}
}

type plainErrBackend struct{}

func (plainErrBackend) Name() string { return "plain" }

func (plainErrBackend) DownloadStream(context.Context, *model.VideoMetadata, model.StreamDescriptor, string, string) (model.DownloadResult, error) {
	return model.DownloadResult{}, errors.New("disk full")
}

func TestRun_WrapsPlainErrors(t *testing.T) {
	sel := selector.Auto(testutil.SampleCatalog(), model.MediaTypeVideo)
	_, err := NewOrchestrator(nil, nil, nil).Run(context.Background(), plainErrBackend{}, nil, sel, Request{DestDir: t.TempDir(), Mode: model.MediaTypeVideo})
	var dlErr *model.DownloadError
	if !errors.As(err, &dlErr) || dlErr.Backend != "plain" || dlErr.Kind != model.StreamKindVideo {
		t.Fatalf("expected wrapped DownloadError, got %v", err)
	}
}

func TestRun_MissingSelection(t *testing.T) {
	fb := newFake()
	sel := model.SelectionResult{}
	_, err := NewOrchestrator(nil, nil, nil).Run(context.Background(), fb, fb.Meta, sel, Request{DestDir: t.TempDir(), Mode: model.MediaTypeBoth})
	if !errors.Is(err, model.ErrNoStreamSelected) {
		t.Fatalf("expected ErrNoStreamSelected, got %v", err)
	}
	if len(fb.Calls()) != 0 {
		t.Fatalf("nothing should be downloaded: %v", fb.Calls())
	}
}

func TestRun_MissingDestination(t *testing.T) {
	fb := newFake()
	sel := selector.Auto(fb.Catalog, model.MediaTypeBoth)
	_, err := NewOrchestrator(nil, nil, nil).Run(context.Background(), fb, fb.Meta, sel, Request{DestDir: filepath.Join(t.TempDir(), "nope"), Mode: model.MediaTypeBoth})
	var dlErr *model.DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
}
