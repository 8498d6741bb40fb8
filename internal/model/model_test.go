package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestResolveMediaType_TruthTable(t *testing.T) {
	tests := []struct {
		audioOnly bool
		videoOnly bool
		want      MediaType
		both      bool
	}{
		{false, false, MediaTypeBoth, true},
		{true, true, MediaTypeBoth, true},
		{true, false, MediaTypeAudio, false},
		{false, true, MediaTypeVideo, false},
	}
	for _, tt := range tests {
		got := ResolveMediaType(tt.audioOnly, tt.videoOnly)
		if got != tt.want {
			t.Errorf("ResolveMediaType(%t, %t) = %s, want %s", tt.audioOnly, tt.videoOnly, got, tt.want)
		}
		if got.DownloadBoth() != tt.both {
			t.Errorf("ResolveMediaType(%t, %t).DownloadBoth() = %t, want %t", tt.audioOnly, tt.videoOnly, got.DownloadBoth(), tt.both)
		}
	}
}

func TestMediaType_HasAudioHasVideo(t *testing.T) {
	if !MediaTypeBoth.HasAudio() || !MediaTypeBoth.HasVideo() {
		t.Fatal("both should include audio and video")
	}
	if MediaTypeAudio.HasVideo() || !MediaTypeAudio.HasAudio() {
		t.Fatal("audio mode should only include audio")
	}
	if MediaTypeVideo.HasAudio() || !MediaTypeVideo.HasVideo() {
		t.Fatal("video mode should only include video")
	}
}

func TestParseMimeType(t *testing.T) {
	base, codecs := ParseMimeType(`video/mp4; codecs="avc1.64001F, mp4a.40.2"`)
	if base != "video/mp4" {
		t.Fatalf("base = %q", base)
	}
	if len(codecs) != 2 || codecs[0] != "avc1.64001F" || codecs[1] != "mp4a.40.2" {
		t.Fatalf("codecs = %v", codecs)
	}
	video, audio := SplitCodecs(codecs)
	if video != "avc1.64001F" || audio != "mp4a.40.2" {
		t.Fatalf("SplitCodecs = %q, %q", video, audio)
	}

	base, codecs = ParseMimeType("audio/webm")
	if base != "audio/webm" || len(codecs) != 0 {
		t.Fatalf("plain mime parsed as %q %v", base, codecs)
	}

	base, _ = ParseMimeType(`Video/MP4; codecs="broken`)
	if base != "video/mp4" {
		t.Fatalf("malformed mime base = %q", base)
	}
}

func TestStreamDescriptor_KindFieldsExclusive(t *testing.T) {
	v := NewVideoStream(22, `video/mp4; codecs="avc1"`, true, "720p", 30, "avc1", 100)
	if !v.IsVideo() || v.IsAudio() || v.AverageBitrate != 0 || v.AudioCodec != "" {
		t.Fatalf("video descriptor carries audio fields: %+v", v)
	}
	if v.Container() != "mp4" || v.BaseMimeType() != "video/mp4" {
		t.Fatalf("container = %q base = %q", v.Container(), v.BaseMimeType())
	}

	a := NewAudioStream(140, `audio/mp4; codecs="mp4a.40.2"`, 128000, "mp4a.40.2", 50)
	if !a.IsAudio() || a.Resolution != "" || a.FPS != 0 || a.VideoCodec != "" {
		t.Fatalf("audio descriptor carries video fields: %+v", a)
	}
	if !strings.Contains(a.String(), "abr=128kbps") {
		t.Fatalf("unexpected audio String(): %s", a.String())
	}
}

func TestStreamDescriptor_ResolutionValue(t *testing.T) {
	tests := map[string]int{
		"144p":    144,
		"1080p":   1080,
		"1080p60": 1080,
		"2160p":   2160,
		"":        0,
		"hd":      0,
	}
	for label, want := range tests {
		d := StreamDescriptor{Kind: StreamKindVideo, Resolution: label}
		if got := d.ResolutionValue(); got != want {
			t.Errorf("ResolutionValue(%q) = %d, want %d", label, got, want)
		}
	}
}

func TestAttachBackendAndStageOf(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", &DownloadError{Stage: StageDownload, Kind: StreamKindAudio, Err: cause})
	AttachBackend(err, BackendYtdlp)

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) || dlErr.Backend != BackendYtdlp {
		t.Fatalf("backend not attached: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	if StageOf(err) != StageDownload {
		t.Fatalf("StageOf = %q", StageOf(err))
	}
	// the outer message was formatted before the backend was attached
	if got := dlErr.Error(); got != "ytdlp: download audio: boom" {
		t.Fatalf("unexpected message: %q", got)
	}

	nf := &StreamNotFoundError{Backend: BackendYouTube, Kind: StreamKindVideo, Itag: "99"}
	AttachBackend(nf, BackendYtdlp)
	if nf.Backend != BackendYouTube {
		t.Fatal("existing backend overwritten")
	}
	if StageOf(nf) != StageSelect {
		t.Fatalf("StageOf(not found) = %q", StageOf(nf))
	}
	if StageOf(cause) != "" {
		t.Fatal("plain error should have no stage")
	}
}

func TestPipelineOutcome_OutputPaths(t *testing.T) {
	o := &PipelineOutcome{
		Downloads: []DownloadResult{{Path: "/d/video.mp4"}, {Path: "/d/audio.mp4"}},
		Mp3Path:   "/d/audio.mp3",
	}
	if got := o.OutputPaths(); len(got) != 3 {
		t.Fatalf("unmerged outputs = %v", got)
	}
	o.MergedPath = "/d/Title.mp4"
	got := o.OutputPaths()
	if len(got) != 2 || got[0] != "/d/Title.mp4" {
		t.Fatalf("merged outputs = %v", got)
	}
	if !o.Succeeded() {
		t.Fatal("outcome without error should succeed")
	}
}

func TestWriteCounter_CountsBytes(t *testing.T) {
	var calls int
	wc := &WriteCounter{Total: 10, OnProgress: func(_, _, _ int64) { calls++ }}
	if _, err := wc.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if wc.Downloaded != 5 || wc.Percentage != 50 || calls != 1 {
		t.Fatalf("counter state = %+v calls=%d", wc, calls)
	}
}
