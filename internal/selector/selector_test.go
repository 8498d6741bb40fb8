package selector

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jmagar/ytgrab/internal/model"
)

func testCatalog() []model.StreamDescriptor {
	return []model.StreamDescriptor{
		model.NewVideoStream(18, `video/mp4; codecs="avc1.42001E"`, true, "360p", 30, "avc1.42001E", 0),
		model.NewVideoStream(43, `video/webm; codecs="vp8"`, true, "1080p", 30, "vp8", 0),
		model.NewVideoStream(22, `video/mp4; codecs="avc1.64001F"`, true, "720p", 30, "avc1.64001F", 0),
		model.NewVideoStream(59, `video/mp4; codecs="avc1.4d401f, mp4a.40.2"`, false, "2160p", 30, "avc1.4d401f", 0),
		model.NewAudioStream(140, `audio/mp4; codecs="mp4a.40.2"`, 128, "mp4a.40.2", 0),
		model.NewAudioStream(251, `audio/webm; codecs="opus"`, 512, "opus", 0),
		model.NewAudioStream(141, `audio/mp4; codecs="mp4a.40.2"`, 256, "mp4a.40.2", 0),
	}
}

func itags(streams []model.StreamDescriptor) []int {
	out := make([]int, len(streams))
	for i, s := range streams {
		out[i] = s.Itag
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCandidates_FilterAndOrder(t *testing.T) {
	if got := itags(VideoCandidates(testCatalog())); !equalInts(got, []int{22, 18}) {
		t.Fatalf("video candidates = %v", got)
	}
	if got := itags(AudioCandidates(testCatalog())); !equalInts(got, []int{141, 140}) {
		t.Fatalf("audio candidates = %v", got)
	}
	if Candidates(testCatalog(), model.StreamKindUnknown) != nil {
		t.Fatal("unknown kind has no candidates")
	}
}

func TestCandidates_TiesKeepCatalogOrder(t *testing.T) {
	catalog := []model.StreamDescriptor{
		model.NewVideoStream(398, "video/mp4", true, "720p60", 60, "av01", 0),
		model.NewVideoStream(136, "video/mp4", true, "720p", 30, "avc1", 0),
		model.NewVideoStream(298, "video/mp4", true, "720p60", 60, "avc1", 0),
		model.NewAudioStream(139, "audio/mp4", 48, "mp4a", 0),
		model.NewAudioStream(140, "audio/mp4", 48, "mp4a", 0),
	}
	if got := itags(VideoCandidates(catalog)); !equalInts(got, []int{398, 136, 298}) {
		t.Fatalf("video tie order = %v", got)
	}
	if got := itags(AudioCandidates(catalog)); !equalInts(got, []int{139, 140}) {
		t.Fatalf("audio tie order = %v", got)
	}
}

func TestAuto_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		res := Auto(testCatalog(), model.MediaTypeBoth)
		if res.Video == nil || res.Video.Itag != 22 {
			t.Fatalf("video pick = %+v", res.Video)
		}
		if res.Audio == nil || res.Audio.Itag != 141 {
			t.Fatalf("audio pick = %+v", res.Audio)
		}
	}
}

func TestAuto_OnlyNeededKinds(t *testing.T) {
	res := Auto(testCatalog(), model.MediaTypeAudio)
	if res.Video != nil || res.Audio == nil {
		t.Fatalf("audio mode selection = %+v", res)
	}
	res = Auto(testCatalog(), model.MediaTypeVideo)
	if res.Audio != nil || res.Video == nil {
		t.Fatalf("video mode selection = %+v", res)
	}
}

func TestAuto_EmptyCatalog(t *testing.T) {
	res := Auto(nil, model.MediaTypeBoth)
	if res.Video != nil || res.Audio != nil {
		t.Fatalf("expected nothing selected, got %+v", res)
	}
}

type scriptedPrompter struct {
	answers []string
	seen    [][]int
}

func (s *scriptedPrompter) PromptItag(_ model.StreamKind, candidates []model.StreamDescriptor) (string, error) {
	s.seen = append(s.seen, itags(candidates))
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func TestInteractive_ExactPicks(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"18", " 140 "}}
	res, err := Interactive(testCatalog(), model.MediaTypeBoth, p)
	if err != nil {
		t.Fatalf("Interactive returned error: %v", err)
	}
	if res.Video == nil || res.Video.Itag != 18 || res.Audio == nil || res.Audio.Itag != 140 {
		t.Fatalf("unexpected selection: %+v", res)
	}
	if len(p.seen) != 2 || !equalInts(p.seen[0], []int{22, 18}) || !equalInts(p.seen[1], []int{141, 140}) {
		t.Fatalf("prompter saw %v", p.seen)
	}
}

func TestInteractive_ItagOutsideFilteredSet(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		kind    model.StreamKind
	}{
		{"webm video", []string{"43"}, model.StreamKindVideo},
		{"muxed video", []string{"59"}, model.StreamKindVideo},
		{"audio itag for video", []string{"140"}, model.StreamKindVideo},
		{"webm audio", []string{"22", "251"}, model.StreamKindAudio},
		{"not a number", []string{"abc"}, model.StreamKindVideo},
		{"empty", []string{""}, model.StreamKindVideo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interactive(testCatalog(), model.MediaTypeBoth, &scriptedPrompter{answers: tt.answers})
			var nf *model.StreamNotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("expected StreamNotFoundError, got %v", err)
			}
			if nf.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", nf.Kind, tt.kind)
			}
		})
	}
}

type failingPrompter struct{ err error }

func (f failingPrompter) PromptItag(model.StreamKind, []model.StreamDescriptor) (string, error) {
	return "", f.err
}

func TestInteractive_PromptError(t *testing.T) {
	cause := errors.New("stdin closed")
	_, err := Interactive(testCatalog(), model.MediaTypeAudio, failingPrompter{err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("expected prompt error, got %v", err)
	}
}

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	var shown int
	p := NewLinePrompter(strings.NewReader("22\n141"), &out, func(model.StreamKind, []model.StreamDescriptor) { shown++ })

	res, err := Interactive(testCatalog(), model.MediaTypeBoth, p)
	if err != nil {
		t.Fatalf("Interactive returned error: %v", err)
	}
	if res.Video.Itag != 22 || res.Audio.Itag != 141 {
		t.Fatalf("unexpected selection: %+v", res)
	}
	if shown != 2 {
		t.Fatalf("show called %d times", shown)
	}
	if !strings.Contains(out.String(), "Enter the itag of the video stream:") || !strings.Contains(out.String(), ">> ") {
		t.Fatalf("unexpected prompt output: %q", out.String())
	}

	answer, err := p.Ask("")
	if err != nil || answer != "" {
		t.Fatalf("EOF should give an empty answer, got %q, %v", answer, err)
	}
}
