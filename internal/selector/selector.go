// Package selector picks the video and audio stream of a run from a catalog.
package selector

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jmagar/ytgrab/internal/model"
)

const (
	videoMimeType = "video/mp4"
	audioMimeType = "audio/mp4"
	mp4Container  = "mp4"
)

// VideoCandidates returns the adaptive mp4 video streams, highest resolution
// first. Streams with equal resolution keep their catalog order.
func VideoCandidates(catalog []model.StreamDescriptor) []model.StreamDescriptor {
	out := make([]model.StreamDescriptor, 0, len(catalog))
	for _, s := range catalog {
		if s.IsVideo() && s.IsAdaptive && s.Container() == mp4Container && s.BaseMimeType() == videoMimeType {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ResolutionValue() > out[j].ResolutionValue()
	})
	return out
}

// AudioCandidates returns the audio-only mp4 streams, highest average
// bitrate first. Streams with equal bitrate keep their catalog order.
func AudioCandidates(catalog []model.StreamDescriptor) []model.StreamDescriptor {
	out := make([]model.StreamDescriptor, 0, len(catalog))
	for _, s := range catalog {
		if s.IsAudio() && s.BaseMimeType() == audioMimeType {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageBitrate > out[j].AverageBitrate
	})
	return out
}

// Candidates returns the filtered, sorted candidate set for kind.
func Candidates(catalog []model.StreamDescriptor, kind model.StreamKind) []model.StreamDescriptor {
	switch kind {
	case model.StreamKindVideo:
		return VideoCandidates(catalog)
	case model.StreamKindAudio:
		return AudioCandidates(catalog)
	}
	return nil
}

// Auto picks the best candidate of each kind the mode needs. A kind with no
// candidate stays nil.
func Auto(catalog []model.StreamDescriptor, mode model.MediaType) model.SelectionResult {
	var res model.SelectionResult
	for _, kind := range kindsFor(mode) {
		if c := Candidates(catalog, kind); len(c) > 0 {
			pick := c[0]
			res = withKind(res, kind, &pick)
		}
	}
	return res
}

// Prompter asks the user for the itag of a stream kind. candidates is the
// set the answer is looked up in, in display order.
type Prompter interface {
	PromptItag(kind model.StreamKind, candidates []model.StreamDescriptor) (string, error)
}

// Interactive asks p for an itag for each kind the mode needs and looks it up
// in that kind's candidate set. An itag outside the set fails with
// *model.StreamNotFoundError.
func Interactive(catalog []model.StreamDescriptor, mode model.MediaType, p Prompter) (model.SelectionResult, error) {
	var res model.SelectionResult
	for _, kind := range kindsFor(mode) {
		candidates := Candidates(catalog, kind)
		answer, err := p.PromptItag(kind, candidates)
		if err != nil {
			return model.SelectionResult{}, err
		}
		pick := FindItag(candidates, answer)
		if pick == nil {
			return model.SelectionResult{}, &model.StreamNotFoundError{Kind: kind, Itag: strings.TrimSpace(answer)}
		}
		res = withKind(res, kind, pick)
	}
	return res, nil
}

// FindItag returns the candidate whose itag matches answer, or nil.
func FindItag(candidates []model.StreamDescriptor, answer string) *model.StreamDescriptor {
	itag, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return nil
	}
	for i := range candidates {
		if candidates[i].Itag == itag {
			pick := candidates[i]
			return &pick
		}
	}
	return nil
}

func kindsFor(mode model.MediaType) []model.StreamKind {
	kinds := make([]model.StreamKind, 0, 2)
	if mode.HasVideo() {
		kinds = append(kinds, model.StreamKindVideo)
	}
	if mode.HasAudio() {
		kinds = append(kinds, model.StreamKindAudio)
	}
	return kinds
}

func withKind(res model.SelectionResult, kind model.StreamKind, s *model.StreamDescriptor) model.SelectionResult {
	switch kind {
	case model.StreamKindVideo:
		res.Video = s
	case model.StreamKindAudio:
		res.Audio = s
	}
	return res
}
