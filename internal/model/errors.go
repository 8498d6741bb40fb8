package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline operations.
var (
	// ErrTranscoderUnavailable is returned when no ffmpeg binary can be resolved.
	ErrTranscoderUnavailable = errors.New("transcoder not available")
	// ErrNoStreamSelected is returned when the download mode needs a stream the selector did not pick.
	ErrNoStreamSelected = errors.New("no stream selected")
	// ErrNoBackends is returned when the fallback controller has nothing to try.
	ErrNoBackends = errors.New("no backends configured")
	// ErrMissingURL is returned when no resource URL was given.
	ErrMissingURL = errors.New("no URL given")
	// ErrOutputMissing is returned when the transcoder exits cleanly without writing its output.
	ErrOutputMissing = errors.New("transcoder output file missing")
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageFetch    Stage = "fetch metadata"
	StageAgeGate  Stage = "bypass age gate"
	StageList     Stage = "list streams"
	StageSelect   Stage = "select streams"
	StageDownload Stage = "download"
	StageMp3      Stage = "extract mp3"
	StageMerge    Stage = "merge"
)

// ExtractionError reports a failed metadata or catalog fetch.
type ExtractionError struct {
	Backend string
	Stage   Stage
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", prefix(e.Backend), e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// StreamNotFoundError reports an interactive itag that is not in the
// filtered candidate set.
type StreamNotFoundError struct {
	Backend string
	Kind    StreamKind
	Itag    string
}

func (e *StreamNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s: no %s stream with itag %q", prefix(e.Backend), StageSelect, e.Kind, e.Itag)
}

// DownloadError reports a failed stream retrieval or mp3 extraction.
type DownloadError struct {
	Backend string
	Stage   Stage
	Kind    StreamKind
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", prefix(e.Backend), e.Stage, e.Kind, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// MergeError reports a failed transcoder mux or output rename.
type MergeError struct {
	Backend string
	Err     error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", prefix(e.Backend), StageMerge, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// AttachBackend records the backend name on a taxonomy error that does not
// carry one yet and returns err. Wrappers that formatted their message
// earlier, such as fmt.Errorf, keep the old text.
func AttachBackend(err error, backend string) error {
	var (
		extraction *ExtractionError
		notFound   *StreamNotFoundError
		download   *DownloadError
		merge      *MergeError
	)
	switch {
	case errors.As(err, &extraction):
		if extraction.Backend == "" {
			extraction.Backend = backend
		}
	case errors.As(err, &notFound):
		if notFound.Backend == "" {
			notFound.Backend = backend
		}
	case errors.As(err, &download):
		if download.Backend == "" {
			download.Backend = backend
		}
	case errors.As(err, &merge):
		if merge.Backend == "" {
			merge.Backend = backend
		}
	}
	return err
}

// StageOf returns the pipeline stage a taxonomy error belongs to, or "" for
// other errors.
func StageOf(err error) Stage {
	var (
		extraction *ExtractionError
		notFound   *StreamNotFoundError
		download   *DownloadError
		merge      *MergeError
	)
	switch {
	case errors.As(err, &extraction):
		return extraction.Stage
	case errors.As(err, &notFound):
		return StageSelect
	case errors.As(err, &download):
		return download.Stage
	case errors.As(err, &merge):
		return StageMerge
	}
	return ""
}

func prefix(backend string) string {
	if backend == "" {
		return "backend"
	}
	return backend
}
