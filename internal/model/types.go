package model

import (
	"strings"
	"time"
)

// Config holds the resolved settings for one invocation.
type Config struct {
	URL       string
	DestDir   string
	AudioOnly bool
	VideoOnly bool
	Auto      bool
	Merge     bool
	CreateMp3 bool

	ListOnly    bool
	CheckFfmpeg bool

	Backends        []string
	FfmpegNameStr   string
	UseFfmpegEnvVar bool
	// FfmpegPath is the resolved transcoder, empty when none was found.
	FfmpegPath string

	LogLevel string
	LogFile  string
}

// MediaType returns the download mode derived from the restriction flags.
func (c *Config) MediaType() MediaType {
	return ResolveMediaType(c.AudioOnly, c.VideoOnly)
}

// ArgsDescriptionFunc is set by package main to provide colored help text.
// If nil, Description() returns an empty string (go-arg will use default help).
var ArgsDescriptionFunc func() string

// Args holds CLI arguments parsed by go-arg.
type Args struct {
	URL         string `arg:"-u,--url" help:"URL of the video to download. Prompted for when omitted on a terminal."`
	AudioOnly   bool   `arg:"--audio-only" help:"Only download the audio stream (audio.mp4)."`
	VideoOnly   bool   `arg:"--video-only" help:"Only download the video stream (video.mp4). Combined with --audio-only both are fetched."`
	Dest        string `arg:"-d,--dest" help:"Destination directory. Must already exist and be writable. [default: .]"`
	NoMerge     bool   `arg:"--no-merge" help:"Keep video.mp4 and audio.mp4 separate instead of merging them."`
	Mp3         bool   `arg:"--mp3" help:"Also extract audio.mp3 at 320 kbps."`
	Pick        bool   `arg:"-p,--pick" help:"Choose streams by itag instead of taking the highest quality."`
	List        bool   `arg:"-l,--list" help:"Print the candidate streams and exit."`
	CheckFfmpeg bool   `arg:"--check-ffmpeg" help:"Print the ffmpeg version and exit."`
	Backends    string `arg:"--backends" help:"Comma separated backend order. [default: youtube,ytdlp]"`
	Ffmpeg      string `arg:"--ffmpeg" help:"Path to the ffmpeg binary."`
	LogLevel    string `arg:"--log-level" help:"Diagnostic log level (debug, info, warn, error). [default: warn]"`
	LogFile     string `arg:"--log-file" help:"Also write the diagnostic log to this file."`
}

// Description provides custom help text for go-arg.
func (Args) Description() string {
	if ArgsDescriptionFunc != nil {
		return ArgsDescriptionFunc()
	}
	return ""
}

// VideoMetadata identifies a fetched resource. It is produced by a backend
// and not modified afterwards.
type VideoMetadata struct {
	URL             string
	Title           string
	VideoID         string
	Author          string
	ChannelID       string
	ChannelURL      string
	PublishDate     time.Time
	DurationSeconds int
	ViewCount       int64
	// LikeCount and Rating are only reported by some backends.
	LikeCount   *int64
	Rating      *float64
	Description string
}

// DisplayTitle returns the title, or the video id when the title is blank.
func (m *VideoMetadata) DisplayTitle() string {
	if m == nil {
		return ""
	}
	if t := strings.TrimSpace(m.Title); t != "" {
		return t
	}
	return m.VideoID
}

// SelectionResult is the chosen stream pair of one run. Either side may be nil.
type SelectionResult struct {
	Video *StreamDescriptor
	Audio *StreamDescriptor
}

// For returns the selected stream of the given kind.
func (s SelectionResult) For(kind StreamKind) *StreamDescriptor {
	switch kind {
	case StreamKindVideo:
		return s.Video
	case StreamKindAudio:
		return s.Audio
	}
	return nil
}

// DownloadResult describes one stream written to local storage.
type DownloadResult struct {
	Kind      StreamKind
	Itag      int
	Path      string
	Elapsed   time.Duration
	SizeBytes int64
}

// PipelineOutcome is the terminal result of one backend attempt.
type PipelineOutcome struct {
	Backend    string
	Metadata   *VideoMetadata
	Selection  SelectionResult
	Downloads  []DownloadResult
	Mp3Path    string
	MergedPath string
	// Notices lists optional steps that were skipped.
	Notices []string
	// FailedStage is the step Err came from.
	FailedStage Stage
	Err         error
}

// Succeeded reports whether the attempt finished without error.
func (o *PipelineOutcome) Succeeded() bool {
	return o != nil && o.Err == nil
}

// OutputPaths returns the final files the attempt left behind.
func (o *PipelineOutcome) OutputPaths() []string {
	if o == nil {
		return nil
	}
	if o.MergedPath != "" {
		paths := []string{o.MergedPath}
		if o.Mp3Path != "" {
			paths = append(paths, o.Mp3Path)
		}
		return paths
	}
	paths := make([]string, 0, len(o.Downloads)+1)
	for _, d := range o.Downloads {
		paths = append(paths, d.Path)
	}
	if o.Mp3Path != "" {
		paths = append(paths, o.Mp3Path)
	}
	return paths
}

// WriteCounter tracks download progress.
type WriteCounter struct {
	Total      int64
	TotalStr   string
	Downloaded int64
	Percentage int
	StartTime  int64
	OnProgress func(downloaded, total, speed int64)
}

// Write counts bytes passing through an io.TeeReader.
func (wc *WriteCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.Downloaded += int64(n)
	if wc.Total > 0 {
		wc.Percentage = int(float64(wc.Downloaded) / float64(wc.Total) * 100)
	}
	var speed int64
	if elapsed := time.Now().UnixMilli() - wc.StartTime; elapsed > 0 {
		speed = wc.Downloaded * 1000 / elapsed
	}
	if wc.OnProgress != nil {
		wc.OnProgress(wc.Downloaded, wc.Total, speed)
	}
	return n, nil
}
