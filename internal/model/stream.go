package model

import (
	"fmt"
	"mime"
	"regexp"
	"strconv"
	"strings"
)

// StreamKind tells which track a stream descriptor carries.
type StreamKind int

const (
	StreamKindUnknown StreamKind = 0
	StreamKindVideo   StreamKind = 1
	StreamKindAudio   StreamKind = 2
)

// String returns the string representation of the StreamKind
func (k StreamKind) String() string {
	switch k {
	case StreamKindVideo:
		return "video"
	case StreamKindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Filename returns the fixed intermediate filename for the kind.
func (k StreamKind) Filename() string {
	switch k {
	case StreamKindVideo:
		return VideoFilename
	case StreamKindAudio:
		return AudioFilename
	default:
		return ""
	}
}

var resolutionRe = regexp.MustCompile(`([0-9]+)p`)

// StreamDescriptor describes one encoded variant of a video's tracks.
// Video descriptors leave the audio fields zero and vice versa; use
// NewVideoStream and NewAudioStream to keep that invariant.
type StreamDescriptor struct {
	Itag       int
	MimeType   string
	Kind       StreamKind
	IsAdaptive bool

	// video only
	Resolution string
	FPS        int
	VideoCodec string

	// audio only
	AverageBitrate int
	AudioCodec     string

	FileSizeBytes int64
}

// NewVideoStream builds a video-kind descriptor.
func NewVideoStream(itag int, mimeType string, adaptive bool, resolution string, fps int, codec string, size int64) StreamDescriptor {
	return StreamDescriptor{
		Itag:          itag,
		MimeType:      mimeType,
		Kind:          StreamKindVideo,
		IsAdaptive:    adaptive,
		Resolution:    resolution,
		FPS:           fps,
		VideoCodec:    codec,
		FileSizeBytes: size,
	}
}

// NewAudioStream builds an audio-kind descriptor. Audio-only streams are
// always adaptive.
func NewAudioStream(itag int, mimeType string, bitrate int, codec string, size int64) StreamDescriptor {
	return StreamDescriptor{
		Itag:           itag,
		MimeType:       mimeType,
		Kind:           StreamKindAudio,
		IsAdaptive:     true,
		AverageBitrate: bitrate,
		AudioCodec:     codec,
		FileSizeBytes:  size,
	}
}

// IsVideo reports whether the descriptor is a video-kind stream.
func (d StreamDescriptor) IsVideo() bool { return d.Kind == StreamKindVideo }

// IsAudio reports whether the descriptor is an audio-only stream.
func (d StreamDescriptor) IsAudio() bool { return d.Kind == StreamKindAudio }

// BaseMimeType returns the MIME type without parameters, e.g. "video/mp4".
func (d StreamDescriptor) BaseMimeType() string {
	base, _ := ParseMimeType(d.MimeType)
	return base
}

// Container returns the MIME subtype, e.g. "mp4" or "webm".
func (d StreamDescriptor) Container() string {
	base := d.BaseMimeType()
	if i := strings.Index(base, "/"); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// ResolutionValue returns the numeric portion of the resolution label
// ("1080p60" -> 1080), or 0 when there is none.
func (d StreamDescriptor) ResolutionValue() int {
	m := resolutionRe.FindStringSubmatch(d.Resolution)
	if len(m) < 2 {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return v
}

func (d StreamDescriptor) String() string {
	switch d.Kind {
	case StreamKindVideo:
		return fmt.Sprintf("<Stream: itag=%d mime=%q res=%q fps=%d vcodec=%q adaptive=%t>",
			d.Itag, d.BaseMimeType(), d.Resolution, d.FPS, d.VideoCodec, d.IsAdaptive)
	case StreamKindAudio:
		return fmt.Sprintf("<Stream: itag=%d mime=%q abr=%dkbps acodec=%q>",
			d.Itag, d.BaseMimeType(), d.AverageBitrate/1000, d.AudioCodec)
	default:
		return fmt.Sprintf("<Stream: itag=%d mime=%q>", d.Itag, d.MimeType)
	}
}

// ParseMimeType splits a stream MIME type such as
// `video/mp4; codecs="avc1.64001F, mp4a.40.2"` into its lowercase base type
// and codec list.
func ParseMimeType(raw string) (string, []string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	base, params, err := mime.ParseMediaType(raw)
	if err != nil {
		base = raw
		if i := strings.Index(base, ";"); i >= 0 {
			base = base[:i]
		}
		base = strings.ToLower(strings.TrimSpace(base))
		params = nil
	}
	var codecs []string
	for _, c := range strings.Split(params["codecs"], ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			codecs = append(codecs, c)
		}
	}
	return base, codecs
}

var audioCodecPrefixes = []string{"mp4a", "opus", "vorbis", "ac-3", "ec-3", "flac", "mp3"}

// IsAudioCodec reports whether a codec identifier names an audio codec.
func IsAudioCodec(codec string) bool {
	codec = strings.ToLower(codec)
	for _, p := range audioCodecPrefixes {
		if strings.HasPrefix(codec, p) {
			return true
		}
	}
	return false
}

// SplitCodecs separates a codec list into its first video and first audio codec.
func SplitCodecs(codecs []string) (video, audio string) {
	for _, c := range codecs {
		if IsAudioCodec(c) {
			if audio == "" {
				audio = c
			}
			continue
		}
		if video == "" {
			video = c
		}
	}
	return video, audio
}
