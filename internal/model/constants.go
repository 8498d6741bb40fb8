package model

// Fixed filenames written into the destination directory. They are not
// derived per run, so two runs against one directory overwrite each other.
const (
	VideoFilename  = "video.mp4"
	AudioFilename  = "audio.mp4"
	Mp3Filename    = "audio.mp3"
	MergedFilename = "output.mp4"
)

// Backend names.
const (
	BackendYouTube = "youtube"
	BackendYtdlp   = "ytdlp"
)

// DefaultBackends is the fallback order used when none is configured.
var DefaultBackends = []string{BackendYouTube, BackendYtdlp}

// MediaType represents the download mode of a run (audio, video, or both)
type MediaType int

const (
	MediaTypeUnknown MediaType = 0
	MediaTypeAudio   MediaType = 1
	MediaTypeVideo   MediaType = 2
	MediaTypeBoth    MediaType = 3
)

// ResolveMediaType computes the download mode from the two restriction
// flags. Asking for both restrictions behaves like asking for neither.
func ResolveMediaType(audioOnly, videoOnly bool) MediaType {
	downloadBoth := (audioOnly && videoOnly) || (!audioOnly && !videoOnly)
	switch {
	case downloadBoth:
		return MediaTypeBoth
	case videoOnly:
		return MediaTypeVideo
	default:
		return MediaTypeAudio
	}
}

// String returns the string representation of the MediaType
func (m MediaType) String() string {
	switch m {
	case MediaTypeAudio:
		return "audio"
	case MediaTypeVideo:
		return "video"
	case MediaTypeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// HasAudio returns true if the media type includes audio
func (m MediaType) HasAudio() bool {
	return m == MediaTypeAudio || m == MediaTypeBoth
}

// HasVideo returns true if the media type includes video
func (m MediaType) HasVideo() bool {
	return m == MediaTypeVideo || m == MediaTypeBoth
}

// DownloadBoth reports whether both streams are fetched.
func (m MediaType) DownloadBoth() bool {
	return m == MediaTypeBoth
}
