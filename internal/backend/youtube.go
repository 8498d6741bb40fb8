package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/jmagar/ytgrab/internal/model"
)

const channelURLPrefix = "https://www.youtube.com/channel/"

// youtubeClient is the part of *youtube.Client the adapter uses.
type youtubeClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// YouTube adapts github.com/kkdai/youtube.
type YouTube struct {
	client     youtubeClient
	logger     *zap.Logger
	onProgress func(downloaded, total, speed int64)

	video *youtube.Video
}

// NewYouTube returns the kkdai/youtube backend.
func NewYouTube(opts Options) *YouTube {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return newYouTube(&youtube.Client{HTTPClient: httpClient}, opts)
}

func newYouTube(client youtubeClient, opts Options) *YouTube {
	return &YouTube{
		client:     client,
		logger:     opts.logger().With(zap.String("backend", model.BackendYouTube)),
		onProgress: opts.OnProgress,
	}
}

func (y *YouTube) Name() string { return model.BackendYouTube }

func (y *YouTube) FetchMetadata(ctx context.Context, url string) (*model.VideoMetadata, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, extractionErr(y.Name(), model.StageFetch, err)
	}
	if video == nil {
		return nil, extractionErr(y.Name(), model.StageFetch, fmt.Errorf("no video returned for %s", url))
	}
	y.video = video
	y.logger.Debug("metadata fetched", zap.String("video_id", video.ID), zap.Int("formats", len(video.Formats)))

	meta := &model.VideoMetadata{
		URL:             url,
		Title:           video.Title,
		VideoID:         video.ID,
		Author:          video.Author,
		ChannelID:       video.ChannelID,
		PublishDate:     video.PublishDate,
		DurationSeconds: int(video.Duration / time.Second),
		ViewCount:       int64(video.Views),
		Description:     video.Description,
	}
	if video.ChannelID != "" {
		meta.ChannelURL = channelURLPrefix + video.ChannelID
	}
	return meta, nil
}

func (y *YouTube) ListStreams(_ context.Context, meta *model.VideoMetadata) ([]model.StreamDescriptor, error) {
	video, err := y.current(meta)
	if err != nil {
		return nil, extractionErr(y.Name(), model.StageList, err)
	}
	streams := make([]model.StreamDescriptor, 0, len(video.Formats))
	for i := range video.Formats {
		if d, ok := youtubeDescriptor(&video.Formats[i]); ok {
			streams = append(streams, d)
		}
	}
	return streams, nil
}

func (y *YouTube) DownloadStream(ctx context.Context, meta *model.VideoMetadata, stream model.StreamDescriptor, destDir, filename string) (model.DownloadResult, error) {
	video, err := y.current(meta)
	if err != nil {
		return model.DownloadResult{}, downloadErr(y.Name(), stream.Kind, err)
	}
	format := findFormat(video.Formats, stream.Itag)
	if format == nil {
		return model.DownloadResult{}, downloadErr(y.Name(), stream.Kind, fmt.Errorf("itag %d not in catalog", stream.Itag))
	}

	start := time.Now()
	body, size, err := y.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return model.DownloadResult{}, downloadErr(y.Name(), stream.Kind, err)
	}
	defer body.Close()

	path := targetPath(destDir, filename)
	written, err := writeStream(path, body, size, y.onProgress)
	if err != nil {
		return model.DownloadResult{}, downloadErr(y.Name(), stream.Kind, err)
	}
	return model.DownloadResult{
		Kind:      stream.Kind,
		Itag:      stream.Itag,
		Path:      path,
		Elapsed:   time.Since(start),
		SizeBytes: written,
	}, nil
}

func (y *YouTube) current(meta *model.VideoMetadata) (*youtube.Video, error) {
	if y.video == nil {
		return nil, fmt.Errorf("metadata not fetched")
	}
	if meta != nil && meta.VideoID != "" && meta.VideoID != y.video.ID {
		return nil, fmt.Errorf("metadata for %s does not match fetched video %s", meta.VideoID, y.video.ID)
	}
	return y.video, nil
}

func findFormat(formats youtube.FormatList, itag int) *youtube.Format {
	for i := range formats {
		if formats[i].ItagNo == itag {
			return &formats[i]
		}
	}
	return nil
}

// youtubeDescriptor maps a library format. Formats that are neither video
// nor audio are dropped.
func youtubeDescriptor(f *youtube.Format) (model.StreamDescriptor, bool) {
	base, codecs := model.ParseMimeType(f.MimeType)
	videoCodec, audioCodec := model.SplitCodecs(codecs)
	size := f.ContentLength
	switch {
	case strings.HasPrefix(base, "video/"):
		adaptive := f.AudioChannels == 0
		return model.NewVideoStream(f.ItagNo, f.MimeType, adaptive, f.QualityLabel, f.FPS, videoCodec, size), true
	case strings.HasPrefix(base, "audio/"):
		bitrate := f.AverageBitrate
		if bitrate == 0 {
			bitrate = f.Bitrate
		}
		return model.NewAudioStream(f.ItagNo, f.MimeType, bitrate, audioCodec, size), true
	}
	return model.StreamDescriptor{}, false
}
