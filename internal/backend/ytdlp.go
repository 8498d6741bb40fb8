package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"
	"go.uber.org/zap"

	"github.com/jmagar/ytgrab/internal/model"
)

// InnertubeClient selects the player client the ytdlp library impersonates.
// The zero value keeps the library default.
type InnertubeClient struct {
	Name    string
	Version string
}

// EmbeddedClient is the player client that serves age-restricted videos.
var EmbeddedClient = InnertubeClient{Name: "TVHTML5_SIMPLY_EMBEDDED_PLAYER", Version: "2.0"}

// ytdlpSession is the part of the ytdlp library the adapter uses.
type ytdlpSession interface {
	Resolve(ctx context.Context, url, selector string, client InnertubeClient) (*ytdlp.VideoInfo, error)
	Download(ctx context.Context, url, selector, outputPath string, client InnertubeClient, onProgress func(ytdlp.Progress)) error
}

// libSession builds a fresh ytdlp.Downloader per call.
type libSession struct {
	httpClient *http.Client
}

func (s libSession) downloader(selector string, client InnertubeClient) *ytdlp.Downloader {
	d := ytdlp.New().WithFormat(selector, "")
	if s.httpClient != nil {
		d = d.WithHTTPClient(s.httpClient)
	}
	if client.Name != "" {
		d = d.WithInnertubeClient(client.Name, client.Version)
	}
	return d
}

func (s libSession) Resolve(ctx context.Context, url, selector string, client InnertubeClient) (*ytdlp.VideoInfo, error) {
	_, info, err := s.downloader(selector, client).ResolveURL(ctx, url)
	return info, err
}

func (s libSession) Download(ctx context.Context, url, selector, outputPath string, client InnertubeClient, onProgress func(ytdlp.Progress)) error {
	d := s.downloader(selector, client).WithOutputPath(outputPath)
	if onProgress != nil {
		d = d.WithProgress(onProgress)
	}
	_, err := d.Download(ctx, url)
	return err
}

// Ytdlp adapts github.com/ytget/ytdlp. It switches to EmbeddedClient in
// BypassAgeGate, which the pipeline calls right after FetchMetadata.
type Ytdlp struct {
	session    ytdlpSession
	logger     *zap.Logger
	onProgress func(downloaded, total, speed int64)

	client InnertubeClient
	url    string
	info   *ytdlp.VideoInfo
}

// NewYtdlp returns the ytget/ytdlp backend.
func NewYtdlp(opts Options) *Ytdlp {
	return newYtdlp(libSession{httpClient: opts.HTTPClient}, opts)
}

func newYtdlp(session ytdlpSession, opts Options) *Ytdlp {
	return &Ytdlp{
		session:    session,
		logger:     opts.logger().With(zap.String("backend", model.BackendYtdlp)),
		onProgress: opts.OnProgress,
	}
}

func (y *Ytdlp) Name() string { return model.BackendYtdlp }

func (y *Ytdlp) FetchMetadata(ctx context.Context, url string) (*model.VideoMetadata, error) {
	y.client = InnertubeClient{}
	info, err := y.session.Resolve(ctx, url, "best", y.client)
	if err != nil {
		return nil, extractionErr(y.Name(), model.StageFetch, err)
	}
	if info == nil {
		return nil, extractionErr(y.Name(), model.StageFetch, fmt.Errorf("no video info returned for %s", url))
	}
	y.url = url
	y.info = info
	y.logger.Debug("metadata fetched", zap.String("video_id", info.ID), zap.Int("formats", len(info.Formats)))
	return &model.VideoMetadata{
		URL:             url,
		Title:           info.Title,
		VideoID:         info.ID,
		Author:          info.Author,
		DurationSeconds: info.Duration,
		Description:     info.Description,
	}, nil
}

// BypassAgeGate re-resolves the video with EmbeddedClient and uses that
// client for the rest of the attempt.
func (y *Ytdlp) BypassAgeGate(ctx context.Context, meta *model.VideoMetadata) error {
	if err := y.check(meta); err != nil {
		return extractionErr(y.Name(), model.StageAgeGate, err)
	}
	info, err := y.session.Resolve(ctx, y.url, "best", EmbeddedClient)
	if err != nil {
		return extractionErr(y.Name(), model.StageAgeGate, err)
	}
	if info == nil || len(info.Formats) == 0 {
		return extractionErr(y.Name(), model.StageAgeGate, fmt.Errorf("embedded client returned no formats"))
	}
	y.client = EmbeddedClient
	y.info = info
	y.logger.Debug("age gate bypassed", zap.String("client", EmbeddedClient.Name))
	return nil
}

func (y *Ytdlp) ListStreams(_ context.Context, meta *model.VideoMetadata) ([]model.StreamDescriptor, error) {
	if err := y.check(meta); err != nil {
		return nil, extractionErr(y.Name(), model.StageList, err)
	}
	streams := make([]model.StreamDescriptor, 0, len(y.info.Formats))
	for _, f := range y.info.Formats {
		if d, ok := ytdlpDescriptor(f); ok {
			streams = append(streams, d)
		}
	}
	return streams, nil
}

func (y *Ytdlp) DownloadStream(ctx context.Context, meta *model.VideoMetadata, stream model.StreamDescriptor, destDir, filename string) (model.DownloadResult, error) {
	if err := y.check(meta); err != nil {
		return model.DownloadResult{}, downloadErr(y.Name(), stream.Kind, err)
	}
	if !hasItag(y.info.Formats, stream.Itag) {
		return model.DownloadResult{}, downloadErr(y.Name(), stream.Kind, fmt.Errorf("itag %d not in catalog", stream.Itag))
	}
	path := targetPath(destDir, filename)
	// the library resumes any existing <path>.tmp
	if err := os.Remove(partialPath(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return model.DownloadResult{}, downloadErr(y.Name(), stream.Kind, err)
	}
	selector := fmt.Sprintf("itag=%d", stream.Itag)

	var progress func(ytdlp.Progress)
	if y.onProgress != nil {
		started := time.Now()
		progress = func(p ytdlp.Progress) {
			var speed int64
			if elapsed := time.Since(started).Milliseconds(); elapsed > 0 {
				speed = p.DownloadedSize * 1000 / elapsed
			}
			y.onProgress(p.DownloadedSize, p.TotalSize, speed)
		}
	}

	start := time.Now()
	if err := y.session.Download(ctx, y.url, selector, path, y.client, progress); err != nil {
		return model.DownloadResult{}, downloadErr(y.Name(), stream.Kind, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return model.DownloadResult{}, downloadErr(y.Name(), stream.Kind, err)
	}
	return model.DownloadResult{
		Kind:      stream.Kind,
		Itag:      stream.Itag,
		Path:      path,
		Elapsed:   time.Since(start),
		SizeBytes: info.Size(),
	}, nil
}

func (y *Ytdlp) check(meta *model.VideoMetadata) error {
	if y.info == nil {
		return fmt.Errorf("metadata not fetched")
	}
	if meta != nil && meta.VideoID != "" && meta.VideoID != y.info.ID {
		return fmt.Errorf("metadata for %s does not match fetched video %s", meta.VideoID, y.info.ID)
	}
	return nil
}

func partialPath(path string) string { return path + ".tmp" }

func hasItag(formats []ytdlp.Format, itag int) bool {
	for _, f := range formats {
		if f.Itag == itag {
			return true
		}
	}
	return false
}

// ytdlpDescriptor maps a library format. The library reports no frame rate
// and a single bitrate for every format.
func ytdlpDescriptor(f ytdlp.Format) (model.StreamDescriptor, bool) {
	base, codecs := model.ParseMimeType(f.MimeType)
	videoCodec, audioCodec := model.SplitCodecs(codecs)
	switch {
	case strings.HasPrefix(base, "video/"):
		adaptive := audioCodec == ""
		return model.NewVideoStream(f.Itag, f.MimeType, adaptive, f.Quality, 0, videoCodec, f.Size), true
	case strings.HasPrefix(base, "audio/"):
		return model.NewAudioStream(f.Itag, f.MimeType, f.Bitrate, audioCodec, f.Size), true
	}
	return model.StreamDescriptor{}, false
}
