package ui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmagar/ytgrab/internal/model"
)

const progressInterval = 100 * time.Millisecond

var catalogColumns = []TableColumn{
	{Header: "Itag", Width: 5, Align: "right"},
	{Header: "Type", Width: 10},
	{Header: "Quality", Width: 14},
	{Header: "Codec", Width: 14},
	{Header: "Size", Width: 9, Align: "right"},
}

// FormatSize renders a byte count, or "unknown" when it is not reported.
func FormatSize(n int64) string {
	if n <= 0 {
		return "unknown"
	}
	return humanize.Bytes(uint64(n))
}

// FormatBitrate renders bits per second, e.g. "128 kbps".
func FormatBitrate(bps int) string {
	if bps <= 0 {
		return "unknown"
	}
	return humanize.SI(float64(bps), "bps")
}

func streamQuality(s model.StreamDescriptor) string {
	if s.IsAudio() {
		return FormatBitrate(s.AverageBitrate)
	}
	q := s.Resolution
	if q == "" {
		q = "?"
	}
	if s.FPS > 0 {
		q += " " + strconv.Itoa(s.FPS) + "fps"
	}
	return q
}

func streamCodec(s model.StreamDescriptor) string {
	if s.IsAudio() {
		return s.AudioCodec
	}
	return s.VideoCodec
}

// DescribeStream returns a one-line summary of a stream.
func DescribeStream(s model.StreamDescriptor) string {
	parts := []string{"itag " + strconv.Itoa(s.Itag), s.BaseMimeType(), streamQuality(s)}
	if codec := streamCodec(s); codec != "" {
		parts = append(parts, codec)
	}
	parts = append(parts, FormatSize(s.FileSizeBytes))
	return strings.Join(parts, " · ")
}

// CatalogTable builds the candidate table shown by --list and --pick.
func CatalogTable(candidates []model.StreamDescriptor) *Table {
	table := NewTable(catalogColumns)
	for _, s := range candidates {
		table.AddRow(strconv.Itoa(s.Itag), s.BaseMimeType(), streamQuality(s), streamCodec(s), FormatSize(s.FileSizeBytes))
	}
	return table
}

// PrintCatalog prints the candidates of one kind under a section title.
func PrintCatalog(kind model.StreamKind, candidates []model.StreamDescriptor) {
	title := strings.ToUpper(kind.String()[:1]) + kind.String()[1:] + " streams"
	PrintSection(title)
	if len(candidates) == 0 {
		PrintWarning(fmt.Sprintf("no %s streams available", kind))
		return
	}
	CatalogTable(candidates).Print()
}

// PrintMetadata prints the title banner and the details a backend reported.
func PrintMetadata(backend string, meta *model.VideoMetadata) {
	if meta == nil {
		return
	}
	PrintHeader(meta.DisplayTitle())
	PrintKeyValue("Backend", backend, ColorPurple)
	if meta.Author != "" {
		PrintKeyValue("Author", meta.Author, ColorReset)
	}
	if meta.DurationSeconds > 0 {
		PrintKeyValue("Duration", (time.Duration(meta.DurationSeconds) * time.Second).String(), ColorReset)
	}
	if meta.ViewCount > 0 {
		PrintKeyValue("Views", humanize.Comma(meta.ViewCount), ColorReset)
	}
	if meta.LikeCount != nil {
		PrintKeyValue("Likes", humanize.Comma(*meta.LikeCount), ColorReset)
	}
	if meta.Rating != nil {
		PrintKeyValue("Rating", strconv.FormatFloat(*meta.Rating, 'f', 2, 64), ColorReset)
	}
	if !meta.PublishDate.IsZero() {
		PrintKeyValue("Published", meta.PublishDate.Format("2006-01-02"), ColorReset)
	}
	fmt.Println()
}

// PrintSelection prints the chosen streams before they are downloaded.
func PrintSelection(sel model.SelectionResult) {
	if sel.Video != nil {
		PrintInfo("Video stream: " + DescribeStream(*sel.Video))
	}
	if sel.Audio != nil {
		PrintInfo("Audio stream: " + DescribeStream(*sel.Audio))
	}
}

// PrintDownloadDone reports one finished stream.
func PrintDownloadDone(res model.DownloadResult) {
	PrintSuccess(fmt.Sprintf("%s saved to %s (%s in %s)",
		res.Kind, res.Path, FormatSize(res.SizeBytes), res.Elapsed.Round(100*time.Millisecond)))
}

// PrintOutcome lists the files a successful run left behind.
func PrintOutcome(out *model.PipelineOutcome) {
	if out == nil {
		return
	}
	PrintSuccess(fmt.Sprintf("Done with %s", out.Backend))
	PrintList(out.OutputPaths(), ColorGreen)
}

// Progress draws one download progress bar at a time. Updates arrive from
// the download goroutine, so it is safe for concurrent use.
type Progress struct {
	mu     sync.Mutex
	label  string
	active bool
	last   time.Time
}

// NewProgress returns a Progress drawing to stdout.
func NewProgress() *Progress {
	return &Progress{}
}

// Start begins a new bar, closing the previous one.
func (p *Progress) Start(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked()
	p.label = label
	p.last = time.Time{}
}

// Update redraws the bar, at most every progressInterval unless the
// download is complete.
func (p *Progress) Update(downloaded, total, speed int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	complete := total > 0 && downloaded >= total
	if !complete && time.Since(p.last) < progressInterval {
		return
	}
	p.last = time.Now()
	p.active = true

	pct := 0
	totalStr := "?"
	if total > 0 {
		pct = int(downloaded * 100 / total)
		totalStr = humanize.Bytes(uint64(total))
	}
	if speed < 0 {
		speed = 0
	}
	RenderProgress(p.label, pct, humanize.Bytes(uint64(speed)), humanize.Bytes(uint64(downloaded)), totalStr, ColorGreen)
}

// Finish ends the current bar line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked()
}

func (p *Progress) finishLocked() {
	if p.active {
		fmt.Println()
		p.active = false
	}
}
