// Package download retrieves the selected streams into the destination
// directory and extracts an mp3 when asked to.
package download

import "github.com/jmagar/ytgrab/internal/model"

// Deps holds callbacks into the terminal UI. Any of them may be nil.
type Deps struct {
	// OnStart is called before a stream download begins.
	OnStart func(stream model.StreamDescriptor, path string)

	// OnDone is called after a stream has been written.
	OnDone func(res model.DownloadResult)

	// OnNotice reports a skipped optional step.
	OnNotice func(msg string)
}

func (d *Deps) start(stream model.StreamDescriptor, path string) {
	if d != nil && d.OnStart != nil {
		d.OnStart(stream, path)
	}
}

func (d *Deps) done(res model.DownloadResult) {
	if d != nil && d.OnDone != nil {
		d.OnDone(res)
	}
}

func (d *Deps) notice(msg string) {
	if d != nil && d.OnNotice != nil {
		d.OnNotice(msg)
	}
}
