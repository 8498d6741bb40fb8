package main

import (
	"fmt"
	"strings"

	"github.com/jmagar/ytgrab/internal/model"
	"github.com/jmagar/ytgrab/internal/ui"
)

func init() {
	// Wire the colored help text into model.Args.Description()
	model.ArgsDescriptionFunc = argsDescription
}

func argsDescription() string {
	var b strings.Builder

	heading := func(title string) {
		fmt.Fprintf(&b, "\n%s%s %s%s\n", ui.ColorBold, ui.BulletDiamond, title, ui.ColorReset)
		fmt.Fprintf(&b, "%s%s%s\n", ui.ColorCyan, strings.Repeat(ui.BoxHorizontal, 60), ui.ColorReset)
	}
	example := func(syntax, desc string) {
		fmt.Fprintf(&b, "  %s%s%s %s%-44s%s %s\n", ui.ColorYellow, ui.BulletArrow, ui.ColorReset, ui.ColorCyan, syntax, ui.ColorReset, desc)
	}

	fmt.Fprintf(&b, "%s%s Download video and audio streams, merge them, extract mp3%s\n", ui.ColorBold, ui.SymbolBoth, ui.ColorReset)

	heading("EXAMPLES")
	example("ytgrab -u <url>", "best video + audio, merged into <title>.mp4")
	example("ytgrab -u <url> --audio-only --mp3", "audio.mp4 and audio.mp3")
	example("ytgrab -u <url> --no-merge -d ~/Videos", "keep video.mp4 and audio.mp4")
	example("ytgrab -u <url> --pick", "choose streams by itag")
	example("ytgrab -u <url> --list", "print the candidate streams")
	example("ytgrab --check-ffmpeg", "print the ffmpeg version")

	heading("ENVIRONMENT")
	example("YTGRAB_DEST, YTGRAB_BACKENDS", "defaults for --dest and --backends")
	example("YTGRAB_FFMPEG, YTGRAB_LOG_LEVEL", "defaults for --ffmpeg and --log-level")
	example("YTGRAB_THEME", "nordonedark, vivid or plain")

	return b.String()
}
