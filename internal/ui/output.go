package ui

import (
	"fmt"

	"github.com/jmagar/ytgrab/internal/model"
)

// RunErrorCount and RunWarningCount track errors/warnings during a run.
var RunErrorCount int
var RunWarningCount int

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorGreen, SymbolCheck, ColorReset, msg, ColorReset)
}

// PrintError prints an error message and increments the error counter.
func PrintError(msg string) {
	RunErrorCount++
	fmt.Printf("%s%s%s %s%s\n", ColorRed, SymbolCross, ColorReset, msg, ColorReset)
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorBlue, SymbolInfo, ColorReset, msg, ColorReset)
}

// PrintWarning prints a warning message and increments the warning counter.
func PrintWarning(msg string) {
	RunWarningCount++
	fmt.Printf("%s%s%s %s%s\n", ColorYellow, SymbolWarning, ColorReset, msg, ColorReset)
}

// PrintDownload prints a download message.
func PrintDownload(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorCyan, SymbolDownload, ColorReset, msg, ColorReset)
}

// PrintMusic prints an audio related message.
func PrintMusic(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorGreen, SymbolMusic, ColorReset, msg, ColorReset)
}

// PrintFallback announces that the next backend is being tried.
func PrintFallback(from, to string) {
	fmt.Printf("%s%s%s %s %s %s%s\n", ColorYellow, SymbolGear, ColorReset, from, SymbolArrow, to, ColorReset)
}

// GetMediaTypeIndicator returns the emoji symbol for a media type.
func GetMediaTypeIndicator(mediaType model.MediaType) string {
	switch mediaType {
	case model.MediaTypeAudio:
		return SymbolAudio
	case model.MediaTypeVideo:
		return SymbolVideo
	case model.MediaTypeBoth:
		return SymbolBoth
	default:
		return ""
	}
}

// DescribeMediaType returns a human-readable download mode.
func DescribeMediaType(mediaType model.MediaType) string {
	switch mediaType {
	case model.MediaTypeAudio:
		return "audio only"
	case model.MediaTypeVideo:
		return "video only"
	case model.MediaTypeBoth:
		return "video and audio"
	default:
		return fmt.Sprintf("unknown (%d)", mediaType)
	}
}
