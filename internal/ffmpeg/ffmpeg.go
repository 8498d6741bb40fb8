// Package ffmpeg runs the external transcoder used for mp3 extraction and
// stream merging.
package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jmagar/ytgrab/internal/helpers"
	"github.com/jmagar/ytgrab/internal/model"
)

// Mp3Bitrate is the audio bitrate, in bits per second, of extracted mp3 files.
const Mp3Bitrate = 320000

// Transcoder runs transcoder invocations. Run succeeds only when the process
// exits with status 0 and outputPath exists afterwards.
type Transcoder interface {
	Available() bool
	Run(ctx context.Context, args []string, outputPath string) error
}

// Exec is a Transcoder backed by an ffmpeg executable.
type Exec struct {
	Path string
}

// New returns an Exec for the binary at path. An empty path yields a
// transcoder that reports itself unavailable.
func New(path string) *Exec {
	return &Exec{Path: path}
}

// Available reports whether a binary was resolved.
func (e *Exec) Available() bool {
	return e != nil && e.Path != ""
}

// Run executes the binary with args and verifies outputPath was written.
func (e *Exec) Run(ctx context.Context, args []string, outputPath string) error {
	if !e.Available() {
		return model.ErrTranscoderUnavailable
	}
	var errBuffer bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Stderr = &errBuffer
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w\n%s", err, strings.TrimSpace(errBuffer.String()))
	}
	exists, err := helpers.FileExists(outputPath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", model.ErrOutputMissing, outputPath)
	}
	return nil
}

// Version returns the version token reported by `ffmpeg -version`.
func (e *Exec) Version(ctx context.Context) (string, error) {
	if !e.Available() {
		return "", model.ErrTranscoderUnavailable
	}
	var outBuffer, errBuffer bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Path, "-version")
	cmd.Stdout = &outBuffer
	cmd.Stderr = &errBuffer
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w\n%s", err, strings.TrimSpace(errBuffer.String()))
	}
	return ParseVersion(outBuffer.String())
}

// ParseVersion extracts the third whitespace separated token of the first
// line, e.g. "6.1.1" from "ffmpeg version 6.1.1 Copyright ...".
func ParseVersion(output string) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	if !scanner.Scan() {
		return "", errors.New("empty ffmpeg version output")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 3 {
		return "", fmt.Errorf("unexpected ffmpeg version line: %q", scanner.Text())
	}
	return fields[2], nil
}

// Mp3Args builds the arguments that extract an mp3 from an audio file.
func Mp3Args(input, output string) []string {
	return []string{
		"-y",
		"-i", input,
		"-f", "mp3",
		"-ab", fmt.Sprint(Mp3Bitrate),
		"-vn",
		output,
	}
}

// MergeArgs builds the arguments that mux a video and an audio file into a
// single container without re-encoding either stream.
func MergeArgs(video, audio, output string) []string {
	return []string{
		"-y",
		"-i", video,
		"-i", audio,
		"-c:v", "copy",
		"-c:a", "copy",
		output,
	}
}

// ResolveBinary finds the ffmpeg binary to use. An explicit path other than
// the bare defaults must exist. Otherwise ./ffmpeg, the binary next to the
// executable and PATH are tried in that order, or only PATH when usePath is
// set. The returned error means no transcoder is available.
func ResolveBinary(preferred string, usePath bool) (string, error) {
	preferred = strings.TrimSpace(preferred)

	if preferred != "" && preferred != "./ffmpeg" && preferred != "ffmpeg" {
		if resolved, err := exec.LookPath(preferred); err == nil {
			return resolved, nil
		}
		if info, err := os.Stat(preferred); err == nil && !info.IsDir() {
			return preferred, nil
		}
		return "", fmt.Errorf("configured ffmpeg binary not found: %s", preferred)
	}

	if usePath || preferred == "ffmpeg" {
		if resolved, err := exec.LookPath("ffmpeg"); err == nil {
			return resolved, nil
		}
		return "", errors.New("ffmpeg not found in PATH")
	}

	candidates := []string{"./ffmpeg"}
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exePath), "ffmpeg"))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if resolved, err := exec.LookPath("ffmpeg"); err == nil {
		return resolved, nil
	}
	return "", errors.New("ffmpeg binary not found (checked ./ffmpeg and PATH)")
}
