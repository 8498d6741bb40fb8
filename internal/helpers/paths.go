package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// MaxTitleLength is the longest sanitized title, in characters.
const MaxTitleLength = 255

const sanRegexStr = `[\/\\:*?"<>|]`

var sanRegex = regexp.MustCompile(sanRegexStr)

// SanitizeTitle turns a video title into a filename stem: it removes
// / \ : * ? " < > |, trims surrounding whitespace, replaces spaces with
// underscores and keeps at most MaxTitleLength characters. Applying it twice
// gives the same result as applying it once.
func SanitizeTitle(title string) string {
	san := sanRegex.ReplaceAllString(title, "")
	san = strings.TrimSpace(san)
	san = strings.ReplaceAll(san, " ", "_")
	runes := []rune(san)
	if len(runes) > MaxTitleLength {
		san = strings.TrimRightFunc(string(runes[:MaxTitleLength]), unicode.IsSpace)
	}
	return san
}

// FileExists checks if a file (not directory) exists at the given path.
func FileExists(path string) (bool, error) {
	f, err := os.Stat(path)
	if err == nil {
		return !f.IsDir(), nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ValidatePath checks that a path does not contain dangerous characters.
func ValidatePath(path string) error {
	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains invalid characters")
	}
	return nil
}

// ResolveDestDir returns the absolute form of dir. The directory must
// already exist; it is never created.
func ResolveDestDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := ValidatePath(dir); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve destination %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("destination %q: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("destination %q is not a directory", abs)
	}
	return abs, nil
}

// FileSize returns the size of the file at path, or 0 when it cannot be read.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
