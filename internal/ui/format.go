package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/term"
)

// Box drawing characters
const (
	BoxTopLeft     = "┌"
	BoxTopRight    = "┐"
	BoxBottomLeft  = "└"
	BoxBottomRight = "┘"
	BoxVertical    = "│"
	BoxHorizontal  = "─"
	BoxTeeLeft     = "├"
	BoxTeeRight    = "┤"
	BoxTeeTop      = "┬"
	BoxTeeBottom   = "┴"
	BoxCross       = "┼"

	BoxDoubleHorizontal  = "═"
	BoxDoubleVertical    = "║"
	BoxDoubleTopLeft     = "╔"
	BoxDoubleTopRight    = "╗"
	BoxDoubleBottomLeft  = "╚"
	BoxDoubleBottomRight = "╝"

	BulletCircle  = "•"
	BulletArrow   = "▸"
	BulletDiamond = "◆"
)

const (
	defaultTermWidth = 80
	termWidthTTL     = 500 * time.Millisecond
	keyWidth         = 20
	progressBarWidth = 30
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// widthCache holds the last terminal width so progress redraws do not
// query the tty on every update.
type widthCache struct {
	mu    sync.Mutex
	width int
	at    time.Time
}

var termWidth widthCache

func (c *widthCache) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.width > 0 && time.Since(c.at) <= termWidthTTL {
		return c.width
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		w = defaultTermWidth
	}
	c.width, c.at = w, time.Now()
	return w
}

// VisibleLength returns the number of runes in s, escape codes excluded.
func VisibleLength(s string) int {
	return utf8.RuneCountInString(ansiRe.ReplaceAllString(s, ""))
}

// clip shortens s to width runes, ending in "..." when there is room for it.
// Escape codes are dropped from clipped strings.
func clip(s string, width int) string {
	if VisibleLength(s) <= width {
		return s
	}
	runes := []rune(ansiRe.ReplaceAllString(s, ""))
	width = max(width, 0)
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// fit clips s and pads it to exactly width columns.
func fit(s string, width int, align string) string {
	s = clip(s, width)
	gap := width - VisibleLength(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case "right":
		return strings.Repeat(" ", gap) + s
	case "center":
		return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// PrintHeader prints title centered in a double-line box spanning the terminal.
func PrintHeader(title string) {
	writeHeader(os.Stdout, title, termWidth.get())
}

func writeHeader(w io.Writer, title string, width int) {
	inner := max(width-2, 4)
	line := strings.Repeat(BoxDoubleHorizontal, inner)
	fmt.Fprintf(w, "\n%s%s%s%s%s\n", ColorCyan, BoxDoubleTopLeft, line, BoxDoubleTopRight, ColorReset)
	fmt.Fprintf(w, "%s%s%s %s%s%s %s%s%s\n",
		ColorCyan, BoxDoubleVertical, ColorReset,
		ColorBold, fit(title, inner-2, "center"), ColorReset,
		ColorCyan, BoxDoubleVertical, ColorReset)
	fmt.Fprintf(w, "%s%s%s%s%s\n\n", ColorCyan, BoxDoubleBottomLeft, line, BoxDoubleBottomRight, ColorReset)
}

// PrintSection prints a section title with underline.
func PrintSection(title string) {
	fmt.Printf("\n%s%s %s%s\n", ColorBold, BulletDiamond, title, ColorReset)
	fmt.Printf("%s%s%s\n\n", ColorCyan, strings.Repeat(BoxHorizontal, utf8.RuneCountInString(title)+2), ColorReset)
}

// TableColumn is one column of a Table. Align is "left" (default), "right"
// or "center".
type TableColumn struct {
	Header string
	Width  int
	Align  string
}

// Table is a boxed table of plain-text cells.
type Table struct {
	Columns []TableColumn
	Rows    [][]string
}

// NewTable creates an empty table.
func NewTable(columns []TableColumn) *Table {
	return &Table{Columns: columns}
}

// AddRow appends a row. Missing cells are blank and extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Print renders the table to stdout.
func (t *Table) Print() {
	t.Render(os.Stdout, termWidth.get())
}

// Render writes the table to w. Columns shrink proportionally when the
// requested widths do not fit termWidth.
func (t *Table) Render(w io.Writer, termWidth int) {
	if len(t.Columns) == 0 {
		return
	}
	widths := t.widths(termWidth)
	headers := make([]string, len(t.Columns))
	centered := make([]string, len(t.Columns))
	aligns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i], centered[i], aligns[i] = c.Header, "center", c.Align
	}

	rule(w, widths, BoxTopLeft, BoxTeeTop, BoxTopRight)
	writeRow(w, headers, widths, centered, ColorBold)
	rule(w, widths, BoxTeeLeft, BoxCross, BoxTeeRight)
	for _, row := range t.Rows {
		writeRow(w, row, widths, aligns, "")
	}
	rule(w, widths, BoxBottomLeft, BoxTeeBottom, BoxBottomRight)
}

func (t *Table) widths(termWidth int) []int {
	// one border per column plus the closing one, and a space either side of each cell
	avail := termWidth - 3*len(t.Columns) - 1
	total := 0
	for _, c := range t.Columns {
		total += c.Width
	}
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = c.Width
		if total > avail && total > 0 {
			widths[i] = max(1, c.Width*avail/total)
		}
	}
	return widths
}

func rule(w io.Writer, widths []int, left, mid, right string) {
	segments := make([]string, len(widths))
	for i, n := range widths {
		segments[i] = strings.Repeat(BoxHorizontal, n+2)
	}
	fmt.Fprintln(w, ColorCyan+left+strings.Join(segments, mid)+right+ColorReset)
}

func writeRow(w io.Writer, cells []string, widths []int, aligns []string, style string) {
	sep := ColorCyan + BoxVertical + ColorReset
	var b strings.Builder
	b.WriteString(sep)
	for i, n := range widths {
		cell := fit(cells[i], n, aligns[i])
		if style != "" {
			cell = style + cell + ColorReset
		}
		b.WriteString(" " + cell + " " + sep)
	}
	fmt.Fprintln(w, b.String())
}

// PrintList prints a styled bullet list.
func PrintList(items []string, color string) {
	for _, item := range items {
		fmt.Printf("  %s%s%s %s\n", color, BulletCircle, ColorReset, item)
	}
}

// PrintKeyValue prints an aligned "key: value" line, clipping the value to
// the terminal.
func PrintKeyValue(key, value, valueColor string) {
	room := max(termWidth.get()-keyWidth-4, 10)
	fmt.Printf("  %s%s%s %s%s%s\n",
		ColorCyan, fit(key+":", keyWidth, "left"), ColorReset,
		valueColor, clip(value, room), ColorReset)
}

// PrintDivider prints a horizontal rule across the terminal.
func PrintDivider() {
	fmt.Printf("%s%s%s\n", ColorCyan, strings.Repeat(BoxHorizontal, termWidth.get()-1), ColorReset)
}

// RenderProgress redraws the progress line in place.
func RenderProgress(label string, percentage int, speed, downloaded, total, fillColor string) {
	percentage = min(max(percentage, 0), 100)
	filled := percentage * progressBarWidth / 100
	line := fmt.Sprintf("%s%-5s%s %s%s%s%s %3d%%  %s / %s  %s/s",
		ColorBold, label, ColorReset,
		fillColor, strings.Repeat("█", filled), ColorReset,
		strings.Repeat("░", progressBarWidth-filled),
		percentage, downloaded, total, speed)
	pad := max(termWidth.get()-VisibleLength(line)-1, 0)
	fmt.Printf("\r%s%s", line, strings.Repeat(" ", pad))
}
