package selector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jmagar/ytgrab/internal/model"
)

// LinePrompter reads answers one line at a time. It blocks until a line or
// EOF arrives; EOF yields an empty answer.
type LinePrompter struct {
	in   *bufio.Reader
	out  io.Writer
	show func(kind model.StreamKind, candidates []model.StreamDescriptor)
}

// NewLinePrompter returns a prompter reading from in and writing prompts to
// out. show, when set, is called with the candidates before each itag prompt.
func NewLinePrompter(in io.Reader, out io.Writer, show func(model.StreamKind, []model.StreamDescriptor)) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out, show: show}
}

// PromptItag implements Prompter.
func (p *LinePrompter) PromptItag(kind model.StreamKind, candidates []model.StreamDescriptor) (string, error) {
	if p.show != nil {
		p.show(kind, candidates)
	}
	return p.Ask(fmt.Sprintf("Enter the itag of the %s stream:", kind))
}

// Ask prints question followed by the ">> " marker and returns the trimmed
// answer.
func (p *LinePrompter) Ask(question string) (string, error) {
	if question != "" {
		fmt.Fprintln(p.out, question)
	}
	fmt.Fprint(p.out, ">> ")
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
