// Package prompt reads credentials from the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.trai.ch/parcel/internal/core/domain"
	"golang.org/x/term"
)

// Terminal implements ports.Prompter.
// Secrets are read without echo when the input is a terminal.
type Terminal struct {
	mu     sync.Mutex
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// New creates a Terminal reading from in and writing labels to out.
func New(in io.Reader, out io.Writer) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &Terminal{in: in, reader: bufio.NewReader(in), out: out}
}

// Prompt prints label and returns the entered line without surrounding whitespace.
func (t *Terminal) Prompt(label string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprint(t.out, label); err != nil {
		return "", domain.Fail(domain.ErrLoginFailed, "failed to write prompt", "cause", err.Error())
	}
	return t.readLine()
}

// PromptSecret prints label and reads a line without echo when possible.
func (t *Terminal) PromptSecret(label string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprint(t.out, label); err != nil {
		return "", domain.Fail(domain.ErrLoginFailed, "failed to write prompt", "cause", err.Error())
	}

	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(t.out)
		if err != nil {
			return "", domain.Fail(domain.ErrLoginFailed, "failed to read secret", "cause", err.Error())
		}
		return string(secret), nil
	}
	return t.readLine()
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", domain.Fail(domain.ErrLoginFailed, "no input", "cause", err.Error())
	}
	return strings.TrimSpace(line), nil
}
