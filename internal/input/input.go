// Package input decouples where candidate passwords come from (console prompts, piped
// lines, the temporary store) from checking them.
package input

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/alvinbaena/pwdcheck/internal/store"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
)

// Sentinel ends a manual entry session.
const Sentinel = "done"

// ErrInterrupted is returned when the user aborts a console prompt with ^C. Unlike the end of
// input it discards whatever was entered so far.
var ErrInterrupted = errors.New("input interrupted")

type Mode int

const (
	ModeUnknown Mode = iota
	ModeSpeech
	ModeManual
)

func (m Mode) String() string {
	switch m {
	case ModeSpeech:
		return "speech"
	case ModeManual:
		return "manual"
	}
	return "unknown"
}

// ParseMode maps the answer to the mode question: y is speech-to-text, n is manual entry.
func ParseMode(answer string) Mode {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y":
		return ModeSpeech
	case "n":
		return ModeManual
	}
	return ModeUnknown
}

// Prompter asks for one line of input.
type Prompter interface {
	Prompt() (string, error)
}

// LinePrompter reads answers from a reader, one per line. Used for piped stdin and tests.
type LinePrompter struct {
	scanner *bufio.Scanner
}

func NewLinePrompter(r io.Reader) *LinePrompter {
	return &LinePrompter{scanner: bufio.NewScanner(r)}
}

// Prompt returns io.EOF once the reader is exhausted.
func (p *LinePrompter) Prompt() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(p.scanner.Text(), "\r"), nil
}

// ConsolePrompter is an interactive promptui prompt.
type ConsolePrompter struct {
	prompt promptui.Prompt
}

// NewConsolePrompter prompts with label. Masked prompts hide the typed characters.
func NewConsolePrompter(label string, masked bool, stdin io.ReadCloser, stdout io.WriteCloser) *ConsolePrompter {
	prompt := promptui.Prompt{
		Label:  label,
		Stdin:  stdin,
		Stdout: stdout,
	}
	if masked {
		prompt.Mask = '*'
	}
	return &ConsolePrompter{prompt: prompt}
}

// Prompt maps ^D to io.EOF and ^C to ErrInterrupted.
func (p *ConsolePrompter) Prompt() (string, error) {
	result, err := p.prompt.Run()
	switch {
	case errors.Is(err, promptui.ErrEOF):
		return "", io.EOF
	case errors.Is(err, promptui.ErrInterrupt):
		return "", ErrInterrupted
	}
	return result, err
}

// CollectManual prompts for passwords until the sentinel (any case) or the end of input and
// appends each one to s. Empty lines are skipped. Returns the number of passwords stored.
// Any other prompt error, ErrInterrupted included, is returned as is and the batch must not
// be checked.
func CollectManual(p Prompter, s *store.Store) (int, error) {
	for {
		pwd, err := p.Prompt()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s.Len(), err
		}

		if strings.EqualFold(pwd, Sentinel) {
			break
		}
		if pwd == "" {
			continue
		}

		if err = s.Append(pwd); err != nil {
			return s.Len(), err
		}
	}

	log.Debug().Msgf("%d passwords collected", s.Len())
	return s.Len(), nil
}

// Source iterates over candidate passwords. Next returns io.EOF after the last one.
type Source interface {
	Next() (string, error)
}

type sliceSource struct {
	items []string
	pos   int
}

func (s *sliceSource) Next() (string, error) {
	if s.pos >= len(s.items) {
		return "", io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item, nil
}

// FromStore ends the writing phase of s and iterates over what was stored.
func FromStore(s *store.Store) (Source, error) {
	passwords, err := s.Passwords()
	if err != nil {
		return nil, err
	}
	return &sliceSource{items: passwords}, nil
}

// FromSlice iterates over passwords in order.
func FromSlice(passwords ...string) Source {
	return &sliceSource{items: passwords}
}

// Drain reads every remaining password of src.
func Drain(src Source) ([]string, error) {
	var out []string
	for {
		pwd, err := src.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, pwd)
	}
}
