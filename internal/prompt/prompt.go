// Package prompt implements the interactive terminal prompts jig uses to pick
// issues, transitions and users and to read free text.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

// ErrCancelled is returned when the user aborts a prompt with Esc or Ctrl+C.
var ErrCancelled = errors.New("prompt cancelled")

// Prompter runs prompts against a terminal.
type Prompter struct {
	in  io.Reader
	out io.Writer
	tty bool
}

// New returns a Prompter on stdin and stderr. Prompts fail fast when stdin is
// not a terminal.
func New() *Prompter {
	return &Prompter{in: os.Stdin, out: os.Stderr, tty: term.IsTerminal(int(os.Stdin.Fd()))}
}

// NewTTY returns a Prompter that reads from the controlling terminal even when
// stdin is redirected, as it is for git hooks.
func NewTTY() *Prompter {
	return &Prompter{out: os.Stderr, tty: true}
}

// NewWithIO returns a Prompter on the given streams.
func NewWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, tty: true}
}

// Interactive reports whether prompts can be shown.
func (p *Prompter) Interactive() bool {
	return p.tty
}

func (p *Prompter) run(model tea.Model) (tea.Model, error) {
	if !p.tty {
		return nil, jigerrors.InvalidArgs("cannot prompt without a terminal").
			WithSuggestion("Pass the value as an argument or flag instead")
	}

	opts := []tea.ProgramOption{tea.WithOutput(p.out)}
	if p.in == nil {
		opts = append(opts, tea.WithInputTTY())
	} else {
		opts = append(opts, tea.WithInput(p.in))
	}

	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return nil, jigerrors.WrapInternal(err, "prompt failed")
	}
	return final, nil
}

func cancelled(title string) error {
	return jigerrors.Wrap(ErrCancelled, jigerrors.KindGeneral, "%s", title)
}

// Selector picks one of a list of labels and returns its index.
type Selector interface {
	Select(title string, options []string) (int, error)
}

// Choose shows a filterable list of items and returns the one picked.
func Choose[T fmt.Stringer](s Selector, title string, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, jigerrors.NotFound("nothing to choose from")
	}

	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.String()
	}
	i, err := s.Select(title, labels)
	if err != nil {
		return zero, err
	}
	return items[i], nil
}
