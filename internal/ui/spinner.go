// Package ui holds terminal feedback helpers.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner shows progress on stderr while a blocking hg or LLM call runs.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner with the given suffix. It stays silent when
// stderr is not a terminal or HGPLAIN asks for undecorated output.
func NewSpinner(message string) *Spinner {
	if !Interactive(os.Stderr) {
		return &Spinner{}
	}
	return newSpinner(message, os.Stderr)
}

func newSpinner(message string, w io.Writer) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

// Interactive reports whether decorations may be drawn on f.
func Interactive(f *os.File) bool {
	if _, plain := os.LookupEnv("HGPLAIN"); plain {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (sp *Spinner) Start() {
	if sp.s != nil {
		sp.s.Start()
	}
}

func (sp *Spinner) Stop() {
	if sp.s != nil {
		sp.s.Stop()
	}
}
