// Package progress reports use case progress on the terminal.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/anchor/internal/domain/config"
	"github.com/trebuchet-org/anchor/internal/usecase"
)

var stageColors = map[string]*color.Color{
	"factory": color.New(color.FgMagenta, color.Bold),
	"deploy":  color.New(color.FgCyan, color.Bold),
	"verify":  color.New(color.FgBlue, color.Bold),
}

// Sink shows progress events as a spinner line. Without a terminal each
// event is printed on its own line instead.
type Sink struct {
	out         io.Writer
	interactive bool

	mu      sync.Mutex
	spinner *spinner.Spinner
}

func NewSink(out io.Writer, interactive bool) *Sink {
	return &Sink{out: out, interactive: interactive}
}

// ProvideSink creates the progress sink for Wire dependency injection.
// Progress goes to stderr so command output stays machine readable.
func ProvideSink(cfg *config.RuntimeConfig) *Sink {
	return NewSink(os.Stderr, !cfg.NonInteractive && !cfg.Debug)
}

func (s *Sink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := formatEvent(event)
	if !s.interactive {
		if line != "" {
			fmt.Fprintln(s.out, line)
		}
		return
	}

	if !event.Spinner {
		s.stopLocked()
		return
	}
	if s.spinner == nil {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(s.out))
		s.spinner.HideCursor = false
	}
	s.spinner.Suffix = " " + line
	if !s.spinner.Active() {
		s.spinner.Start()
	}
}

// Info prints a message, pausing the spinner around it
func (s *Sink) Info(message string) {
	s.println(color.New(color.FgCyan), message)
}

// Error prints an error message, pausing the spinner around it
func (s *Sink) Error(message string) {
	s.println(color.New(color.FgRed), message)
}

// Stop clears the spinner line.
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Sink) println(c *color.Color, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive := s.spinner != nil && s.spinner.Active()
	if wasActive {
		s.spinner.Stop()
	}
	c.Fprintln(s.out, message)
	if wasActive {
		s.spinner.Start()
	}
}

func (s *Sink) stopLocked() {
	if s.spinner != nil && s.spinner.Active() {
		s.spinner.Stop()
	}
}

func formatEvent(event usecase.ProgressEvent) string {
	line := event.Message
	if event.Total > 1 {
		line = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, line)
	}
	if c, ok := stageColors[event.Stage]; ok && line != "" {
		line = c.Sprint(event.Stage) + " " + line
	}
	return line
}

var _ usecase.ProgressSink = (*Sink)(nil)
