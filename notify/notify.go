// Package notify surfaces messages to the user.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink receives user-facing messages. Messages are already localized.
// Reporting an error is terminal for the operation that produced it.
type Sink interface {
	Error(msg string)
	Warn(msg string)
	Info(msg string)
}

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

// Console writes prefixed lines to a terminal.
type Console struct {
	Out   io.Writer
	Color bool

	mu sync.Mutex
}

// Stderr returns a colored console on os.Stderr.
func Stderr() *Console {
	return &Console{Out: os.Stderr, Color: true}
}

// Error implements Sink.
func (c *Console) Error(msg string) { c.print(colorRed, "[ERROR]", msg) }

// Warn implements Sink.
func (c *Console) Warn(msg string) { c.print(colorYellow, "[WARN]", msg) }

// Info implements Sink.
func (c *Console) Info(msg string) { c.print(colorBlue, "[INFO]", msg) }

// Success reports a completed operation.
func (c *Console) Success(msg string) { c.print(colorGreen, "[OK]", msg) }

func (c *Console) print(color, prefix, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Color {
		fmt.Fprintf(c.Out, "%s%s%s %s\n", color, prefix, colorReset, msg)
		return
	}
	fmt.Fprintf(c.Out, "%s %s\n", prefix, msg)
}

// Recorder keeps messages in memory.
type Recorder struct {
	Errors, Warnings, Infos []string
}

// Error implements Sink.
func (r *Recorder) Error(msg string) { r.Errors = append(r.Errors, msg) }

// Warn implements Sink.
func (r *Recorder) Warn(msg string) { r.Warnings = append(r.Warnings, msg) }

// Info implements Sink.
func (r *Recorder) Info(msg string) { r.Infos = append(r.Infos, msg) }
