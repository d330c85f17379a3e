// Package format runs the post-processing pass on a resource document
// after it was written, such as a code formatter.
package format

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Hook post-processes a written document. Failures are reported to the
// user but never undo the write.
type Hook interface {
	Format(ctx context.Context, path string) error
}

// Nop does nothing.
type Nop struct{}

// Format implements Hook.
func (Nop) Format(context.Context, string) error { return nil }

// Command runs an external formatter with the document path appended to
// its arguments, e.g. ["prettier", "--write"].
type Command []string

// Format implements Hook.
func (c Command) Format(ctx context.Context, path string) error {
	if len(c) == 0 {
		return nil
	}

	args := append(append([]string{}, c[1:]...), path)
	cmd := exec.CommandContext(ctx, c[0], args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	log.Debug().Strs("argv", append([]string{c[0]}, args...)).Msg("running formatter")
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", c[0], err, msg)
		}
		return fmt.Errorf("%s: %w", c[0], err)
	}
	return nil
}

// New returns a Command hook for argv, or Nop when argv is empty.
func New(argv []string) Hook {
	if len(argv) == 0 {
		return Nop{}
	}
	return Command(argv)
}
