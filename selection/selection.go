// Package selection provides the text a user selected in an editor and a
// way to replace exactly that text.
package selection

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/minios-linux/lokey/guard"
	"github.com/minios-linux/lokey/resource"
)

// Selection is a span of editor text.
type Selection interface {
	SelectedText() string
	ReplaceSelection(newText string) error
}

// ---------------------------------------------------------------------------
// Span: byte range in a source file
// ---------------------------------------------------------------------------

// Span selects the bytes [Start, End) of a source file.
type Span struct {
	Path       string
	Start, End int

	data []byte
	snap guard.Snapshot
}

// OpenSpan reads path and selects [start, end). The range must lie within
// the file and on UTF-8 character boundaries.
func OpenSpan(path string, start, end int) (*Span, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if start < 0 || end < start || end > len(data) {
		return nil, fmt.Errorf("selection %d:%d is outside %s (%d bytes)", start, end, path, len(data))
	}
	if !boundary(data, start) || !boundary(data, end) {
		return nil, fmt.Errorf("selection %d:%d splits a UTF-8 character in %s", start, end, path)
	}

	return &Span{
		Path:  path,
		Start: start,
		End:   end,
		data:  data,
		snap:  guard.Take(path, data),
	}, nil
}

func boundary(data []byte, i int) bool {
	return i == len(data) || utf8.RuneStart(data[i])
}

// SelectedText implements Selection.
func (s *Span) SelectedText() string {
	return string(s.data[s.Start:s.End])
}

// ReplaceSelection implements Selection. The file must be unchanged since
// the span was opened. The span then covers the new text.
func (s *Span) ReplaceSelection(newText string) error {
	if err := s.snap.Verify(); err != nil {
		return err
	}

	out := make([]byte, 0, len(s.data)-(s.End-s.Start)+len(newText))
	out = append(out, s.data[:s.Start]...)
	out = append(out, newText...)
	out = append(out, s.data[s.End:]...)

	if err := resource.WriteFileAtomic(s.Path, out); err != nil {
		return fmt.Errorf("writing %s: %w", s.Path, err)
	}

	s.data = out
	s.End = s.Start + len(newText)
	s.snap = guard.Take(s.Path, out)
	return nil
}

// ParseRange parses "start:end" byte offsets.
func ParseRange(s string) (start, end int, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid range %q (want start:end)", s)
	}
	if start, err = strconv.Atoi(strings.TrimSpace(a)); err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q: %w", a, err)
	}
	if end, err = strconv.Atoi(strings.TrimSpace(b)); err != nil {
		return 0, 0, fmt.Errorf("invalid range end %q: %w", b, err)
	}
	return start, end, nil
}

// ---------------------------------------------------------------------------
// Stream: editor filter (selection on stdin, replacement on stdout)
// ---------------------------------------------------------------------------

// Stream reads the selection from a reader and writes its replacement to a
// writer, the way editors pipe a selection through an external command.
// A trailing line break on the input is not part of the selected text and
// is written back after the replacement.
type Stream struct {
	text    string
	eol     string
	out     io.Writer
	written bool
}

// ReadStream consumes r as the selected text.
func ReadStream(r io.Reader, w io.Writer) (*Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading selection: %w", err)
	}

	text := string(data)
	eol := ""
	switch {
	case strings.HasSuffix(text, "\r\n"):
		eol = "\r\n"
	case strings.HasSuffix(text, "\n"):
		eol = "\n"
	}
	return &Stream{text: strings.TrimSuffix(text, eol), eol: eol, out: w}, nil
}

// SelectedText implements Selection.
func (s *Stream) SelectedText() string {
	return s.text
}

// ReplaceSelection implements Selection. Only the first call writes.
func (s *Stream) ReplaceSelection(newText string) error {
	if s.written {
		return fmt.Errorf("selection already replaced")
	}
	s.written = true
	if _, err := io.WriteString(s.out, newText+s.eol); err != nil {
		return fmt.Errorf("writing replacement: %w", err)
	}
	return nil
}

// Restore writes the original selection back unless a replacement was
// already written, leaving the editor buffer unchanged.
func (s *Stream) Restore() error {
	if s.written {
		return nil
	}
	return s.ReplaceSelection(s.text)
}
