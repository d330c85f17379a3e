// Package picker chooses the resource document a selection is localized
// into.
package picker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrCanceled is returned when the user declines to choose a file.
var ErrCanceled = errors.New("no resource file chosen")

// Picker supplies the path of a resource document.
type Picker interface {
	Pick(ctx context.Context) (string, error)
}

// Func adapts a function to Picker.
type Func func(ctx context.Context) (string, error)

// Pick implements Picker.
func (f Func) Pick(ctx context.Context) (string, error) { return f(ctx) }

// Static always picks Path. An empty Path cancels.
type Static struct {
	Path string
}

// Pick implements Picker.
func (s Static) Pick(context.Context) (string, error) {
	if s.Path == "" {
		return "", ErrCanceled
	}
	return s.Path, nil
}

// Chain asks each picker in turn and returns the first path chosen.
type Chain []Picker

// Pick implements Picker.
func (c Chain) Pick(ctx context.Context) (string, error) {
	for _, p := range c {
		path, err := p.Pick(ctx)
		if errors.Is(err, ErrCanceled) {
			continue
		}
		return path, err
	}
	return "", ErrCanceled
}

// DefaultPatterns match the usual translation resource files.
var DefaultPatterns = []string{"*.json", "*.properties"}

// skipDirs are never searched for candidates.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// Prompt lists candidate files under Root and asks the user to choose one
// by number or to type a path. An empty answer cancels.
type Prompt struct {
	Root     string
	Patterns []string // base-name globs (default DefaultPatterns)
	In       io.Reader
	Out      io.Writer
}

// Pick implements Picker.
func (p Prompt) Pick(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	candidates, err := Candidates(p.Root, p.patterns())
	if err != nil {
		return "", err
	}

	fmt.Fprintln(p.Out, "Choose the translation file:")
	for i, c := range candidates {
		fmt.Fprintf(p.Out, "  %2d) %s\n", i+1, c)
	}
	fmt.Fprint(p.Out, "Number or path (empty to cancel): ")

	answer, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading choice: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrCanceled
	}

	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(candidates) {
			return "", fmt.Errorf("choice %d out of range 1-%d", n, len(candidates))
		}
		return filepath.Join(p.Root, candidates[n-1]), nil
	}

	path := answer
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Root, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("resource file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("resource file %s is a directory", path)
	}
	return path, nil
}

func (p Prompt) patterns() []string {
	if len(p.Patterns) == 0 {
		return DefaultPatterns
	}
	return p.Patterns
}

// Candidates returns files under root whose base name matches one of
// patterns, relative to root and sorted.
func Candidates(root string, patterns []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		for _, pat := range patterns {
			if ok, _ := filepath.Match(pat, d.Name()); ok {
				rel, err := filepath.Rel(root, path)
				if err != nil {
					return err
				}
				out = append(out, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}
