// Package localize turns a selection into a translation reference.
//
// Localize runs the whole cycle for one selection: derive the key, load
// the resource document, merge the entry, write the document and replace
// the selection with the rendered template. Writing the document and
// replacing the selection happen in one transaction; when the replacement
// fails the document is restored to the bytes that were read.
package localize

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/lokey/config"
	"github.com/minios-linux/lokey/format"
	"github.com/minios-linux/lokey/guard"
	"github.com/minios-linux/lokey/key"
	"github.com/minios-linux/lokey/merge"
	"github.com/minios-linux/lokey/resource"
	"github.com/minios-linux/lokey/selection"
)

var (
	// ErrNothingSelected is returned for an empty selection.
	ErrNothingSelected = errors.New("nothing is selected")
	// ErrInvalidText is returned for a selection that is not valid UTF-8.
	// Documents store UTF-8 text, so such a selection could not be read
	// back unchanged.
	ErrInvalidText = errors.New("selected text is not valid UTF-8")
)

// Localizer holds the collaborators of a localization.
type Localizer struct {
	Deriver key.Deriver
	Policy  merge.Policy
	Store   resource.Store
	Hook    format.Hook
	// Template renders the replacement for a key (see config.File.Render).
	Template func(key string) string
	// Indent is the JSON indentation used when writing documents.
	Indent string
	// SortKeys writes documents with keys in sorted order.
	SortKeys bool
	// Warn receives non-fatal problems such as a failed format hook.
	Warn func(msg string)
}

// New builds a Localizer from configuration.
func New(cfg *config.File) *Localizer {
	return &Localizer{
		Deriver:  key.Deriver{FoldAccents: cfg.FoldAccents},
		Policy:   merge.Policy{MaxSuffix: cfg.MaxSuffix},
		Store:    resource.FS{},
		Hook:     format.New(cfg.FormatCommand),
		Template: cfg.Render,
		Indent:   cfg.Indent,
		SortKeys: cfg.SortKeys,
	}
}

// Result describes a completed localization.
type Result struct {
	// Text is the selected text.
	Text string
	// Derived is the key derived from Text.
	Derived string
	// Key is the key the text is stored under.
	Key string
	// Replacement is the text that replaced the selection.
	Replacement string
	// Written reports whether the document was written.
	Written bool
}

// Localize stores the selected text in the document at path and replaces
// the selection with a reference to its key.
func (l *Localizer) Localize(ctx context.Context, sel selection.Selection, path string) (Result, error) {
	text := sel.SelectedText()
	if text == "" {
		return Result{}, ErrNothingSelected
	}
	if !utf8.ValidString(text) {
		return Result{}, ErrInvalidText
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Text: text, Derived: l.Deriver.Derive(text)}
	logger := log.With().Str("resource", path).Str("key", res.Derived).Logger()
	if res.Derived == "" {
		logger.Debug().Msg("selection has no letters, using the empty key")
	}

	unlock := guard.Lock(path)
	defer unlock()

	if err := l.Store.CheckWritable(path); err != nil {
		return Result{}, err
	}
	original, err := l.Store.Read(path)
	if err != nil {
		return Result{}, err
	}
	snap := guard.Take(path, original)

	doc, err := resource.Decode(resource.CodecFor(path, l.Indent), path, original)
	if err != nil {
		return Result{}, err
	}

	merged, err := l.Policy.Merge(doc.Catalog(), res.Derived, text)
	if err != nil {
		return Result{}, err
	}
	res.Key = merged.Key
	res.Replacement = l.render(merged.Key)
	logger.Debug().Str("final_key", merged.Key).Bool("changed", merged.Changed).Msg("merged entry")

	var tx Tx
	if merged.Changed {
		c := merged.Catalog
		if l.SortKeys && doc.Ordered() {
			c = c.Sorted()
		}
		out, err := doc.Encode(c)
		if err != nil {
			return Result{}, &resource.WriteError{Path: path, Err: fmt.Errorf("encoding: %w", err)}
		}

		write := func() error {
			current, err := l.Store.Read(path)
			if err == nil {
				err = snap.Check(current)
			}
			if err != nil {
				return &resource.WriteError{Path: path, Err: err}
			}
			return l.Store.Write(path, out)
		}
		restore := func() error {
			return l.Store.Write(path, original)
		}
		if err := tx.Do(write, restore); err != nil {
			return Result{}, err
		}
		res.Written = true
	}

	if err := tx.Do(func() error { return sel.ReplaceSelection(res.Replacement) }, nil); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("restoring resource file failed")
			return Result{}, errors.Join(fmt.Errorf("replacing selection: %w", err), rbErr)
		}
		return Result{}, fmt.Errorf("replacing selection: %w", err)
	}
	tx.Commit()

	if res.Written && l.Hook != nil {
		if err := l.Hook.Format(ctx, path); err != nil {
			l.warn(fmt.Sprintf("formatting %s: %v", path, err))
		}
	}

	return res, nil
}

// Transform replaces the selection with its derived key only.
func (l *Localizer) Transform(sel selection.Selection) (string, error) {
	text := sel.SelectedText()
	if text == "" {
		return "", ErrNothingSelected
	}
	k := l.Deriver.Derive(text)
	if err := sel.ReplaceSelection(k); err != nil {
		return "", fmt.Errorf("replacing selection: %w", err)
	}
	return k, nil
}

func (l *Localizer) render(k string) string {
	if l.Template == nil {
		return config.Default().Render(k)
	}
	return l.Template(k)
}

func (l *Localizer) warn(msg string) {
	if l.Warn != nil {
		l.Warn(msg)
		return
	}
	log.Warn().Msg(msg)
}
