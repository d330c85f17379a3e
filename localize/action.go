package localize

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/lokey/guard"
	"github.com/minios-linux/lokey/i18n"
	"github.com/minios-linux/lokey/merge"
	"github.com/minios-linux/lokey/notify"
	"github.com/minios-linux/lokey/picker"
	"github.com/minios-linux/lokey/resource"
	"github.com/minios-linux/lokey/selection"
	"github.com/minios-linux/lokey/session"
)

// Action is the user-facing localize command: it finds the target
// document, runs the Localizer and reports the outcome. Errors end at the
// notification sink.
type Action struct {
	Localizer *Localizer
	// Session caches the chosen document. Without one, Picker is asked
	// every time.
	Session *session.Session
	Picker  picker.Picker
	Notify  notify.Sink
}

// Run localizes sel. It reports whether the selection was replaced.
func (a *Action) Run(ctx context.Context, sel selection.Selection) (Result, bool) {
	if sel.SelectedText() == "" {
		a.Notify.Error(Message(ErrNothingSelected))
		return Result{}, false
	}

	path, err := a.target(ctx)
	if errors.Is(err, picker.ErrCanceled) {
		log.Debug().Msg("no resource file chosen")
		return Result{}, false
	}
	if err != nil {
		a.Notify.Error(Message(err))
		return Result{}, false
	}

	l := *a.Localizer
	if l.Warn == nil {
		l.Warn = a.Notify.Warn
	}

	res, err := l.Localize(ctx, sel, path)
	if err != nil {
		log.Debug().Err(err).Str("resource", path).Msg("localize failed")
		a.Notify.Error(Message(err))
		return Result{}, false
	}

	if res.Written {
		a.Notify.Info(i18n.Tf("Added %s to %s.", res.Key, path))
	} else {
		a.Notify.Info(i18n.Tf("Reused existing key %s.", res.Key))
	}
	return res, true
}

func (a *Action) target(ctx context.Context) (string, error) {
	if a.Session != nil {
		return a.Session.Resolve(ctx, a.Picker)
	}
	return a.Picker.Pick(ctx)
}

// Message returns the localized user message for err.
func Message(err error) string {
	var (
		readOnly *resource.ReadOnlyError
		readErr  *resource.ReadError
		parseErr *resource.ParseError
		conflict *merge.ConflictError
		writeErr *resource.WriteError
	)

	switch {
	case errors.Is(err, ErrNothingSelected):
		return i18n.T("Nothing is selected.")
	case errors.Is(err, ErrInvalidText):
		return i18n.T("The selected text is not valid UTF-8.")
	case errors.As(err, &readOnly):
		return i18n.Tf("%s is read only.", readOnly.Path)
	case errors.As(err, &readErr):
		return i18n.Tf("Could not read %s: %v", readErr.Path, readErr.Err)
	case errors.As(err, &parseErr):
		return i18n.Tf("%s is not a valid translation file: %v", parseErr.Path, parseErr.Err)
	case errors.As(err, &conflict):
		return i18n.Nf("Translation key conflict: %s holds a different text and %s is taken.",
			"Translation key conflict: %s holds a different text and %s are taken.",
			len(conflict.Tried), conflict.Key, strings.Join(conflict.Tried, ", "))
	case errors.Is(err, guard.ErrStale) && errors.As(err, &writeErr):
		return i18n.Tf("%s was changed by someone else; nothing was written.", writeErr.Path)
	case errors.As(err, &writeErr):
		return i18n.Tf("Could not write %s: %v", writeErr.Path, writeErr.Err)
	default:
		return err.Error()
	}
}
