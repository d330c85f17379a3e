package localize

import (
	"errors"
	"fmt"
)

// Tx groups the edits of one operation. Every applied step may register an
// undo; Rollback runs them in reverse order. A committed Tx cannot be
// rolled back.
type Tx struct {
	undo []func() error
	done bool
}

// Do applies a step and, on success, registers its undo (which may be nil).
func (tx *Tx) Do(apply func() error, undo func() error) error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	if err := apply(); err != nil {
		return err
	}
	if undo != nil {
		tx.undo = append(tx.undo, undo)
	}
	return nil
}

// Commit finishes the transaction, keeping every applied step.
func (tx *Tx) Commit() {
	tx.done = true
	tx.undo = nil
}

// Rollback undoes the applied steps, newest first. Undo failures are
// joined into the returned error.
func (tx *Tx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true

	var errs []error
	for i := len(tx.undo) - 1; i >= 0; i-- {
		if err := tx.undo[i](); err != nil {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
	}
	tx.undo = nil
	return errors.Join(errs...)
}
