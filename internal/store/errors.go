package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced unit, objective, bank or
	// ledger row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyCompleted is returned when a ledger row already carries a
	// completion. Rows are completed exactly once.
	ErrAlreadyCompleted = errors.New("assignment already completed")

	// ErrBankInactive is returned when assigning a deactivated bank.
	ErrBankInactive = errors.New("bank is inactive")
)

// PersistenceError wraps a failed read or write against the database.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func notFound(what string, id int) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}
