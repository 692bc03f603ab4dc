package curriculum

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEmptyWorkName       = errors.New("work name is empty")
	ErrWorkNotFound        = errors.New("work not found")
	ErrAlreadyLinked       = errors.New("assignment is already linked to a work")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrReconcileInProgress = errors.New("a reconciliation is already running for this scope")
)

// ScopeConfigurationError means the scope has nothing to reconcile against. It aborts the run.
type ScopeConfigurationError struct {
	ScopeID string
	Reason  string
}

func (e *ScopeConfigurationError) Error() string {
	return fmt.Sprintf("scope %q is not configured: %s", e.ScopeID, e.Reason)
}

// UnknownAreaError is reported for an assignment whose area is not active in its scope.
type UnknownAreaError struct {
	AssignmentID string
	Area         string
}

func (e *UnknownAreaError) Error() string {
	return fmt.Sprintf("assignment %s: unknown area %q", e.AssignmentID, e.Area)
}

// ExtensionWriteError is reported when creating a custom Work for an assignment failed.
type ExtensionWriteError struct {
	AssignmentID string
	Name         string
	Err          error
}

func (e *ExtensionWriteError) Error() string {
	return fmt.Sprintf("assignment %s: creating work %q: %v", e.AssignmentID, e.Name, e.Err)
}

func (e *ExtensionWriteError) Unwrap() error { return e.Err }

// LinkWriteError is reported when linking an assignment to its Work failed.
type LinkWriteError struct {
	AssignmentID string
	WorkID       string
	Err          error
}

func (e *LinkWriteError) Error() string {
	return fmt.Sprintf("assignment %s: linking work %s: %v", e.AssignmentID, e.WorkID, e.Err)
}

func (e *LinkWriteError) Unwrap() error { return e.Err }

// MergeWriteError is returned when the progress upsert still failed after all attempts.
// Links written by the run are kept; a backfill re-derives the lost progress.
type MergeWriteError struct {
	Attempts uint
	Err      error
}

func (e *MergeWriteError) Error() string {
	return fmt.Sprintf("writing progress (%d attempts): %v", e.Attempts, e.Err)
}

func (e *MergeWriteError) Unwrap() error { return e.Err }
