package domain

import "errors"

// Error kinds. Every domain error matches exactly one or more of these with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrStore        = errors.New("store error")
)

// Error is a domain error tagged with one or more kinds.
type Error struct {
	msg   string
	kinds []error
}

func newError(msg string, kinds ...error) *Error {
	return &Error{msg: msg, kinds: kinds}
}

// Error returns the message.
func (e *Error) Error() string {
	return e.msg
}

// Is reports whether target is one of the error's kinds.
func (e *Error) Is(target error) bool {
	for _, k := range e.kinds {
		if k == target {
			return true
		}
	}
	return false
}

// Domain errors.
var (
	ErrMissingID         = newError("id must be present", ErrValidation)
	ErrEmptyTitle        = newError("title cannot be empty", ErrValidation)
	ErrEmptyName         = newError("name cannot be empty", ErrValidation)
	ErrNoFieldsToUpdate  = newError("no fields to update", ErrValidation)
	ErrInvalidTaskType   = newError("invalid task type", ErrValidation)
	ErrInvalidPriority   = newError("invalid priority", ErrValidation)
	ErrInvalidView       = newError("invalid view", ErrValidation)
	ErrInvalidSort       = newError("invalid sort key", ErrValidation)
	ErrInvalidDate       = newError("invalid date (want YYYY-MM-DD)", ErrValidation)
	ErrInvalidDuration   = newError("duration cannot be negative", ErrValidation)
	ErrReorderMismatch   = newError("reorder ids must match the partition exactly", ErrValidation)
	ErrTimerFieldsLocked = newError("timer state can only change through start and stop", ErrValidation)
	ErrEmptyFile         = newError("file is empty", ErrValidation)
	ErrNoTasksInFile     = newError("no tasks found in file", ErrValidation)
	ErrAmbiguousID       = newError("id prefix matches more than one entity", ErrValidation)
	ErrInvalidColor      = newError("invalid color (want #RRGGBB)", ErrValidation)
	ErrNothingToExport   = newError("no tasks to export", ErrValidation)
	ErrConfigExists      = newError("config file already exists", ErrValidation)
	ErrInvalidConfig     = newError("invalid configuration", ErrValidation)

	ErrTaskNotFound     = newError("task not found", ErrNotFound)
	ErrSubtaskNotFound  = newError("subtask not found", ErrNotFound)
	ErrCategoryNotFound = newError("category not found", ErrNotFound)

	// ErrTimerTaskNotFound is returned by start and stop; it is both a
	// missing-task and a state-machine failure.
	ErrTimerTaskNotFound = newError("task not found", ErrInvalidState, ErrNotFound)
	ErrNotContinuous     = newError("task is not a continuous task", ErrInvalidState)
	ErrAlreadyActive     = newError("task is already active", ErrInvalidState)
	ErrSessionOpen       = newError("task already has an open session", ErrInvalidState)
	ErrNotActive         = newError("task is not active", ErrInvalidState)
	ErrNoOpenSession     = newError("task has no open session", ErrInvalidState)
	ErrOperationInFlight = newError("another start/stop for this task is in flight", ErrInvalidState)
	ErrNotAuthenticated  = newError("no authenticated user", ErrInvalidState)
	ErrMigrationConflict = newError("destination already holds a different version", ErrInvalidState)
	ErrNotInitialized    = newError("store not initialized (run 'tempo init' first)", ErrInvalidState)
)

// StoreError wraps a failure reported by the persistent store.
type StoreError struct {
	Err error  // Underlying cause, passed through opaquely
	Op  string // Store operation that failed
}

// NewStoreError wraps err as a store failure of op. A nil err stays nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// Error returns the message.
func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches the ErrStore kind.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}
