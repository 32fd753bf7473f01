package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPartialFailure      = errors.New("partial failure")
	ErrUpstream            = errors.New("upstream failure")
)

var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrUserExists          = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrTaskNotFound        = fmt.Errorf("task %w", ErrNotFound)
	ErrTaskHasPending      = fmt.Errorf("task has pending submissions: %w", ErrConflict)
	ErrSubmissionNotFound  = fmt.Errorf("submission %w", ErrNotFound)
	ErrSubmissionFinalized = fmt.Errorf("submission is no longer pending: %w", ErrConflict)
	ErrDuplicateSubmission = fmt.Errorf("submission already exists for this task: %w", ErrConflict)
	ErrWithdrawalNotFound  = fmt.Errorf("withdrawal request %w", ErrNotFound)
)

// InvalidInput builds a validation error matching ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// PartialFailureError reports a coupled ledger write where one half was
// applied and the other was not. Nothing is rolled back.
type PartialFailureError struct {
	Operation string
	Completed string
	Failed    string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: %s applied, %s failed: %v", e.Operation, e.Completed, e.Failed, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

func (e *PartialFailureError) Is(target error) bool { return target == ErrPartialFailure }
