package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrHasChildren      = errors.New("cannot delete place with child places")
	ErrUpdateNotPending = errors.New("place update is not pending")
)
