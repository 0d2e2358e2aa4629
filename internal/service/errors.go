package service

import (
	"errors"
	"go-blog-app/internal/data"
)

var (
	// ErrNotFound is returned when a referenced post, comment, category,
	// label, reaction or user does not exist.
	ErrNotFound = data.ErrNotFound
	// ErrUnauthorized is returned before any store access when the caller
	// lacks the session or privilege an operation requires.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput is returned for values the request handler should
	// have rejected, such as a blank label name.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConsistencyViolation signals that a write would have broken a
	// counter invariant. It indicates a defect and is never retried.
	ErrConsistencyViolation = errors.New("consistency violation")
	// ErrStoreConflict is returned when an atomic unit still conflicts
	// after the configured number of attempts.
	ErrStoreConflict = errors.New("store conflict")
	// ErrAlreadyReacted is returned when a user repeats a like or dislike
	// without undoing it first.
	ErrAlreadyReacted = errors.New("already reacted")
	// ErrUsernameTaken is returned by Register for an existing username.
	ErrUsernameTaken = errors.New("username already taken")
)
