package service

import (
	"errors"

	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

// Error kinds. Every error a service returns on purpose wraps exactly one of
// these so the transport layer can map it with errors.Is.
var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrDeliveryFailed         = errors.New("delivery failed")
	ErrAuthenticationRequired = policy.ErrAuthenticationRequired
	ErrAuthorizationDenied    = policy.ErrAuthorizationDenied
)

var (
	ErrReservedUsername    = newError(ErrValidation, `username "me" is reserved`)
	ErrUsernameTaken       = newError(ErrValidation, "a user with that username already exists")
	ErrEmailTaken          = newError(ErrValidation, "a user with that email already exists")
	ErrInvalidCode         = newError(ErrValidation, "invalid confirmation code")
	ErrInvalidRole         = newError(ErrValidation, "unknown role")
	ErrSlugTaken           = newError(ErrValidation, "an object with this slug already exists")
	ErrUnknownCategory     = newError(ErrValidation, "category with this slug does not exist")
	ErrUnknownGenre        = newError(ErrValidation, "genre with this slug does not exist")
	ErrFutureYear          = newError(ErrValidation, "year cannot be in the future")
	ErrDuplicateReview     = newError(ErrValidation, "you have already reviewed this title")
	ErrUserNotFound        = newError(ErrNotFound, "user not found")
	ErrCategoryNotFound    = newError(ErrNotFound, "category not found")
	ErrGenreNotFound       = newError(ErrNotFound, "genre not found")
	ErrTitleNotFound       = newError(ErrNotFound, "title not found")
	ErrReviewNotFound      = newError(ErrNotFound, "review not found")
	ErrCommentNotFound     = newError(ErrNotFound, "comment not found")
	ErrRoleChangeForbidden = newError(ErrAuthorizationDenied, "you cannot change your own role")
	ErrCodeNotDelivered    = newError(ErrDeliveryFailed, "confirmation code could not be delivered, retry signup")
)

// kindError is a user-facing message tied to a kind and, optionally, the
// underlying cause.
type kindError struct {
	kind  error
	msg   string
	cause error
}

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// withCause keeps target's message and kinds and chains cause behind them.
func withCause(target, cause error) error {
	var ke *kindError
	if errors.As(target, &ke) {
		return &kindError{kind: target, msg: ke.msg, cause: cause}
	}
	return target
}

// storageError maps repository sentinels to service errors. notFound is
// returned for a missing row; a unique violation that beat the pre-checks
// becomes a Conflict.
func storageError(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound) && notFound != nil:
		return withCause(notFound, err)
	case errors.Is(err, repository.ErrDuplicate):
		return &kindError{kind: ErrConflict, msg: "the record was changed concurrently, retry the request", cause: err}
	case errors.Is(err, repository.ErrForeignKey):
		return &kindError{kind: ErrConflict, msg: "a referenced record no longer exists", cause: err}
	}
	return err
}
