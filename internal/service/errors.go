package service

import "github.com/pkg/errors"

// Failure kinds. Every rejected operation carries one of these plus a
// machine-readable reason; nothing is retried, each is terminal for the
// request that triggered it.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrScopeForbidden      = errors.New("scope forbidden")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrValidation          = errors.New("validation failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrUnavailable         = errors.New("dependency unavailable")
)

// DomainError pairs a failure kind with the short reason string surfaced to
// API callers (e.g. "invalid_status", "quote_already_submitted").
type DomainError struct {
	kind   error
	reason string
}

func (e *DomainError) Error() string { return e.reason }

func (e *DomainError) Unwrap() error { return e.kind }

// Reason returns the machine-readable rejection reason.
func (e *DomainError) Reason() string { return e.reason }

func domainErr(kind error, reason string) error {
	return &DomainError{kind: kind, reason: reason}
}

func notFoundErr(reason string) error     { return domainErr(ErrNotFound, reason) }
func invalidStateErr(reason string) error { return domainErr(ErrInvalidState, reason) }
func scopeErr(reason string) error        { return domainErr(ErrScopeForbidden, reason) }
func duplicateErr(reason string) error    { return domainErr(ErrDuplicateSubmission, reason) }
func validationErr(reason string) error   { return domainErr(ErrValidation, reason) }
func forbiddenErr(reason string) error    { return domainErr(ErrForbidden, reason) }
func conflictErr(reason string) error     { return domainErr(ErrConflict, reason) }
func unavailableErr(reason string) error  { return domainErr(ErrUnavailable, reason) }
