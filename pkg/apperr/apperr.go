// Package apperr defines the error kinds services return and the HTTP status
// each kind maps to.
//
//	if user == nil {
//	    return apperr.NotFound("User not found")
//	}
//	return apperr.Wrap(apperr.KindStorage, "could not save plant", err)
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuth
	KindExpired
	KindStorage
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindExpired:
		return "expired"
	case KindStorage:
		return "storage"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for k.
// Bad credentials answer 402, which existing clients already rely on.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusPaymentRequired
	case KindExpired:
		return http.StatusGone
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrAuth        = &Error{Kind: KindAuth}
	ErrExpired     = &Error{Kind: KindExpired}
	ErrStorage     = &Error{Kind: KindStorage}
	ErrRateLimited = &Error{Kind: KindRateLimited}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }

// ValidationFields carries per-field messages from pkg/validate.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func Conflict(message string) *Error { return New(KindConflict, message) }
func NotFound(message string) *Error { return New(KindNotFound, message) }
func Auth(message string) *Error     { return New(KindAuth, message) }
func Expired(message string) *Error  { return New(KindExpired, message) }

func Storage(message string, err error) *Error { return Wrap(KindStorage, message, err) }

// Internal wraps a failure of a collaborator (mail relay, object store)
// that is not the caller's fault.
func Internal(message string, err error) *Error { return Wrap(KindInternal, message, err) }

func RateLimited(message string) *Error { return New(KindRateLimited, message) }

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status code for err.
func StatusOf(err error) int { return KindOf(err).Status() }
