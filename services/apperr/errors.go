// Package apperr defines the error kinds shared by the account services.
//
// Every error returned by the core carries exactly one Kind so boundary code can
// choose a response without inspecting messages. Sentinels are compared by kind:
//
//	errors.Is(err, apperr.New(apperr.NotFound, ""))
//
// matches any NotFound error regardless of message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	Validation         Kind = "VALIDATION_ERROR"
	DuplicateKey       Kind = "DUPLICATE_KEY"
	Conflict           Kind = "CONFLICT"
	NotFound           Kind = "NOT_FOUND"
	InvalidCredentials Kind = "INVALID_CREDENTIALS"
	NotVerified        Kind = "NOT_VERIFIED"
	InvalidCode        Kind = "INVALID_CODE"
	CodeExpired        Kind = "CODE_EXPIRED"
	AlreadyVerified    Kind = "ALREADY_VERIFIED"
	InvalidSignature   Kind = "INVALID_SIGNATURE"
	Expired            Kind = "EXPIRED"
	Mismatch           Kind = "MISMATCH"
	Internal           Kind = "INTERNAL_ERROR"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. An empty target
// message matches any message of that kind; otherwise the messages must agree.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internalf wraps an unexpected failure. Business errors already carrying a
// kind pass through unchanged.
func Internalf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: Internal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost *Error in the chain, or Internal for
// errors that carry none.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status the HTTP layer answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Validation, InvalidCode, CodeExpired, Mismatch:
		return http.StatusBadRequest
	case DuplicateKey, Conflict, AlreadyVerified:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case InvalidCredentials, InvalidSignature, Expired:
		return http.StatusUnauthorized
	case NotVerified:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show callers; internal causes are hidden.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		return "internal server error"
	}
	return e.Message
}
