package llm

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "ValidationError"
	KindConfiguration ErrorKind = "ConfigurationError"
	KindModelNotFound ErrorKind = "ModelNotFoundError"
	KindSafetyBlocked ErrorKind = "SafetyBlockedError"
	KindUpstream      ErrorKind = "UnclassifiedUpstreamError"
)

// SafetyBlockedPrefix marks refusals so clients can tell them apart from other failures.
const SafetyBlockedPrefix = "SafetyBlocked: "

// Error is the classified failure every provider returns.
type Error struct {
	Kind   ErrorKind
	Status int // upstream HTTP status, 0 when none was received
	Detail string
	Err    error
}

func NewError(kind ErrorKind, status int, detail string) *Error {
	return &Error{Kind: kind, Status: status, Detail: detail}
}

func Wrap(kind ErrorKind, status int, err error) *Error {
	return &Error{Kind: kind, Status: status, Detail: err.Error(), Err: err}
}

func SafetyBlocked(reason string) *Error {
	return &Error{Kind: KindSafetyBlocked, Status: http.StatusUnprocessableEntity, Detail: reason}
}

func (e *Error) Error() string {
	if e.Kind == KindSafetyBlocked {
		return SafetyBlockedPrefix + e.Detail
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status the endpoint should answer with.
func (e *Error) HTTPStatus() int {
	if e.Status >= 400 && e.Status < 600 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// AsError returns err as a classified *Error, treating anything unknown as upstream.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}
	return Wrap(KindUpstream, 0, err)
}

func IsKind(err error, kind ErrorKind) bool {
	var llmErr *Error
	return errors.As(err, &llmErr) && llmErr.Kind == kind
}

func IsModelNotFound(err error) bool {
	return IsKind(err, KindModelNotFound)
}
