package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can pick the right recovery action.
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindValidation       Kind = "validation"
	KindQuotaExceeded    Kind = "quota_exceeded"
	KindStateConflict    Kind = "state_conflict"
	KindNotFound         Kind = "not_found"
	KindAuthExpired      Kind = "auth_expired"
	KindTransientNetwork Kind = "transient_network"
)

// Error carries a kind alongside a human-readable message. StateConflict
// and AuthExpired must reach the caller verbatim, so handlers never
// collapse these into a generic failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool    { return KindOf(err) == KindValidation }
func IsQuotaExceeded(err error) bool { return KindOf(err) == KindQuotaExceeded }
func IsStateConflict(err error) bool { return KindOf(err) == KindStateConflict }
func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsAuthExpired(err error) bool   { return KindOf(err) == KindAuthExpired }
func IsTransient(err error) bool     { return KindOf(err) == KindTransientNetwork }

// HTTPStatus maps a kind to the HTTP status the API uses for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return 422
	case KindQuotaExceeded:
		return 429
	case KindStateConflict:
		return 409
	case KindNotFound:
		return 404
	case KindAuthExpired:
		return 401
	case KindTransientNetwork:
		return 503
	default:
		return 500
	}
}

// FromHTTPStatus maps an HTTP status back to a kind. The API client uses
// this so StateConflict and AuthExpired survive the wire unchanged.
func FromHTTPStatus(status int) Kind {
	switch status {
	case 422, 400:
		return KindValidation
	case 429:
		return KindQuotaExceeded
	case 409:
		return KindStateConflict
	case 404:
		return KindNotFound
	case 401:
		return KindAuthExpired
	case 502, 503, 504:
		return KindTransientNetwork
	default:
		return KindUnknown
	}
}
