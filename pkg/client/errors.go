package client

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed request.
type ErrorKind string

const (
	// KindRequestFailed covers connect, timeout, TLS/DNS and body read failures.
	KindRequestFailed ErrorKind = "request_failed"

	// KindDeserializeFailed means the body did not match the expected JSON
	// shape, either the success type or the error envelope.
	KindDeserializeFailed ErrorKind = "deserialize_failed"

	// KindServerError means Canvas answered with status >= 400 and a
	// well-formed error envelope.
	KindServerError ErrorKind = "server_error"
)

// Sentinels matched by AppError.Is according to its Kind.
var (
	ErrRequestFailed     = errors.New("canvas request failed")
	ErrDeserializeFailed = errors.New("canvas response did not decode")
	ErrServerError       = errors.New("canvas server error")
)

// APIError is a single entry of a Canvas error payload.
type APIError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

// APIErrorEnvelope is the body Canvas returns alongside a failing status.
// The errors field is required; an empty list is accepted.
type APIErrorEnvelope struct {
	Errors        []APIError `json:"errors" validate:"required"`
	ErrorReportID uint64     `json:"error_report_id"`
}

func (e *APIErrorEnvelope) String() string {
	if e == nil {
		return "<no error body>"
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, apiErr := range e.Errors {
		if apiErr.ErrorCode != "" {
			msgs = append(msgs, fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.ErrorCode))
		} else {
			msgs = append(msgs, apiErr.Message)
		}
	}
	s := strings.Join(msgs, "; ")
	if e.ErrorReportID != 0 {
		s = fmt.Sprintf("%s [report %d]", s, e.ErrorReportID)
	}
	return s
}

// AppError is the single error type returned by the request pipeline.
type AppError struct {
	Kind     ErrorKind
	Method   string
	URL      string
	Status   int
	Envelope *APIErrorEnvelope
	Err      error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	switch e.Kind {
	case KindServerError:
		return fmt.Sprintf("canvas %s %s: status %d: %s", e.Method, e.URL, e.Status, e.Envelope)
	case KindDeserializeFailed:
		return fmt.Sprintf("canvas %s %s: decode status %d body: %v", e.Method, e.URL, e.Status, e.Err)
	default:
		return fmt.Sprintf("canvas %s %s: %v", e.Method, e.URL, e.Err)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return e.Kind == KindRequestFailed
	case ErrDeserializeFailed:
		return e.Kind == KindDeserializeFailed
	case ErrServerError:
		return e.Kind == KindServerError
	default:
		return false
	}
}

// AsServerError returns the envelope carried by a KindServerError anywhere
// in err's chain.
func AsServerError(err error) (*APIErrorEnvelope, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind == KindServerError {
		return appErr.Envelope, true
	}
	return nil, false
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
