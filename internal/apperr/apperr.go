// Package apperr defines the error taxonomy shared by resolvers, the download
// session and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadInput
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindMisconfigured
	KindUpstream
	KindResolutionFailed
	KindPipelineIO
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindBadInput:         "bad_input",
	KindUnauthorized:     "unauthorized",
	KindForbidden:        "forbidden",
	KindNotFound:         "not_found",
	KindMisconfigured:    "server_misconfigured",
	KindUpstream:         "upstream_unavailable",
	KindResolutionFailed: "resolution_failed",
	KindPipelineIO:       "pipeline_io",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return kindNames[KindUnknown]
}

// Status maps a Kind to the HTTP status code returned to clients.
func (k Kind) Status() int {
	switch k {
	case KindBadInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Reason refines KindUpstream failures reported by external tools.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonBotCheck      Reason = "bot_check"
	ReasonUnavailable   Reason = "unavailable"
	ReasonRegionBlocked Reason = "region_blocked"
	ReasonAgeRestricted Reason = "age_restricted"
	ReasonTakedown      Reason = "takedown"
	ReasonLiveStream    Reason = "live_stream"
	ReasonUnknown       Reason = "unknown"
)

// Error is a classified error. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns a classified error wrapping err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// BadInput is shorthand for New(KindBadInput, message).
func BadInput(message string) *Error {
	return New(KindBadInput, message)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ReasonOf returns the Reason of the first *Error in err's chain.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonNone
}

// Message returns a client-facing message for err. Unclassified errors fall
// back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
