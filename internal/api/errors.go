package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed gateway call
type Kind int

const (
	// KindServer is any non-2xx status other than 404 and 422
	KindServer Kind = iota
	// KindValidation is a 422 response
	KindValidation
	// KindNotFound is a 404 response
	KindNotFound
	// KindTransport means no HTTP status was received
	KindTransport
	// KindDecode means a 2xx response carried a body that is not JSON
	KindDecode
)

// Messages are pre-composed for direct display
const (
	MessageValidation = "input is invalid"
	MessageNotFound   = "resource not found"
	MessageTransport  = "network error"
	MessageDecode     = "invalid response body"
)

// Sentinels for errors.Is
var (
	ErrServer     = &Error{Kind: KindServer}
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrTransport  = &Error{Kind: KindTransport}
	ErrDecode     = &Error{Kind: KindDecode}
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return "server"
	}
}

// Error is the normalized failure of a gateway call.
// Status is 0 for transport failures.
type Error struct {
	Status  int
	Message string
	Detail  any
	Kind    Kind

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return e.Kind == t.Kind
}

// statusError builds the error for a non-2xx response.
// detail is the best-effort decoded body; it is only consulted for 422.
func statusError(status int, body any) *Error {
	switch status {
	case 422:
		e := &Error{Status: status, Message: MessageValidation, Kind: KindValidation}
		if obj, ok := body.(map[string]any); ok {
			e.Detail = obj["detail"]
		}
		return e
	case 404:
		return &Error{Status: status, Message: MessageNotFound, Kind: KindNotFound}
	default:
		return &Error{Status: status, Message: fmt.Sprintf("server error (%d)", status), Kind: KindServer}
	}
}

func transportError(cause error) *Error {
	return &Error{Message: MessageTransport, Kind: KindTransport, cause: cause}
}

func decodeError(status int, cause error) *Error {
	return &Error{Status: status, Message: MessageDecode, Kind: KindDecode, cause: cause}
}

// IsValidation reports whether err is a 422 gateway error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a 404 gateway error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransport reports whether err happened before any HTTP status was received
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ValidationIssue is one entry of a FastAPI-style validation detail list
type ValidationIssue struct {
	Loc  []string
	Msg  string
	Type string
}

// Issues extracts validation entries from a 422 detail payload.
// Entries that are not shaped like {"loc": [...], "msg": "..."} are skipped.
func (e *Error) Issues() []ValidationIssue {
	if e == nil {
		return nil
	}
	list, ok := e.Detail.([]any)
	if !ok {
		return nil
	}

	var issues []ValidationIssue
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		msg, _ := obj["msg"].(string)
		typ, _ := obj["type"].(string)
		var loc []string
		if parts, ok := obj["loc"].([]any); ok {
			for _, p := range parts {
				loc = append(loc, fmt.Sprint(p))
			}
		}
		issues = append(issues, ValidationIssue{Loc: loc, Msg: msg, Type: typ})
	}
	return issues
}
