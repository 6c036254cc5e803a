package openai

import (
	"errors"
	"fmt"
)

// Kind classifies provider failures so callers can branch without
// string-matching error text.
type Kind int

const (
	// KindTransport is a network-level failure: the request never produced
	// a usable HTTP response.
	KindTransport Kind = iota + 1
	// KindApplication is a well-formed error payload returned by the provider.
	KindApplication
	// KindMalformed is a response that parsed but lacks an expected field.
	KindMalformed
	// KindInvalidInput is a request the client refused to send.
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindMalformed:
		return "malformed_response"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is a classified provider failure. Op names the operation that failed
// ("embeddings", "create file", ...).
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err if it is (or wraps) an *Error, zero otherwise.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
