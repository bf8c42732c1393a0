package entity

import (
	"errors"
	"fmt"
)

var (
	ErrElementNotFound      = errors.New("element not found")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrFrameNotFound        = errors.New("frame not found")
	ErrInterventionNotFound = errors.New("intervention not found")
	ErrNoActiveIntervention = errors.New("no active intervention")
	ErrInvalidOperation     = errors.New("invalid operation")
	ErrUpstreamFailure      = errors.New("browser engine failure")
	ErrInvalidArguments     = errors.New("invalid arguments")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrElementNotFound, "ElementNotFound"},
	{ErrIndexOutOfRange, "IndexOutOfRange"},
	{ErrFrameNotFound, "FrameNotFound"},
	{ErrInterventionNotFound, "InterventionNotFound"},
	{ErrNoActiveIntervention, "NoActiveIntervention"},
	{ErrInvalidOperation, "InvalidOperation"},
	{ErrInvalidArguments, "InvalidArguments"},
	{ErrUpstreamFailure, "UpstreamFailure"},
}

// ErrorKind maps err onto the failure taxonomy. Unclassified errors are
// reported as upstream failures since they come from the browser engine.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "UpstreamFailure"
}

type upstreamError struct {
	op    string
	cause error
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.cause)
}

func (e *upstreamError) Unwrap() []error {
	return []error{ErrUpstreamFailure, e.cause}
}

// Upstream wraps a raw browser engine failure. The result matches both
// ErrUpstreamFailure and the original cause with errors.Is.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &upstreamError{op: op, cause: err}
}
