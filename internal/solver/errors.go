package solver

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure.
type Kind int

const (
	KindDisabled Kind = iota + 1
	KindCircuitOpen
	KindUnavailable
	KindUnreachable
	KindMalformed
	KindCompute
)

func (k Kind) String() string {
	switch k {
	case KindDisabled:
		return "external_disabled"
	case KindCircuitOpen:
		return "circuit_open"
	case KindUnavailable:
		return "external_unavailable"
	case KindUnreachable:
		return "external_unreachable"
	case KindMalformed:
		return "invalid_response"
	case KindCompute:
		return "compute_failed"
	default:
		return "unknown"
	}
}

// Retryable reports whether a remote attempt failing with this kind may be
// attempted again within the same retry loop.
func (k Kind) Retryable() bool {
	switch k {
	case KindUnavailable, KindUnreachable, KindMalformed:
		return true
	default:
		return false
	}
}

// Remote reports whether the kind originates from the remote backend and can
// therefore be recovered by falling back to the local engine.
func (k Kind) Remote() bool {
	return k != KindCompute && k != 0
}

// Sentinels for errors.Is comparisons against a kind.
var (
	ErrDisabled    = &Error{Kind: KindDisabled}
	ErrCircuitOpen = &Error{Kind: KindCircuitOpen}
	ErrUnavailable = &Error{Kind: KindUnavailable}
	ErrUnreachable = &Error{Kind: KindUnreachable}
	ErrMalformed   = &Error{Kind: KindMalformed}
	ErrCompute     = &Error{Kind: KindCompute}
)

// Error is returned by every backend. Fingerprint identifies the request
// without leaking it; StatusCode is set for HTTP-classified remote failures.
type Error struct {
	Kind        Kind
	Fingerprint string
	StatusCode  int
	Err         error
}

// NewError builds an Error for the request, joining any number of causes.
func NewError(kind Kind, req Request, causes ...error) *Error {
	return &Error{
		Kind:        kind,
		Fingerprint: Fingerprint(req),
		Err:         errors.Join(causes...),
	}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the kind from err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
