package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures.
type ErrorKind int

const (
	// KindUnknown covers errors outside the taxonomy, such as transport failures.
	KindUnknown ErrorKind = iota
	// KindInvalidCredentials means a required key is absent or was rejected.
	KindInvalidCredentials
	// KindUnsupportedOperation means the query shape or direction does not fit the backend.
	KindUnsupportedOperation
	// KindNoResult means the backend answered without usable data.
	KindNoResult
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrNoResult             = errors.New("no result")
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnsupportedOperation:
		return "unsupported_operation"
	case KindNoResult:
		return "no_result"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindUnsupportedOperation:
		return ErrUnsupportedOperation
	case KindNoResult:
		return ErrNoResult
	default:
		return nil
	}
}

// Error is a classified provider failure.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error // optional cause
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.sentinel().Error()
	}
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// InvalidCredentials builds a KindInvalidCredentials error.
func InvalidCredentials(provider, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidCredentials, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedOperation builds a KindUnsupportedOperation error.
func UnsupportedOperation(provider, format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedOperation, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// NoResult builds a KindNoResult error.
func NoResult(provider, format string, args ...any) *Error {
	return &Error{Kind: KindNoResult, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
