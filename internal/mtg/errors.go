package mtg

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode marks a provider response whose body does not match the expected shape.
	ErrDecode = errors.New("malformed provider response")
	// ErrUnknownProvider marks a source configured with a provider that is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
)

// StatusError is returned when a provider answers with a non-success status.
type StatusError struct {
	Provider   ProviderKind
	Operation  string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed with status code %s", e.Provider, e.Operation, status)
}

// DecodeError wraps a body that could not be decoded.
type DecodeError struct {
	Provider  ProviderKind
	Operation string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Provider, e.Operation, ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// SourceError attributes a failure to the configured source that produced it.
type SourceError struct {
	Provider ProviderKind
	Owner    string
	RemoteID string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source %q of %s: %v", e.Provider, e.RemoteID, e.Owner, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Classify buckets an error for logs and pass history.
func Classify(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrUnknownProvider):
		return "config"
	default:
		return "transport"
	}
}
