package http

import "fmt"

// ErrorType represents the category of a transport error.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeServiceUnavailable
	ErrTypeInvalidRequest
	ErrTypeTimeout
	ErrTypeNetwork
	ErrTypeNotFound
	ErrTypeUnknown
)

// String returns a human-readable description of the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeNetwork:
		return "network error"
	case ErrTypeNotFound:
		return "not found"
	default:
		return "unknown error"
	}
}

// Error is a transport error with enough context to decide on retries
// and to log without leaking credentials.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Retryable  bool
	Provider   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Provider, e.Type.String(), e.Message, e.StatusCode)
}

// Is matches errors of the same type, for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsRetryable returns true if the error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(provider, message string) *Error {
	return &Error{
		Type:       ErrTypeAuthentication,
		Message:    message,
		StatusCode: 401,
		Retryable:  false,
		Provider:   provider,
	}
}

// NewRateLimitError creates a new rate limit error.
func NewRateLimitError(provider, message string) *Error {
	return &Error{
		Type:       ErrTypeRateLimit,
		Message:    message,
		StatusCode: 429,
		Retryable:  true,
		Provider:   provider,
	}
}

// NewServiceUnavailableError creates a new service unavailable error.
func NewServiceUnavailableError(provider, message string) *Error {
	return &Error{
		Type:       ErrTypeServiceUnavailable,
		Message:    message,
		StatusCode: 503,
		Retryable:  true,
		Provider:   provider,
	}
}

// NewInvalidRequestError creates a new invalid request error.
func NewInvalidRequestError(provider, message string) *Error {
	return &Error{
		Type:       ErrTypeInvalidRequest,
		Message:    message,
		StatusCode: 400,
		Retryable:  false,
		Provider:   provider,
	}
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(provider, message string) *Error {
	return &Error{
		Type:      ErrTypeTimeout,
		Message:   message,
		Retryable: true,
		Provider:  provider,
	}
}

// NewNetworkError creates a new network error.
func NewNetworkError(provider, message string) *Error {
	return &Error{
		Type:      ErrTypeNetwork,
		Message:   message,
		Retryable: true,
		Provider:  provider,
	}
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(provider, message string) *Error {
	return &Error{
		Type:       ErrTypeNotFound,
		Message:    message,
		StatusCode: 404,
		Retryable:  false,
		Provider:   provider,
	}
}

// FromStatus maps an HTTP response status to a typed error.
func FromStatus(provider string, status int, message string) *Error {
	switch {
	case status == 401 || status == 403:
		return NewAuthenticationError(provider, message)
	case status == 404:
		return NewNotFoundError(provider, message)
	case status == 429:
		return NewRateLimitError(provider, message)
	case status >= 500:
		err := NewServiceUnavailableError(provider, message)
		err.StatusCode = status
		return err
	case status >= 400:
		err := NewInvalidRequestError(provider, message)
		err.StatusCode = status
		return err
	default:
		return &Error{
			Type:       ErrTypeUnknown,
			Message:    message,
			StatusCode: status,
			Provider:   provider,
		}
	}
}
