package models

import (
	"errors"
	"net/http"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindConflict
	KindMethodNotAllowed
	KindConfiguration
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// IntakeError is what intake handlers turn into a JSON error body.
// Message is safe to show to the caller; Err is only logged.
type IntakeError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *IntakeError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *IntakeError) Unwrap() error { return e.Err }

func (e *IntakeError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func ValidationError(msg string) *IntakeError {
	return &IntakeError{Kind: KindValidation, Message: msg}
}

func MethodNotAllowedError() *IntakeError {
	return &IntakeError{Kind: KindMethodNotAllowed, Message: "Method not allowed"}
}

func ConflictError(msg string, err error) *IntakeError {
	return &IntakeError{Kind: KindConflict, Message: msg, Err: err}
}

func ConfigurationError(msg string, err error) *IntakeError {
	return &IntakeError{Kind: KindConfiguration, Message: msg, Err: err}
}

func UnknownError(msg string, err error) *IntakeError {
	return &IntakeError{Kind: KindUnknown, Message: msg, Err: err}
}

// AsIntakeError returns err as an *IntakeError, wrapping anything else as unknown
// with fallback as the caller-visible message.
func AsIntakeError(err error, fallback string) *IntakeError {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie
	}
	return UnknownError(fallback, err)
}
