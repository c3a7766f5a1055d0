package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// ParseError is returned when a third-party payload does not have the expected structure.
type ParseError struct {
	Source string
	Msg    string
	Err    error
}

func NewParseError(source, msg string, err error) error {
	return &ParseError{Source: source, Msg: msg, Err: err}
}

func (err *ParseError) Error() string {
	s := fmt.Sprintf("parsing %s: %s", err.Source, err.Msg)
	if err.Err != nil {
		s += ": " + err.Err.Error()
	}
	return s
}

func (err *ParseError) Unwrap() error { return err.Err }

// UpstreamError is returned when a third-party API fails or answers with a non-success status.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func NewUpstreamError(service string, statusCode int, body string, err error) error {
	return &UpstreamError{Service: service, StatusCode: statusCode, Body: body, Err: err}
}

func (err *UpstreamError) Error() string {
	switch {
	case err.Err != nil:
		return fmt.Sprintf("%s: %v", err.Service, err.Err)
	case err.StatusCode != 0:
		return fmt.Sprintf("%s: unexpected status %d", err.Service, err.StatusCode)
	default:
		return err.Service + ": request failed"
	}
}

func (err *UpstreamError) Unwrap() error { return err.Err }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
