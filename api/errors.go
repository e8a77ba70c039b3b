// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-ua.

package api

import (
	"errors"
	"fmt"
)

// Local, synchronous errors. They are returned directly to the caller and
// never delivered through a request callback.
var (
	ErrTransportClosed      = errors.New("transport is closed")
	ErrTransportUnavailable = errors.New("transport unavailable")
	ErrUnknownRequestID     = errors.New("unknown request id")
	ErrDuplicateRequestID   = errors.New("duplicate request id")
	ErrClientShutDown       = errors.New("client shut down")
	ErrConnectionFailed     = errors.New("connection failed")
	ErrIterateReentered     = errors.New("run iterate already in progress")
	ErrInvalidArgument      = errors.New("invalid argument")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeTransport
	ErrCodeUnknownRequest
	ErrCodeDuplicateRequest
	ErrCodeShutDown
	ErrCodeConnectionFailed
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap creates a structured error around cause.
func Wrap(code ErrorCode, cause error, message string) *Error {
	e := NewError(code, message)
	e.cause = cause
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the ErrorCode carried by err, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrTransportUnavailable), errors.Is(err, ErrTransportClosed):
		return ErrCodeTransport
	case errors.Is(err, ErrUnknownRequestID):
		return ErrCodeUnknownRequest
	case errors.Is(err, ErrDuplicateRequestID):
		return ErrCodeDuplicateRequest
	case errors.Is(err, ErrClientShutDown):
		return ErrCodeShutDown
	case errors.Is(err, ErrConnectionFailed):
		return ErrCodeConnectionFailed
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	}
	return ErrCodeInternal
}
