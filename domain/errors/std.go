package errors

import "fmt"

// The standard error vocabulary shared with contracts. These carry more
// shape than GenericError so embedders can branch on the failure class
// without string matching.

// NotFoundError reports a missing entity, named by kind.
type NotFoundError struct {
	Kind      string
	Backtrace *Backtrace
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

// NotFound creates a NotFoundError, capturing a backtrace when enabled.
func NotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Kind: fmt.Sprintf(format, args...), Backtrace: Capture(1)}
}

// ParseError reports data that could not be decoded into the target type.
type ParseError struct {
	Target    string
	Err       error
	Backtrace *Backtrace
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Target, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse wraps a decoding failure for the named target.
func Parse(target string, err error) *ParseError {
	return &ParseError{Target: target, Err: err, Backtrace: Capture(1)}
}

// SerializeError reports a value that could not be encoded for the guest.
type SerializeError struct {
	Source    string
	Err       error
	Backtrace *Backtrace
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("serialize %s: %v", e.Source, e.Err)
}

func (e *SerializeError) Unwrap() error {
	return e.Err
}

// Serialize wraps an encoding failure for the named source value.
func Serialize(source string, err error) *SerializeError {
	return &SerializeError{Source: source, Err: err, Backtrace: Capture(1)}
}

// OverflowError reports integer arithmetic that left the representable
// range.
type OverflowError struct {
	Operation string
	Backtrace *Backtrace
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("overflow in %s", e.Operation)
}

// Overflow creates an OverflowError for the named operation.
func Overflow(format string, args ...any) *OverflowError {
	return &OverflowError{Operation: fmt.Sprintf(format, args...), Backtrace: Capture(1)}
}

// UnauthorizedError rejects an operation the caller may not perform.
type UnauthorizedError struct {
	Msg       string
	Backtrace *Backtrace
}

func (e *UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Msg
}

// Unauthorized creates an UnauthorizedError with an optional reason.
func Unauthorized(format string, args ...any) *UnauthorizedError {
	return &UnauthorizedError{Msg: fmt.Sprintf(format, args...), Backtrace: Capture(1)}
}

// InvalidBase64Error reports a malformed base64 payload.
type InvalidBase64Error struct {
	Msg       string
	Backtrace *Backtrace
}

func (e *InvalidBase64Error) Error() string {
	return "invalid base64: " + e.Msg
}

// InvalidBase64 creates an InvalidBase64Error.
func InvalidBase64(msg string) *InvalidBase64Error {
	return &InvalidBase64Error{Msg: msg, Backtrace: Capture(1)}
}

// InvalidUtf8Error reports bytes that are not valid UTF-8 where text is
// required.
type InvalidUtf8Error struct {
	Subject   string
	Backtrace *Backtrace
}

func (e *InvalidUtf8Error) Error() string {
	return fmt.Sprintf("%s is not valid utf-8", e.Subject)
}

// InvalidUtf8 creates an InvalidUtf8Error for the named subject.
func InvalidUtf8(subject string) *InvalidUtf8Error {
	return &InvalidUtf8Error{Subject: subject, Backtrace: Capture(1)}
}
