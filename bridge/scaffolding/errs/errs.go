// Package errs provides the error type returned through the web layer.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrCode represents an error code in the system.
type ErrCode struct {
	value int
}

// Value returns the integer value of the error code.
func (ec ErrCode) Value() int {
	return ec.value
}

// String returns the string representation of the error code.
func (ec ErrCode) String() string {
	return codeNames[ec]
}

// MarshalText implements the encoding.TextMarshaler interface.
func (ec ErrCode) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}

var (
	OK               = ErrCode{value: 0}
	InvalidArgument  = ErrCode{value: 1}
	NotFound         = ErrCode{value: 2}
	AlreadyExists    = ErrCode{value: 3}
	Conflict         = ErrCode{value: 4}
	Unavailable      = ErrCode{value: 5}
	Internal         = ErrCode{value: 6}
	InternalOnlyLog  = ErrCode{value: 7}
	Unimplemented    = ErrCode{value: 8}
	DeadlineExceeded = ErrCode{value: 9}
)

var codeNames = map[ErrCode]string{
	OK:               "ok",
	InvalidArgument:  "invalid_argument",
	NotFound:         "not_found",
	AlreadyExists:    "already_exists",
	Conflict:         "conflict",
	Unavailable:      "unavailable",
	Internal:         "internal",
	InternalOnlyLog:  "internal_only_log",
	Unimplemented:    "unimplemented",
	DeadlineExceeded: "deadline_exceeded",
}

var httpStatus = map[ErrCode]int{
	OK:               http.StatusOK,
	InvalidArgument:  http.StatusBadRequest,
	NotFound:         http.StatusNotFound,
	AlreadyExists:    http.StatusConflict,
	Conflict:         http.StatusConflict,
	Unavailable:      http.StatusServiceUnavailable,
	Internal:         http.StatusInternalServerError,
	InternalOnlyLog:  http.StatusInternalServerError,
	Unimplemented:    http.StatusNotImplemented,
	DeadlineExceeded: http.StatusGatewayTimeout,
}

// Error represents an error in the system. FuncName and FileName record
// where the error was constructed and are never sent to clients.
type Error struct {
	Code     ErrCode `json:"code"`
	Message  string  `json:"message"`
	Fields   any     `json:"fields,omitempty"`
	FuncName string  `json:"-"`
	FileName string  `json:"-"`
}

// New constructs an error based on an app error.
func New(code ErrCode, err error) *Error {
	fn, file := caller()
	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: fn,
		FileName: file,
	}
}

// Newf constructs an error based on a error message.
func Newf(code ErrCode, format string, v ...any) *Error {
	fn, file := caller()
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, v...),
		FuncName: fn,
		FileName: file,
	}
}

// NewWithFields attaches per-field details, used for validation failures.
func NewWithFields(code ErrCode, err error, fields any) *Error {
	fn, file := caller()
	return &Error{
		Code:     code,
		Message:  err.Error(),
		Fields:   fields,
		FuncName: fn,
		FileName: file,
	}
}

func caller() (string, string) {
	pc, file, line, _ := runtime.Caller(2)
	return runtime.FuncForPC(pc).Name(), fmt.Sprintf("%s:%d", file, line)
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Encode implements the encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface so the web
// framework can use the correct http status.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// IsError tests the concrete error is of the Error type.
func IsError(err error) bool {
	var er *Error
	return errors.As(err, &er)
}

// GetError returns a copy of the Error pointer.
func GetError(err error) *Error {
	var er *Error
	if !errors.As(err, &er) {
		return nil
	}
	return er
}
