package errdef

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeUnknown    Code = "unknown"
	CodeParse      Code = "parse"
	CodeHTTP       Code = "http"
	CodeWebSocket  Code = "websocket"
	CodeRSocket    Code = "rsocket"
	CodeGraphQL    Code = "graphql"
	CodeFilesystem Code = "filesystem"
	CodeEnv        Code = "env"
)

type Error struct {
	Code    Code
	Msg     string
	Wrapped error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Wrapped != nil {
		if e.Msg != "" {
			return fmt.Sprintf("%s: %v", e.Msg, e.Wrapped)
		}
		return e.Wrapped.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

func New(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Wrapped: err}
}

func CodeOf(err error) Code {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	return CodeUnknown
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Message returns the outermost annotation without the wrapped chain.
func Message(err error) string {
	var typed *Error
	if errors.As(err, &typed) && typed.Msg != "" {
		return typed.Msg
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
