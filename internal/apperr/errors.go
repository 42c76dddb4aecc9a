package apperr

import (
	"errors"
	"fmt"
)

// Kind 机器可读的错误类别，直接出现在响应体中
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindUnauthorized       Kind = "unauthorized"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindServer             Kind = "server_error"
)

// Error 应用错误：Kind + 面向客户端的 Message，Err 为内部原因（不返回给客户端）
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 包装已有错误
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Forbidden(message string) *Error  { return New(KindForbidden, message) }
func Conflict(message string) *Error   { return New(KindConflict, message) }

// Server wraps a storage or unexpected failure.
func Server(message string, err error) *Error { return Wrap(KindServer, message, err) }

// KindOf 返回错误的类别，非应用错误视为 server_error
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindServer
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
