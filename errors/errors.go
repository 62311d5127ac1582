package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 是稳定的错误码，测试与调用方据此判断错误类别。
type ErrorCode string

const (
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// 渲染管线
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrAssetDecodeFailed ErrorCode = "ASSET_DECODE_FAILED"
	ErrUnknownStyleID    ErrorCode = "UNKNOWN_STYLE_ID"
	ErrEncodingFailed    ErrorCode = "ENCODING_FAILED"

	// 外围：配置与资源
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrAssetFetch  ErrorCode = "ASSET_FETCH"
)

// CardError carries a code, a message, optional details and the wrapped cause.
type CardError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func (e *CardError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *CardError) Unwrap() error {
	return e.Wrapped
}

// Is 以错误码判等，便于 errors.Is(err, errors.New(ErrInvalidInput, "")) 的写法。
func (e *CardError) Is(target error) bool {
	var t *CardError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a CardError with the given code and message.
func New(code ErrorCode, message string) *CardError {
	return &CardError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a CardError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *CardError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err; a nil err yields nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &CardError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps err with a formatted message; a nil err yields nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail 附加一个调试字段。
func (e *CardError) WithDetail(key string, value interface{}) *CardError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode reports whether any error in err's chain carries code.
// 与 GetErrorCode 不同，外层 CardError 不会遮住内层的错误码。
func IsErrorCode(err error, code ErrorCode) bool {
	return errors.Is(err, &CardError{Code: code})
}

// GetErrorCode returns the code of the first CardError in the chain, or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var ce *CardError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details of the first CardError in the chain.
func GetErrorDetails(err error) map[string]interface{} {
	var ce *CardError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}
