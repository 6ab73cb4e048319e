package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 带错误码的应用错误
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// 错误码
const (
	CodeSchemaMismatch  = "SCHEMA_MISMATCH"
	CodeEmptyInput      = "EMPTY_INPUT"
	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeStorageFailure  = "STORAGE_FAILURE"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInternal        = "INTERNAL_ERROR"
)

// New 创建 AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 以指定错误码包装底层错误
func Wrap(code string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Coder 可以自报错误码的错误（parser/store 的类型化错误实现该接口）
type Coder interface {
	ErrorCode() string
}

// CodeOf 返回错误链上第一个可识别的错误码
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	var coder Coder
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return CodeInternal
}

// HTTPStatus 错误码对应的 HTTP 状态码
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeSchemaMismatch, CodeEmptyInput:
		return http.StatusUnprocessableEntity
	case CodeInvalidFileType, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage 面向用户的简短描述：校验类错误给出具体原因，其余统一为处理失败
func UserMessage(err error) string {
	switch CodeOf(err) {
	case CodeSchemaMismatch, CodeEmptyInput, CodeInvalidFileType, CodeInvalidInput, CodeNotFound:
		var appErr *AppError
		if errors.As(err, &appErr) && appErr.Cause == nil {
			return appErr.Message
		}
		var coder Coder
		if errors.As(err, &coder) {
			if e, ok := coder.(error); ok {
				return e.Error()
			}
		}
		return err.Error()
	default:
		return "Failed to process file"
	}
}
