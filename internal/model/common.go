package model

import (
	"errors"
	"fmt"
)

// AppError 自定义错误类型，Code 与 HTTP 状态码一致
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("code: %d, message: %s", e.Code, e.Message)
}

// 预定义错误
var (
	ErrInvalidParameter = func(msg string) error {
		return &AppError{Code: 400, Message: msg}
	}
	ErrStoreUnavailable = func(msg string) error {
		return &AppError{Code: 500, Message: msg}
	}
	ErrInternalError = func(msg string) error {
		return &AppError{Code: 500, Message: msg}
	}
)

// ErrorCode 提取错误码，非 AppError 视为 500
func ErrorCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 500
}
