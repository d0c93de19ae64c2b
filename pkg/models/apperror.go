package models

import (
	"fmt"
	"net/http"
)

const (
	BadRequestErrorCode      = http.StatusBadRequest
	UnauthorizedErrorCode    = http.StatusUnauthorized
	ForbiddenErrorCode       = http.StatusForbidden
	NotFoundErrorCode        = http.StatusNotFound
	PayloadTooLargeErrorCode = http.StatusRequestEntityTooLarge
	TooManyRequestsErrorCode = http.StatusTooManyRequests
	InternalServerErrorCode  = http.StatusInternalServerError
)

var defaultMessages = map[int]string{
	BadRequestErrorCode:      "bad request",
	UnauthorizedErrorCode:    "unauthorized",
	ForbiddenErrorCode:       "forbidden",
	NotFoundErrorCode:        "not found",
	PayloadTooLargeErrorCode: "payload too large",
	TooManyRequestsErrorCode: "too many requests",
	InternalServerErrorCode:  "internal server error",
}

// AppError — custom error type to handle service layer errors
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

func NewAppError(code int, message string) *AppError {
	if message == "" {
		if defMsg, ok := defaultMessages[code]; ok {
			message = defMsg
		} else {
			message = "error"
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
	}
}
