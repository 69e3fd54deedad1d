package services

import (
	"net/http"

	"github.com/doctrina/mono-repo/backend/shared/go-utils"
)

func validationError(message string, err error) *utils.AppError {
	return &utils.AppError{
		StatusCode: http.StatusBadRequest,
		Code:       utils.ErrCodeValidation,
		Message:    message,
		Err:        err,
	}
}

func forbiddenError(message string) *utils.AppError {
	return &utils.AppError{
		StatusCode: http.StatusForbidden,
		Code:       utils.ErrCodeForbidden,
		Message:    message,
		Err:        utils.ErrForbidden,
	}
}

func conflictError(message string) *utils.AppError {
	return &utils.AppError{
		StatusCode: http.StatusConflict,
		Code:       utils.ErrCodeConflict,
		Message:    message,
		Err:        utils.ErrConflict,
	}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
