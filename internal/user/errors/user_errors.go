package usererrors

import (
	"net/http"

	"leaveflow/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidManagerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid manager id",
		http.StatusBadRequest,
	)
	ErrSelfManagement = apperror.New(
		apperror.CodeInvalidInput,
		"a user cannot be their own manager",
		http.StatusBadRequest,
	)
)
