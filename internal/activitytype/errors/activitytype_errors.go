package activitytypeerrors

import (
	"net/http"

	"leaveflow/internal/shared/apperror"
)

var (
	ErrActivityTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"activity type not found",
		http.StatusNotFound,
	)
	ErrInvalidActivityTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid activity type id",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrDuplicateCode = apperror.New(
		apperror.CodeConflict,
		"activity type code already exists",
		http.StatusConflict,
	)
	ErrInvalidWorkflow = apperror.New(
		apperror.CodeInvalidInput,
		"invalid approval workflow",
		http.StatusBadRequest,
	)
)
