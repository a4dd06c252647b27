package requesterrors

import (
	"net/http"

	"leaveflow/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid request id",
		http.StatusBadRequest,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the request owner may perform this action",
		http.StatusForbidden,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"request status does not allow this transition",
		http.StatusConflict,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end date must not be before start date",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInvalidState,
		"insufficient balance for the requested days",
		http.StatusUnprocessableEntity,
	)
	ErrOverlappingRequest = apperror.New(
		apperror.CodeConflict,
		"request overlaps an existing one",
		http.StatusConflict,
	)
	ErrCommentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"a comment is required when requesting revision",
		http.StatusBadRequest,
	)
	ErrCancellationNotAllowed = apperror.New(
		apperror.CodeInvalidState,
		"this activity type does not allow cancellation",
		http.StatusConflict,
	)
	ErrCancellationDeadlinePassed = apperror.New(
		apperror.CodeInvalidState,
		"the cancellation deadline has passed",
		http.StatusConflict,
	)
	ErrInactiveActivityType = apperror.New(
		apperror.CodeInvalidState,
		"activity type is not active",
		http.StatusUnprocessableEntity,
	)
)
