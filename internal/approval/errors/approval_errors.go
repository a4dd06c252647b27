package approvalerrors

import (
	"net/http"

	"leaveflow/internal/shared/apperror"
)

var (
	ErrNoApproversConfigured = apperror.New(
		apperror.CodeConfigurationError,
		"approval required but no approvers are configured",
		http.StatusUnprocessableEntity,
	)
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval not found",
		http.StatusNotFound,
	)
	ErrNotAuthorizedApprover = apperror.New(
		apperror.CodeForbidden,
		"user is not an eligible approver for this request",
		http.StatusForbidden,
	)
	ErrInvalidProxyWindow = apperror.New(
		apperror.CodeInvalidInput,
		"proxy end date must not be before start date",
		http.StatusBadRequest,
	)
	ErrSelfProxy = apperror.New(
		apperror.CodeInvalidInput,
		"approver cannot proxy to themselves",
		http.StatusBadRequest,
	)
	ErrInvalidApproverID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid approver id",
		http.StatusBadRequest,
	)
)
