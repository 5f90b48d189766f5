package leave

import "elms/internal/domain/apperr"

var (
	ErrInvalidRange            = apperr.Validation("invalid_range", "start date must not be after end date")
	ErrUnknownLeaveType        = apperr.Validation("unknown_leave_type", "leave type not found")
	ErrExceedsAllowance        = apperr.Validation("exceeds_allowance", "requested days exceed the allowed days for this leave type")
	ErrOverlappingRequest      = apperr.Conflict("overlapping_request", "request overlaps an existing pending or approved request")
	ErrInvalidDecision         = apperr.Validation("invalid_decision", "decision must be approved or rejected")
	ErrRejectionReasonRequired = apperr.State("rejection_reason_required", "a rejection reason is required")
	ErrApproverRequired        = apperr.State("approver_required", "an approver is required")
	ErrRequestNotFound         = apperr.NotFound("request_not_found", "leave request not found")
	ErrInvalidState            = apperr.State("invalid_state", "leave request is no longer pending")
	ErrBalanceNotFound         = apperr.NotFound("balance_not_found", "leave balance not found")
	ErrInsufficientBalance     = apperr.State("insufficient_balance", "insufficient leave balance")
	ErrUserNotFound            = apperr.NotFound("user_not_found", "user not found")
	ErrLeaveTypeExists         = apperr.Conflict("leave_type_exists", "leave type already exists")
	ErrInvalidLeaveType        = apperr.Validation("invalid_leave_type", "leave type name and non-negative allowed days are required")
	ErrHolidayExists           = apperr.Conflict("holiday_exists", "a holiday already exists on that date")
)

func errorCode(err error) string {
	if appErr, ok := apperr.As(err); ok {
		return appErr.Code
	}
	return "error"
}
