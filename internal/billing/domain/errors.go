package domain

import "errors"

var (
	ErrInvalidPeriodID      = errors.New("invalid_period_id")
	ErrPeriodNotFound       = errors.New("period_not_found")
	ErrPeriodNotCalculating = errors.New("period_not_calculating")
	ErrMissingReceiptTotals = errors.New("missing_receipt_totals")
	// ErrPeriodNotClosed guards the reopen path; it is distinct from the
	// calculation precondition errors on purpose.
	ErrPeriodNotClosed = errors.New("period_not_closed")
)
