package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type OpenRequest struct {
	CondominiumID string    `json:"condominium_id"`
	StartDate     time.Time `json:"start_date"`
}

type RecordReceiptRequest struct {
	PeriodID    string  `json:"period_id"`
	TotalVolume float64 `json:"total_volume"`
	TotalAmount float64 `json:"total_amount"`
}

type Service interface {
	// Open starts a new OPEN period for a condominium. At most one
	// non-closed period may exist per condominium at a time.
	Open(ctx context.Context, req OpenRequest) (*BillingPeriod, error)
	// SubmitReadings moves OPEN to PENDING_RECEIPT once every billable
	// unit has a validated reading for the period.
	SubmitReadings(ctx context.Context, periodID string) (*BillingPeriod, error)
	// RecordReceipt stores the master receipt totals and moves
	// PENDING_RECEIPT to CALCULATING.
	RecordReceipt(ctx context.Context, req RecordReceiptRequest) (*BillingPeriod, error)
	FindByID(ctx context.Context, periodID string) (*BillingPeriod, error)
	ListByCondominium(ctx context.Context, condominiumID string) ([]BillingPeriod, error)
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidCondominium   = errors.New("invalid_condominium")
	ErrNotFound             = errors.New("period_not_found")
	ErrPeriodAlreadyOpen    = errors.New("period_already_open")
	ErrNotOpen              = errors.New("period_not_open")
	ErrNotPendingReceipt    = errors.New("period_not_pending_receipt")
	ErrInvalidReceiptTotals = errors.New("invalid_receipt_totals")
	ErrReadingsIncomplete   = errors.New("readings_incomplete")
	ErrReadingsNotValidated = errors.New("readings_not_validated")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
