package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Calculate runs the full reconciliation and allocation pass for a
	// CALCULATING period and atomically replaces its bills, closing the
	// period on success.
	Calculate(ctx context.Context, periodID string) (*CalculationResult, error)
	// Validate is the read-only pre-flight check callable before
	// committing to a calculation. It mutates nothing.
	Validate(ctx context.Context, periodID string) (*ValidationReport, error)
	// Reopen deletes a CLOSED period's bills and reverts it to
	// PENDING_RECEIPT. Destructive; the caller enforces authorization.
	Reopen(ctx context.Context, periodID string) error
	ListBills(ctx context.Context, periodID string) ([]Bill, error)
	// Statement summarises a CLOSED period's bills for export.
	Statement(ctx context.Context, periodID string) (*Statement, error)
}

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
