package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type RecordRequest struct {
	PeriodID string  `json:"period_id"`
	MeterID  string  `json:"meter_id"`
	Value    float64 `json:"value"`
	Notes    string  `json:"notes,omitempty"`
}

type ReviewRequest struct {
	ReadingID string  `json:"reading_id"`
	Validated *bool   `json:"validated,omitempty"`
	Anomalous *bool   `json:"anomalous,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type Service interface {
	// Record creates the reading for (meter, period), or overwrites it
	// while the period is still OPEN.
	Record(ctx context.Context, req RecordRequest) (*Reading, error)
	// Review updates the validation/anomaly flags and notes. Allowed
	// until the owning period is CLOSED.
	Review(ctx context.Context, req ReviewRequest) (*Reading, error)
	ListForPeriod(ctx context.Context, periodID string) ([]Reading, error)
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidMeter   = errors.New("invalid_meter")
	ErrInvalidPeriod  = errors.New("invalid_period")
	ErrNegativeValue  = errors.New("negative_reading_value")
	ErrPeriodNotOpen  = errors.New("period_not_open")
	ErrPeriodClosed   = errors.New("period_closed")
	ErrNotFound       = errors.New("reading_not_found")
	ErrDuplicateEntry = errors.New("duplicate_reading")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
