package domain

import (
	"context"
	"time"
)

// Setting is one key/value configuration row.
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;type:text"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Setting) TableName() string { return "settings" }

// Setting keys consumed by the resolver.
const (
	KeyBasicRate          = "water.basic_rate"
	KeyFixedCharge        = "water.fixed_charge"
	KeyMinimumConsumption = "water.minimum_consumption"
)

// WaterRates is the billing-rate configuration for one calculation pass.
type WaterRates struct {
	// BasicRate is the cost per cubic meter.
	BasicRate float64 `json:"basic_rate"`
	// FixedCharge is an optional flat per-unit addition.
	FixedCharge *float64 `json:"fixed_charge,omitempty"`
	// MinimumConsumption is an optional floor applied to measured
	// consumption.
	MinimumConsumption *float64 `json:"minimum_consumption,omitempty"`
}

// Resolver loads WaterRates from the settings store. Pure read; it fails
// only when the store is unavailable.
type Resolver interface {
	Resolve(ctx context.Context) (WaterRates, error)
}
