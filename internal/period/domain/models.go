package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PeriodStatus tracks reading collection and reconciliation progress.
type PeriodStatus string

const (
	PeriodStatusOpen           PeriodStatus = "OPEN"
	PeriodStatusPendingReceipt PeriodStatus = "PENDING_RECEIPT"
	PeriodStatusCalculating    PeriodStatus = "CALCULATING"
	PeriodStatusClosed         PeriodStatus = "CLOSED"
)

// BillingPeriod is one reconciliation cycle for one condominium.
// TotalVolume and TotalAmount carry the master utility receipt and must
// both be present and positive before a calculation pass may run.
type BillingPeriod struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	CondominiumID snowflake.ID `json:"condominium_id" gorm:"not null;index;uniqueIndex:ux_period_condo_start,priority:1"`
	StartDate     time.Time    `json:"start_date" gorm:"not null;uniqueIndex:ux_period_condo_start,priority:2"`
	EndDate       *time.Time   `json:"end_date,omitempty"`
	Status        PeriodStatus `json:"status" gorm:"type:text;not null;default:'OPEN'"`
	TotalVolume   *float64     `json:"total_volume,omitempty"`
	TotalAmount   *float64     `json:"total_amount,omitempty"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BillingPeriod) TableName() string { return "billing_periods" }

// HasReceipt reports whether both receipt totals are present and positive.
func (p *BillingPeriod) HasReceipt() bool {
	return p.TotalVolume != nil && *p.TotalVolume > 0 &&
		p.TotalAmount != nil && *p.TotalAmount > 0
}
