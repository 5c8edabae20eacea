package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BillStatus tracks delivery/payment progress for a bill.
type BillStatus string

const (
	BillStatusPending BillStatus = "PENDING"
	BillStatusSent    BillStatus = "SENT"
	BillStatusPaid    BillStatus = "PAID"
	BillStatusOverdue BillStatus = "OVERDUE"
)

// ChargeType distinguishes flat and percentage extra charges.
type ChargeType string

const (
	ChargeTypeFixed      ChargeType = "fixed"
	ChargeTypePercentage ChargeType = "percentage"
)

// ExtraCharge is a recurring per-unit surcharge applied on top of the
// water cost. Charges apply in stored order: position ASC, then id ASC.
type ExtraCharge struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	UnitID      snowflake.ID `json:"unit_id" gorm:"not null;index"`
	Description string       `json:"description" gorm:"type:text;not null"`
	Amount      float64      `json:"amount" gorm:"not null"`
	Type        ChargeType   `json:"type" gorm:"type:text;not null"`
	Position    int          `json:"position" gorm:"not null;default:0"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ExtraCharge) TableName() string { return "unit_extra_charges" }

// AppliedCharge is the snapshot of one extra charge as billed.
// Percentage charges record the computed amount at application time.
type AppliedCharge struct {
	Description string     `json:"description"`
	Type        ChargeType `json:"type"`
	Amount      float64    `json:"amount"`
	Applied     float64    `json:"applied"`
}

// Bill is the engine output for one (period, unit) pair.
type Bill struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	PeriodID        snowflake.ID   `json:"period_id" gorm:"not null;index;uniqueIndex:ux_bills_period_unit,priority:1"`
	UnitID          snowflake.ID   `json:"unit_id" gorm:"not null;uniqueIndex:ux_bills_period_unit,priority:2"`
	CurrentReading  float64        `json:"current_reading" gorm:"not null"`
	PreviousReading float64        `json:"previous_reading" gorm:"not null"`
	Consumption     float64        `json:"consumption" gorm:"not null"`
	IndividualCost  float64        `json:"individual_cost" gorm:"not null"`
	CommonAreaCost  float64        `json:"common_area_cost" gorm:"not null"`
	TotalCost       float64        `json:"total_cost" gorm:"not null"`
	ExtraCharges    datatypes.JSON `json:"extra_charges,omitempty" gorm:"type:jsonb"`
	Status          BillStatus     `json:"status" gorm:"type:text;not null;default:'PENDING'"`
	CreatedAt       time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Bill) TableName() string { return "bills" }

// CalculationResult is the contract returned to the caller after a
// successful calculation pass. Anomalies are diagnostic only and never
// drive control flow.
type CalculationResult struct {
	TotalIndividualConsumption float64  `json:"total_individual_consumption"`
	CommonAreaConsumption      float64  `json:"common_area_consumption"`
	CommonAreaCostPerUnit      float64  `json:"common_area_cost_per_unit"`
	Bills                      []Bill   `json:"bills"`
	Anomalies                  []string `json:"anomalies"`
}

// ValidationReport is the read-only pre-flight check output.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// StatementLine is one billed unit on a period statement.
type StatementLine struct {
	UnitNumber      string  `json:"unit_number"`
	PreviousReading float64 `json:"previous_reading"`
	CurrentReading  float64 `json:"current_reading"`
	Consumption     float64 `json:"consumption"`
	IndividualCost  float64 `json:"individual_cost"`
	CommonAreaCost  float64 `json:"common_area_cost"`
	TotalCost       float64 `json:"total_cost"`
}

// Statement summarises a CLOSED period for export.
type Statement struct {
	CondominiumName string          `json:"condominium_name"`
	PeriodLabel     string          `json:"period_label"`
	TotalVolume     float64         `json:"total_volume"`
	TotalAmount     float64         `json:"total_amount"`
	BilledTotal     float64         `json:"billed_total"`
	Lines           []StatementLine `json:"lines"`
	Anomalies       []string        `json:"anomalies,omitempty"`
}
