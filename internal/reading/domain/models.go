package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Reading is one declared meter value for one (meter, period) pair.
// At most one reading exists per pair; the unique index enforces it.
type Reading struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	MeterID   snowflake.ID `json:"meter_id" gorm:"not null;uniqueIndex:ux_readings_meter_period,priority:1"`
	PeriodID  snowflake.ID `json:"period_id" gorm:"not null;index;uniqueIndex:ux_readings_meter_period,priority:2"`
	Value     float64      `json:"value" gorm:"not null"`
	Validated bool         `json:"validated" gorm:"not null;default:false"`
	Anomalous bool         `json:"anomalous" gorm:"not null;default:false"`
	Notes     string       `json:"notes" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Reading) TableName() string { return "readings" }
