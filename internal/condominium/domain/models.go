package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Condominium is one managed property, the tenancy boundary for billing.
type Condominium struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Address   string       `json:"address" gorm:"type:text"`
	Active    bool         `json:"active" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Condominium) TableName() string { return "condominiums" }

// Block groups units inside a condominium.
type Block struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	CondominiumID snowflake.ID `json:"condominium_id" gorm:"not null;index"`
	Name          string       `json:"name" gorm:"type:text;not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Block) TableName() string { return "blocks" }

// Resident is the person billed for a unit.
type Resident struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	CondominiumID snowflake.ID `json:"condominium_id" gorm:"not null;index"`
	Name          string       `json:"name" gorm:"type:text;not null"`
	Email         string       `json:"email" gorm:"type:text"`
	Phone         string       `json:"phone" gorm:"type:text"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Resident) TableName() string { return "residents" }

// Unit is a billable dwelling. Only active units with an active water
// meter participate in a calculation pass.
type Unit struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	CondominiumID snowflake.ID  `json:"condominium_id" gorm:"not null;index"`
	BlockID       snowflake.ID  `json:"block_id" gorm:"not null;index"`
	ResidentID    *snowflake.ID `json:"resident_id,omitempty" gorm:"index"`
	Number        string        `json:"number" gorm:"type:text;not null"`
	Active        bool          `json:"active" gorm:"not null"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Unit) TableName() string { return "units" }

// MeterType distinguishes utility meters; only water meters feed billing.
type MeterType string

const (
	MeterTypeWater       MeterType = "WATER"
	MeterTypeElectricity MeterType = "ELECTRICITY"
	MeterTypeGas         MeterType = "GAS"
)

// Meter is owned by a unit. Replacing a meter deactivates the old record
// and creates a new one, so reading history is scoped per meter.
type Meter struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	UnitID      snowflake.ID `json:"unit_id" gorm:"not null;index"`
	Type        MeterType    `json:"type" gorm:"type:text;not null"`
	Serial      string       `json:"serial" gorm:"type:text"`
	Active      bool         `json:"active" gorm:"not null"`
	InstalledAt time.Time    `json:"installed_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Meter) TableName() string { return "meters" }

// ParseID parses a string identifier.
func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
