package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// BillableUnit pairs an active unit with its active water meter.
type BillableUnit struct {
	Unit  Unit
	Meter Meter
}

type Repository interface {
	FindCondominium(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Condominium, error)
	FindUnit(ctx context.Context, db *gorm.DB, condominiumID, id snowflake.ID) (*Unit, error)
	// ListBillableUnits returns every active unit of the condominium that
	// owns an active water meter, ordered by unit number.
	ListBillableUnits(ctx context.Context, db *gorm.DB, condominiumID snowflake.ID) ([]BillableUnit, error)
}
