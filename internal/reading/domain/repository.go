package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *Reading) error
	Update(ctx context.Context, db *gorm.DB, reading *Reading) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reading, error)
	FindForPeriod(ctx context.Context, db *gorm.DB, meterID, periodID snowflake.ID) (*Reading, error)
	ListForPeriod(ctx context.Context, db *gorm.DB, periodID snowflake.ID) ([]Reading, error)
	// FindPrevious returns the meter's reading from the most recent
	// CLOSED period of the given condominium, or nil when the meter has
	// no closed history yet.
	FindPrevious(ctx context.Context, db *gorm.DB, meterID, condominiumID snowflake.ID) (*Reading, error)
}
