package repository

import (
	"context"

	"github.com/carlosvidal/aquabill/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a typed gorm store. Filters are zero-value structs: only
// their non-zero fields constrain the query.
type Repository[T any] interface {
	// WithTrx rebinds the store to tx so calls join an open transaction.
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil without error when no row matches.
	FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, row *T) error
}
