package option

import "gorm.io/gorm"

// QueryOption customises a gorm query built by the generic store.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type orderBy struct {
	clause string
}

func (o orderBy) Apply(db *gorm.DB) *gorm.DB { return db.Order(o.clause) }

// WithOrderBy orders results by the given clause, e.g. "created_at ASC".
func WithOrderBy(clause string) QueryOption { return orderBy{clause: clause} }
