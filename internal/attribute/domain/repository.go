package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, attribute *Attribute) error
	InsertTerm(ctx context.Context, db *gorm.DB, term *Term) error
	FindAll(ctx context.Context, db *gorm.DB) ([]Attribute, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Attribute, error)
	// FindTermsByAttributeIDs returns every term of the given
	// attributes, keyed by attribute id.
	FindTermsByAttributeIDs(ctx context.Context, db *gorm.DB, ids []int64) (map[int64][]Term, error)
}
