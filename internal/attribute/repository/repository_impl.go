package repository

import (
	"context"

	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() attributedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, attribute *attributedomain.Attribute) error {
	return db.WithContext(ctx).Create(attribute).Error
}

func (r *repo) InsertTerm(ctx context.Context, db *gorm.DB, term *attributedomain.Term) error {
	return db.WithContext(ctx).Create(term).Error
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]attributedomain.Attribute, error) {
	var items []attributedomain.Attribute
	err := db.WithContext(ctx).
		Preload("Terms", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Order("sort_order ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]attributedomain.Attribute, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []attributedomain.Attribute
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindTermsByAttributeIDs(ctx context.Context, db *gorm.DB, ids []int64) (map[int64][]attributedomain.Term, error) {
	out := make(map[int64][]attributedomain.Term, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var terms []attributedomain.Term
	err := db.WithContext(ctx).
		Where("attribute_id IN ?", ids).
		Order("sort_order ASC, id ASC").
		Find(&terms).Error
	if err != nil {
		return nil, err
	}
	for _, t := range terms {
		out[t.AttributeID] = append(out[t.AttributeID], t)
	}
	return out, nil
}
