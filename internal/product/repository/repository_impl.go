package repository

import (
	"context"
	"errors"

	productdomain "github.com/printhaus/printhaus/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() productdomain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *productdomain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*productdomain.Product, error) {
	var p productdomain.Product
	err := db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]productdomain.Product, error) {
	var items []productdomain.Product
	err := db.WithContext(ctx).Order("created_at ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
