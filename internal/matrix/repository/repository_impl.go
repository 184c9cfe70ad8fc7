package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	matrixdomain "github.com/printhaus/printhaus/internal/matrix/domain"
	pkgdb "github.com/printhaus/printhaus/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() matrixdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *matrixdomain.Matrix) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, m *matrixdomain.Matrix) error {
	return db.WithContext(ctx).Save(m).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*matrixdomain.Matrix, error) {
	var m matrixdomain.Matrix
	err := db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) FindByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]matrixdomain.Matrix, error) {
	var items []matrixdomain.Matrix
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("kind ASC, sort_order ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindBaseByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*matrixdomain.Matrix, error) {
	var m matrixdomain.Matrix
	err := db.WithContext(ctx).
		Where("product_id = ? AND kind = ?", productID, matrixdomain.Base).
		Order("id ASC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&matrixdomain.Matrix{}, "id = ?", id).Error
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).
		Model(&matrixdomain.Matrix{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *repo) ListPrices(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) ([]matrixdomain.Price, error) {
	var rows []matrixdomain.Price
	err := db.WithContext(ctx).
		Where("matrix_id = ?", matrixID).
		Order("combination_key ASC, breakpoint ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CountPrices(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&matrixdomain.Price{}).
		Where("matrix_id = ?", matrixID).
		Count(&count).Error
	return count, err
}

const insertBatchSize = 500

func (r *repo) InsertPricesSkipDuplicates(ctx context.Context, db *gorm.DB, rows []matrixdomain.Price) error {
	if len(rows) == 0 {
		return nil
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, insertBatchSize).Error
	if pkgdb.IsDuplicateKeyErr(err) {
		// Backstop for drivers that surface the conflict anyway.
		return nil
	}
	return err
}

func (r *repo) UpdatePrice(ctx context.Context, db *gorm.DB, matrixID snowflake.ID, combinationKey string, breakpoint int, price string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&matrixdomain.Price{}).
		Where("matrix_id = ? AND combination_key = ? AND breakpoint = ?", matrixID, combinationKey, breakpoint).
		Update("price", price)
	return res.RowsAffected, res.Error
}

func (r *repo) DeletePrices(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) error {
	return db.WithContext(ctx).Delete(&matrixdomain.Price{}, "matrix_id = ?", matrixID).Error
}
