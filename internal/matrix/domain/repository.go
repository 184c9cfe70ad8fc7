package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, m *Matrix) error
	Update(ctx context.Context, db *gorm.DB, m *Matrix) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Matrix, error)
	FindByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]Matrix, error)
	FindBaseByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*Matrix, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error

	ListPrices(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) ([]Price, error)
	CountPrices(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) (int64, error)
	// InsertPricesSkipDuplicates bulk-inserts rows, silently skipping
	// any whose composite key already exists. Concurrent repairs on
	// the same matrix must not fail the whole batch.
	InsertPricesSkipDuplicates(ctx context.Context, db *gorm.DB, rows []Price) error
	// UpdatePrice overwrites the price of one existing cell and
	// returns the number of rows affected. It never inserts.
	UpdatePrice(ctx context.Context, db *gorm.DB, matrixID snowflake.ID, combinationKey string, breakpoint int, price string) (int64, error)
	DeletePrices(ctx context.Context, db *gorm.DB, matrixID snowflake.ID) error
}
