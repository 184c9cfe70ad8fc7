package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
	productdomain "github.com/printhaus/printhaus/internal/product/domain"
	"gorm.io/gorm"
)

const demoProductCode = "business-cards"

// EnsureDemoCatalog installs a small sample catalog (one product with
// size and paper attributes) so a fresh local install has something to
// price. It is a no-op when any product already exists.
func EnsureDemoCatalog(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&productdomain.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		product := productdomain.Product{
			ID:        node.Generate().Int64(),
			Code:      demoProductCode,
			Name:      "Business Cards",
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		size := attributedomain.Attribute{
			ID:        node.Generate().Int64(),
			Code:      "size",
			Label:     "Size",
			SortOrder: 1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		paper := attributedomain.Attribute{
			ID:        node.Generate().Int64(),
			Code:      "paper",
			Label:     "Paper",
			SortOrder: 2,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&[]attributedomain.Attribute{size, paper}).Error; err != nil {
			return err
		}

		terms := []attributedomain.Term{
			{ID: node.Generate().Int64(), AttributeID: size.ID, Label: "85 x 55 mm", IsRecommended: true, SortOrder: 1, CreatedAt: now, UpdatedAt: now},
			{ID: node.Generate().Int64(), AttributeID: size.ID, Label: "90 x 50 mm", SortOrder: 2, CreatedAt: now, UpdatedAt: now},
			{ID: node.Generate().Int64(), AttributeID: paper.ID, Label: "Matte 350g", IsRecommended: true, SortOrder: 1, CreatedAt: now, UpdatedAt: now},
			{ID: node.Generate().Int64(), AttributeID: paper.ID, Label: "Gloss 350g", SortOrder: 2, CreatedAt: now, UpdatedAt: now},
		}
		return tx.Create(&terms).Error
	})
}
