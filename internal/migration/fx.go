package migration

import (
	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
	"github.com/printhaus/printhaus/internal/config"
	matrixdomain "github.com/printhaus/printhaus/internal/matrix/domain"
	productdomain "github.com/printhaus/printhaus/internal/product/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// Non-postgres targets (local sqlite, mysql dev setups) get
		// the schema through gorm instead of the SQL migrations.
		return conn.AutoMigrate(
			&productdomain.Product{},
			&attributedomain.Attribute{},
			&attributedomain.Term{},
			&matrixdomain.Matrix{},
			&matrixdomain.Price{},
		)
	}),
)
