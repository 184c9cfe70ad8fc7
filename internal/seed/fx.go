package seed

import (
	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/printhaus/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, db *gorm.DB, node *snowflake.Node, log *zap.Logger) error {
		if !cfg.SeedDemo {
			return nil
		}
		if err := EnsureDemoCatalog(db, node); err != nil {
			return err
		}
		log.Info("demo catalog ensured")
		return nil
	}),
)
