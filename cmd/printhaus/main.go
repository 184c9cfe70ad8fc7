package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/printhaus/internal/clock"
	"github.com/printhaus/printhaus/internal/config"
	"github.com/printhaus/printhaus/internal/logger"
	"github.com/printhaus/printhaus/internal/migration"
	"github.com/printhaus/printhaus/internal/observability"
	"github.com/printhaus/printhaus/internal/seed"
	"github.com/printhaus/printhaus/internal/server"
	"github.com/printhaus/printhaus/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,

		// Domain modules and HTTP surface
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
