package product

import (
	"github.com/printhaus/printhaus/internal/product/repository"
	"github.com/printhaus/printhaus/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
