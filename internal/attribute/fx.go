package attribute

import (
	"github.com/printhaus/printhaus/internal/attribute/repository"
	"github.com/printhaus/printhaus/internal/attribute/service"
	"go.uber.org/fx"
)

var Module = fx.Module("attribute.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
