package matrix

import (
	"github.com/printhaus/printhaus/internal/matrix/repository"
	"github.com/printhaus/printhaus/internal/matrix/service"
	"go.uber.org/fx"
)

var Module = fx.Module("matrix.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
