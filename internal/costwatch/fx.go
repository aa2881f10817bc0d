package costwatch

import (
	"github.com/platewise/platewise/internal/costwatch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("costwatch.service",
	fx.Provide(service.New),
)
