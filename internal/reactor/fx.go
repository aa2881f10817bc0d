package reactor

import (
	"github.com/platewise/platewise/internal/reactor/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reactor.service",
	fx.Provide(service.New),
)
