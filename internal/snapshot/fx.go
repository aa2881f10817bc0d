package snapshot

import (
	"github.com/platewise/platewise/internal/snapshot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("snapshot.service",
	fx.Provide(service.New),
)
