package modulehealth

import (
	"github.com/platewise/platewise/internal/modulehealth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("modulehealth.service",
	fx.Provide(service.New),
)
