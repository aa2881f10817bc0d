package organization

import (
	"github.com/platewise/platewise/internal/organization/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
)
