package organization

import (
	"github.com/procurehq/procure/internal/organization/repository"
	"github.com/procurehq/procure/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
