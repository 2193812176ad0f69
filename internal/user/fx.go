package user

import (
	"github.com/procurehq/procure/internal/user/repository"
	"github.com/procurehq/procure/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
