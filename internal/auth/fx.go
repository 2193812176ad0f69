package auth

import (
	"github.com/procurehq/procure/internal/auth/repository"
	"github.com/procurehq/procure/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
