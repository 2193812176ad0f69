package invitation

import (
	"github.com/procurehq/procure/internal/invitation/repository"
	"github.com/procurehq/procure/internal/invitation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
