package bid

import (
	"github.com/procurehq/procure/internal/bid/repository"
	"github.com/procurehq/procure/internal/bid/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bid.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
