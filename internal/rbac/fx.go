package rbac

import (
	"github.com/procurehq/procure/internal/rbac/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("rbac",
	fx.Provide(repository.NewRepository),
)
