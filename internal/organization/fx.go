package organization

import (
	"github.com/astauriabidco-maker/fle-expert/internal/organization/repository"
	"github.com/astauriabidco-maker/fle-expert/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
