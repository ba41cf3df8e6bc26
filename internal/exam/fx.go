package exam

import (
	"github.com/astauriabidco-maker/fle-expert/internal/exam/repository"
	"github.com/astauriabidco-maker/fle-expert/internal/exam/service"
	"go.uber.org/fx"
)

var Module = fx.Module("exam.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
