package integrity

import (
	"github.com/astauriabidco-maker/fle-expert/internal/integrity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("integrity.service",
	fx.Provide(service.NewService),
)
