package audit

import (
	"github.com/astauriabidco-maker/fle-expert/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(service.NewService),
)
