package verification

import (
	"github.com/astauriabidco-maker/fle-expert/internal/verification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("verification.service",
	fx.Provide(service.NewService),
)
