package certificate

import (
	"github.com/astauriabidco-maker/fle-expert/internal/certificate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("certificate.service",
	fx.Provide(service.NewService),
)
