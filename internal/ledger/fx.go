package ledger

import (
	"github.com/astauriabidco-maker/fle-expert/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(service.NewService),
)
