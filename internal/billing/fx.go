package billing

import (
	"github.com/mesterwork/mesterwork/internal/billing/repository"
	"github.com/mesterwork/mesterwork/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
