package workforce

import (
	"github.com/mesterwork/mesterwork/internal/workforce/repository"
	"github.com/mesterwork/mesterwork/internal/workforce/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workforce.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
