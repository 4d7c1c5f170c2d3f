package work

import (
	"github.com/mesterwork/mesterwork/internal/work/repository"
	"github.com/mesterwork/mesterwork/internal/work/service"
	"go.uber.org/fx"
)

var Module = fx.Module("work.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
