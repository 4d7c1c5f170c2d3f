package registry

import (
	"github.com/mesterwork/mesterwork/internal/registry/repository"
	"github.com/mesterwork/mesterwork/internal/registry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("registry.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
