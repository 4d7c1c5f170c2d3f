package pricelist

import (
	"github.com/mesterwork/mesterwork/internal/pricelist/repository"
	"github.com/mesterwork/mesterwork/internal/pricelist/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricelist.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
