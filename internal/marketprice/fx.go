package marketprice

import (
	"github.com/mesterwork/mesterwork/internal/marketprice/openai"
	"github.com/mesterwork/mesterwork/internal/marketprice/repository"
	"github.com/mesterwork/mesterwork/internal/marketprice/service"
	"github.com/mesterwork/mesterwork/internal/marketprice/tavily"
	"go.uber.org/fx"
)

var Module = fx.Module("marketprice.service",
	fx.Provide(repository.Provide),
	fx.Provide(tavily.New),
	fx.Provide(openai.New),
	fx.Provide(service.New),
)
