package diary

import (
	"github.com/mesterwork/mesterwork/internal/diary/repository"
	"github.com/mesterwork/mesterwork/internal/diary/service"
	"go.uber.org/fx"
)

var Module = fx.Module("diary.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
