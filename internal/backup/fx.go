package backup

import (
	"github.com/smallbiznis/salescloser/internal/backup/repository"
	"github.com/smallbiznis/salescloser/internal/backup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("backup.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
