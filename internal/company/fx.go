package company

import (
	"context"
	"time"

	"github.com/smallbiznis/salescloser/internal/company/repository"
	"github.com/smallbiznis/salescloser/internal/company/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("company.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

// EnsureDefaults writes the default settings row when none exists yet.
func EnsureDefaults(conn *gorm.DB, homeJurisdiction string) error {
	ctx := context.Background()
	repo := repository.Provide()

	existing, err := repo.Find(ctx, conn)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	settings := service.Defaults(homeJurisdiction)
	settings.UpdatedAt = time.Now().UTC()
	return repo.Save(ctx, conn, &settings)
}
