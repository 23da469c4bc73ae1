package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/salescloser/internal/clock"
	"github.com/smallbiznis/salescloser/internal/company/domain"
	"github.com/smallbiznis/salescloser/internal/config"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
	Repo  domain.Repository
	Tax   taxdomain.Engine
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cfg   config.Config
	clock clock.Clock
	repo  domain.Repository
	tax   taxdomain.Engine
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		cfg:   p.Cfg,
		clock: p.Clock,
		repo:  p.Repo,
		tax:   p.Tax,
	}
}

// Get returns the stored settings, or the defaults when nothing was saved yet.
func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	settings, err := s.repo.Find(ctx, s.db)
	if err != nil {
		return domain.Settings{}, err
	}
	if settings == nil {
		return Defaults(s.cfg.DefaultJurisdiction), nil
	}
	return *settings, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSettingsRequest) (domain.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Settings{}, domain.ErrInvalidName
		}
		settings.Name = name
	}
	if req.Address != nil {
		settings.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		settings.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.Contains(email, "@") {
			return domain.Settings{}, domain.ErrInvalidEmail
		}
		settings.Email = email
	}
	if req.Website != nil {
		settings.Website = strings.TrimSpace(*req.Website)
	}
	if req.HomeJurisdiction != nil {
		j, ok := s.tax.Jurisdiction(*req.HomeJurisdiction)
		if !ok {
			return domain.Settings{}, domain.ErrInvalidJurisdiction
		}
		settings.HomeJurisdiction = j.Code
	}

	settings.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, &settings); err != nil {
		return domain.Settings{}, err
	}

	s.log.Info("company settings updated", zap.String("home_jurisdiction", settings.HomeJurisdiction))
	return settings, nil
}

func Defaults(homeJurisdiction string) domain.Settings {
	home := taxdomain.NormalizeCode(homeJurisdiction)
	if home == "" {
		home = "MA"
	}
	return domain.Settings{
		ID:               domain.SettingsID,
		Name:             "My Company",
		HomeJurisdiction: home,
	}
}
