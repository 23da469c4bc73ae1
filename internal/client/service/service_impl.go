package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salescloser/internal/client/domain"
	"github.com/smallbiznis/salescloser/internal/clock"
	taxdomain "github.com/smallbiznis/salescloser/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Tax   taxdomain.Engine
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	tax   taxdomain.Engine
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		tax:   p.Tax,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.Client{}, err
	}
	jurisdiction, err := s.normalizeJurisdiction(req.Jurisdiction)
	if err != nil {
		return domain.Client{}, err
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:           s.genID.Generate(),
		Name:         name,
		Company:      strings.TrimSpace(req.Company),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Jurisdiction: jurisdiction,
		Notes:        strings.TrimSpace(req.Notes),
		Metadata:     normalizeMap(req.Metadata),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}

	s.log.Info("client created", zap.String("client_id", client.ID.String()))
	return client, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	client, err := s.Get(ctx, req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		client.Name = name
	}
	if req.Company != nil {
		client.Company = strings.TrimSpace(*req.Company)
	}
	if req.Email != nil {
		if client.Email, err = normalizeEmail(*req.Email); err != nil {
			return domain.Client{}, err
		}
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		client.Address = strings.TrimSpace(*req.Address)
	}
	if req.Jurisdiction != nil {
		if client.Jurisdiction, err = s.normalizeJurisdiction(*req.Jurisdiction); err != nil {
			return domain.Client{}, err
		}
	}
	if req.Notes != nil {
		client.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Metadata != nil {
		merged := normalizeMap(client.Metadata)
		for k, v := range req.Metadata {
			if v == nil {
				delete(merged, k)
				continue
			}
			merged[k] = v
		}
		client.Metadata = merged
	}

	client.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Info("client deleted", zap.String("client_id", id.String()))
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Client, error) {
	if id == 0 {
		return domain.Client{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, search string) ([]domain.Client, error) {
	return s.repo.List(ctx, s.db, search)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.db)
}

func (s *Service) normalizeJurisdiction(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}
	j, ok := s.tax.Jurisdiction(code)
	if !ok {
		return "", domain.ErrInvalidJurisdiction
	}
	return j.Code, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email != "" && !strings.Contains(email, "@") {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func normalizeMap(input map[string]any) datatypes.JSONMap {
	output := datatypes.JSONMap{}
	for k, v := range input {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		output[key] = v
	}
	return output
}
