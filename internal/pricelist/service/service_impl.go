package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/pricelist/domain"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// globalTenant marks rows of the global catalog.
const globalTenant = ""

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pricelist.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) ListGlobal(ctx context.Context) ([]domain.PriceList, error) {
	if _, ok := tenantctx.FromContext(ctx); !ok {
		return nil, domain.ErrInvalidTenant
	}
	return s.list(ctx, globalTenant)
}

func (s *Service) ListTenant(ctx context.Context) ([]domain.PriceList, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}
	return s.list(ctx, tenant)
}

func (s *Service) list(ctx context.Context, tenantEmail string) ([]domain.PriceList, error) {
	rows, err := s.repo.List(ctx, s.db, tenantEmail)
	if err != nil {
		return nil, err
	}
	prices := make([]domain.PriceList, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			prices = append(prices, *row)
		}
	}
	return prices, nil
}

func (s *Service) UpsertTenant(ctx context.Context, req domain.UpsertPriceRequest) (domain.PriceList, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.PriceList{}, domain.ErrInvalidTenant
	}

	task := strings.TrimSpace(req.Task)
	if task == "" {
		return domain.PriceList{}, domain.ErrInvalidTask
	}

	now := time.Now().UTC()
	existing, err := s.repo.FindByTask(ctx, s.db, tenant, task)
	if err != nil {
		return domain.PriceList{}, err
	}

	if existing != nil {
		existing.Category = req.Category
		existing.Technology = req.Technology
		existing.Unit = req.Unit
		existing.LaborCost = req.LaborCost
		existing.MaterialCost = req.MaterialCost
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, s.db, existing); err != nil {
			return domain.PriceList{}, err
		}
		return *existing, nil
	}

	price := domain.PriceList{
		ID:           s.genID.Generate(),
		TenantEmail:  tenant,
		Task:         task,
		Category:     req.Category,
		Technology:   req.Technology,
		Unit:         req.Unit,
		LaborCost:    req.LaborCost,
		MaterialCost: req.MaterialCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &price); err != nil {
		return domain.PriceList{}, err
	}
	return price, nil
}

func (s *Service) UpdateTenant(ctx context.Context, id snowflake.ID, req domain.UpdatePriceRequest) (domain.PriceList, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.PriceList{}, domain.ErrInvalidTenant
	}
	return s.update(ctx, tenant, id, req)
}

func (s *Service) UpdateGlobal(ctx context.Context, id snowflake.ID, req domain.UpdatePriceRequest) (domain.PriceList, error) {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.PriceList{}, domain.ErrInvalidTenant
	}
	if !tenant.SuperUser {
		return domain.PriceList{}, domain.ErrForbidden
	}
	return s.update(ctx, globalTenant, id, req)
}

func (s *Service) update(ctx context.Context, tenantEmail string, id snowflake.ID, req domain.UpdatePriceRequest) (domain.PriceList, error) {
	price, err := s.repo.FindByID(ctx, s.db, tenantEmail, id)
	if err != nil {
		return domain.PriceList{}, err
	}
	if price == nil {
		return domain.PriceList{}, domain.ErrNotFound
	}

	if req.Task != nil {
		task := strings.TrimSpace(*req.Task)
		if task == "" {
			return domain.PriceList{}, domain.ErrInvalidTask
		}
		price.Task = task
	}
	if req.Category != nil {
		price.Category = req.Category
	}
	if req.Technology != nil {
		price.Technology = req.Technology
	}
	if req.Unit != nil {
		price.Unit = req.Unit
	}
	if req.LaborCost != nil {
		price.LaborCost = *req.LaborCost
	}
	if req.MaterialCost != nil {
		price.MaterialCost = *req.MaterialCost
	}
	price.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, price); err != nil {
		return domain.PriceList{}, err
	}
	return *price, nil
}

func (s *Service) DeleteTenant(ctx context.Context, id snowflake.ID) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}

	price, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return err
	}
	if price == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, tenant, id)
}

func (s *Service) Lookup(ctx context.Context, task string) (*domain.PriceList, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	task = strings.TrimSpace(task)
	if task == "" {
		return nil, nil
	}

	price, err := s.repo.FindByTask(ctx, s.db, tenant, task)
	if err != nil {
		return nil, err
	}
	if price != nil {
		return price, nil
	}
	return s.repo.FindByTask(ctx, s.db, globalTenant, task)
}
