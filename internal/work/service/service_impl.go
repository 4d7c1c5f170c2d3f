package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	pricelistdomain "github.com/mesterwork/mesterwork/internal/pricelist/domain"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	"github.com/mesterwork/mesterwork/internal/work/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	PriceListSvc pricelistdomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	priceListSvc pricelistdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("work.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		priceListSvc: p.PriceListSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateWorkRequest) (domain.Work, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.Work{}, domain.ErrInvalidTenant
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Work{}, domain.ErrInvalidTitle
	}

	now := time.Now().UTC()
	work := domain.Work{
		ID:          s.genID.Generate(),
		TenantEmail: tenant,
		Title:       title,
		Status:      domain.WorkStatusPending,
		Location:    strings.TrimSpace(req.Location),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &work); err != nil {
		return domain.Work{}, err
	}
	return work, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Work, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.Work{}, domain.ErrInvalidTenant
	}

	work, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.Work{}, err
	}
	if work == nil {
		return domain.Work{}, domain.ErrWorkNotFound
	}
	return *work, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Work, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	items, err := s.repo.List(ctx, s.db, tenant)
	if err != nil {
		return nil, err
	}

	works := make([]domain.Work, 0, len(items))
	for _, item := range items {
		if item != nil {
			works = append(works, *item)
		}
	}
	return works, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateWorkRequest) (domain.Work, error) {
	work, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Work{}, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Work{}, domain.ErrInvalidTitle
		}
		work.Title = title
	}
	if req.Location != nil {
		work.Location = strings.TrimSpace(*req.Location)
	}
	if req.Status != nil {
		work.Status = *req.Status
	}
	if req.StartDate != nil {
		work.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		work.EndDate = req.EndDate
	}
	work.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &work); err != nil {
		return domain.Work{}, err
	}
	return work, nil
}

// Archive soft-deletes a work. Works are never removed from the database.
func (s *Service) Archive(ctx context.Context, id snowflake.ID) error {
	work, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	work.IsActive = false
	work.Status = domain.WorkStatusCancelled
	work.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, &work)
}

func (s *Service) CreateItem(ctx context.Context, req domain.CreateWorkItemRequest) (domain.WorkItem, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkItem{}, domain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.WorkItem{}, domain.ErrInvalidName
	}
	if req.Quantity < 0 {
		return domain.WorkItem{}, domain.ErrInvalidQuantity
	}

	work, err := s.repo.FindByID(ctx, s.db, tenant, req.WorkID)
	if err != nil {
		return domain.WorkItem{}, err
	}
	if work == nil {
		return domain.WorkItem{}, domain.ErrWorkNotFound
	}

	unitPrice, materialUnitPrice := s.resolvePrices(ctx, name, req.UnitPrice, req.MaterialUnitPrice)

	now := time.Now().UTC()
	item := domain.WorkItem{
		ID:                s.genID.Generate(),
		WorkID:            req.WorkID,
		TenantEmail:       tenant,
		Name:              name,
		Quantity:          req.Quantity,
		Unit:              strings.TrimSpace(req.Unit),
		UnitPrice:         unitPrice,
		MaterialUnitPrice: materialUnitPrice,
		Description:       strings.TrimSpace(req.Description),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	recalcItemTotals(&item)

	if len(req.RequiredProfessionals) > 0 {
		if blob, err := json.Marshal(req.RequiredProfessionals); err == nil {
			item.RequiredProfessionals = datatypes.JSON(blob)
		}
	}

	if err := s.repo.InsertItem(ctx, s.db, &item); err != nil {
		return domain.WorkItem{}, err
	}

	if err := s.recalcWorkTotals(ctx, tenant, work); err != nil {
		s.log.Warn("work totals recalc failed", zap.Error(err), zap.Int64("work_id", int64(work.ID)))
	}
	return item, nil
}

// resolvePrices falls back to the tenant price list, then the global one,
// for prices the request leaves unset.
func (s *Service) resolvePrices(ctx context.Context, task string, unitPrice, materialUnitPrice *float64) (float64, float64) {
	var labor, material float64
	if unitPrice != nil {
		labor = *unitPrice
	}
	if materialUnitPrice != nil {
		material = *materialUnitPrice
	}
	if unitPrice != nil && materialUnitPrice != nil {
		return labor, material
	}

	entry, err := s.priceListSvc.Lookup(ctx, task)
	if err != nil || entry == nil {
		return labor, material
	}
	if unitPrice == nil {
		labor = entry.LaborCost
	}
	if materialUnitPrice == nil {
		material = entry.MaterialCost
	}
	return labor, material
}

func (s *Service) GetItemByID(ctx context.Context, id snowflake.ID) (domain.WorkItem, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkItem{}, domain.ErrInvalidTenant
	}

	item, err := s.repo.FindItemByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.WorkItem{}, err
	}
	if item == nil {
		return domain.WorkItem{}, domain.ErrItemNotFound
	}
	return *item, nil
}

func (s *Service) ListItems(ctx context.Context, workID snowflake.ID) ([]domain.WorkItem, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	rows, err := s.repo.ListItems(ctx, s.db, tenant, workID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.WorkItem, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			items = append(items, *row)
		}
	}
	return items, nil
}

func (s *Service) UpdateItem(ctx context.Context, id snowflake.ID, req domain.UpdateWorkItemRequest) (domain.WorkItem, error) {
	item, err := s.GetItemByID(ctx, id)
	if err != nil {
		return domain.WorkItem{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.WorkItem{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return domain.WorkItem{}, domain.ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		item.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.MaterialUnitPrice != nil {
		item.MaterialUnitPrice = *req.MaterialUnitPrice
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	recalcItemTotals(&item)
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateItem(ctx, s.db, &item); err != nil {
		return domain.WorkItem{}, err
	}

	tenant, _ := tenantctx.Email(ctx)
	if work, err := s.repo.FindByID(ctx, s.db, tenant, item.WorkID); err == nil && work != nil {
		if err := s.recalcWorkTotals(ctx, tenant, work); err != nil {
			s.log.Warn("work totals recalc failed", zap.Error(err), zap.Int64("work_id", int64(work.ID)))
		}
	}
	return item, nil
}

func (s *Service) UpdateItemCompletion(ctx context.Context, id snowflake.ID, completedQuantity float64) (domain.WorkItem, error) {
	if completedQuantity < 0 {
		return domain.WorkItem{}, domain.ErrInvalidQuantity
	}

	item, err := s.GetItemByID(ctx, id)
	if err != nil {
		return domain.WorkItem{}, err
	}

	item.CompletedQuantity = completedQuantity
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateItem(ctx, s.db, &item); err != nil {
		return domain.WorkItem{}, err
	}
	return item, nil
}

func (s *Service) SetItemInProgress(ctx context.Context, id snowflake.ID, inProgress bool) error {
	item, err := s.GetItemByID(ctx, id)
	if err != nil {
		return err
	}

	item.InProgress = inProgress
	item.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateItem(ctx, s.db, &item)
}

func (s *Service) ApplyBilled(ctx context.Context, deltas []domain.BilledDelta) error {
	return s.applyDeltas(ctx, deltas, func(item *domain.WorkItem, qty float64) {
		item.BilledQuantity += qty
	})
}

func (s *Service) ApplyPaid(ctx context.Context, deltas []domain.BilledDelta) error {
	return s.applyDeltas(ctx, deltas, func(item *domain.WorkItem, qty float64) {
		item.PaidQuantity += qty
	})
}

func (s *Service) applyDeltas(ctx context.Context, deltas []domain.BilledDelta, apply func(*domain.WorkItem, float64)) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}

	for _, delta := range deltas {
		if delta.Quantity <= 0 {
			continue
		}
		item, err := s.repo.FindItemByID(ctx, s.db, tenant, delta.WorkItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		apply(item, delta.Quantity)
		item.UpdatedAt = time.Now().UTC()
		if err := s.repo.UpdateItem(ctx, s.db, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) SaveItemMarketPrice(ctx context.Context, id snowflake.ID, blob []byte, checkedAt time.Time) error {
	item, err := s.GetItemByID(ctx, id)
	if err != nil {
		return err
	}

	item.CurrentMarketPrice = datatypes.JSON(blob)
	checked := checkedAt.UTC()
	item.LastPriceCheck = &checked
	item.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateItem(ctx, s.db, &item)
}

func recalcItemTotals(item *domain.WorkItem) {
	item.WorkTotal = item.Quantity * item.UnitPrice
	item.MaterialTotal = item.Quantity * item.MaterialUnitPrice
	item.TotalPrice = item.WorkTotal + item.MaterialTotal
}

func (s *Service) recalcWorkTotals(ctx context.Context, tenant string, work *domain.Work) error {
	items, err := s.repo.ListItems(ctx, s.db, tenant, work.ID)
	if err != nil {
		return err
	}

	var labor, material float64
	for _, item := range items {
		labor += item.WorkTotal
		material += item.MaterialTotal
	}
	work.TotalLaborCost = labor
	work.TotalMaterialCost = material
	work.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, work)
}
