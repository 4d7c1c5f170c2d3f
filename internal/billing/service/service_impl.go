package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/billing/domain"
	"github.com/mesterwork/mesterwork/internal/clock"
	"github.com/mesterwork/mesterwork/internal/config"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     domain.Repository
	Works    workdomain.Service
	Renderer domain.Renderer
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cfg      config.Config
	repo     domain.Repository
	works    workdomain.Service
	renderer domain.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("billing.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		cfg:      p.Config,
		repo:     p.Repo,
		works:    p.Works,
		renderer: p.Renderer,
	}
}

func (s *Service) CreateDraft(ctx context.Context, req domain.CreateDraftRequest) (domain.Billing, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.Billing{}, domain.ErrInvalidTenant
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Billing{}, domain.ErrInvalidTitle
	}
	if len(req.WorkItemIDs) == 0 {
		return domain.Billing{}, domain.ErrEmptySelection
	}

	if _, err := s.works.GetByID(ctx, req.WorkID); err != nil {
		return domain.Billing{}, err
	}

	items, total, err := s.snapshotItems(ctx, req.WorkItemIDs)
	if err != nil {
		return domain.Billing{}, err
	}

	blob, err := json.Marshal(items)
	if err != nil {
		return domain.Billing{}, err
	}

	now := time.Now().UTC()
	billing := domain.Billing{
		ID:          s.genID.Generate(),
		WorkID:      req.WorkID,
		TenantEmail: tenant,
		Title:       title,
		Status:      domain.BillingStatusDraft,
		Items:       datatypes.JSON(blob),
		TotalPrice:  total,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &billing); err != nil {
		return domain.Billing{}, err
	}

	s.log.Info("billing draft created",
		zap.String("tenant", tenant),
		zap.Int64("billing_id", billing.ID.Int64()),
		zap.Float64("total", total),
	)
	return billing, nil
}

// snapshotItems freezes the selected work items' billable quantities into
// billing items. Items with nothing left to bill fail the whole request.
func (s *Service) snapshotItems(ctx context.Context, ids []snowflake.ID) ([]domain.BillingItem, float64, error) {
	items := make([]domain.BillingItem, 0, len(ids))
	total := 0.0
	for _, id := range ids {
		item, err := s.works.GetItemByID(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		billable := item.BillableQuantity()
		if billable <= 0 {
			return nil, 0, domain.ErrNothingBillable
		}

		workTotal := billable * item.UnitPrice
		materialTotal := billable * item.MaterialUnitPrice
		snapshot := domain.BillingItem{
			WorkItemID:        item.ID,
			Name:              item.Name,
			Quantity:          billable,
			Unit:              item.Unit,
			UnitPrice:         item.UnitPrice,
			MaterialUnitPrice: item.MaterialUnitPrice,
			WorkTotal:         workTotal,
			MaterialTotal:     materialTotal,
			TotalPrice:        workTotal + materialTotal,
		}
		items = append(items, snapshot)
		total += snapshot.TotalPrice
	}
	return items, total, nil
}

func (s *Service) UpdateDraft(ctx context.Context, id snowflake.ID, req domain.UpdateDraftRequest) (domain.Billing, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.Billing{}, domain.ErrInvalidTenant
	}

	billing, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.Billing{}, err
	}
	if billing == nil {
		return domain.Billing{}, domain.ErrNotFound
	}
	if billing.Status != domain.BillingStatusDraft {
		return domain.Billing{}, domain.ErrNotDraft
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Billing{}, domain.ErrInvalidTitle
		}
		billing.Title = title
	}
	if req.Notes != nil {
		billing.Notes = *req.Notes
	}
	if req.WorkItemIDs != nil {
		if len(req.WorkItemIDs) == 0 {
			return domain.Billing{}, domain.ErrEmptySelection
		}
		items, total, err := s.snapshotItems(ctx, req.WorkItemIDs)
		if err != nil {
			return domain.Billing{}, err
		}
		blob, err := json.Marshal(items)
		if err != nil {
			return domain.Billing{}, err
		}
		billing.Items = datatypes.JSON(blob)
		billing.TotalPrice = total
	}
	billing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, billing); err != nil {
		return domain.Billing{}, err
	}
	return *billing, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Billing, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.Billing{}, domain.ErrInvalidTenant
	}

	billing, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.Billing{}, err
	}
	if billing == nil {
		return domain.Billing{}, domain.ErrNotFound
	}
	return *billing, nil
}

func (s *Service) ListByWork(ctx context.Context, workID snowflake.ID) ([]domain.Billing, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	rows, err := s.repo.ListByWork(ctx, s.db, tenant, workID)
	if err != nil {
		return nil, err
	}
	billings := make([]domain.Billing, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			billings = append(billings, *row)
		}
	}
	return billings, nil
}

func (s *Service) Finalize(ctx context.Context, id snowflake.ID) (domain.Billing, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.Billing{}, domain.ErrInvalidTenant
	}

	billing, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.Billing{}, err
	}
	if billing == nil {
		return domain.Billing{}, domain.ErrNotFound
	}
	if billing.Status != domain.BillingStatusDraft {
		return domain.Billing{}, domain.ErrNotDraft
	}

	items, err := billing.DecodeItems()
	if err != nil {
		return domain.Billing{}, err
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.repo.NextInvoiceSeq(ctx, tx, tenant, now.Year())
		if err != nil {
			return err
		}
		invoiceNumber := fmt.Sprintf("INV-%d-%04d", now.Year(), seq)
		billing.InvoiceNumber = &invoiceNumber
		billing.Status = domain.BillingStatusFinalized
		billing.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, billing)
	})
	if err != nil {
		return domain.Billing{}, err
	}

	if err := s.applyDeltas(ctx, items, s.works.ApplyBilled); err != nil {
		return domain.Billing{}, err
	}

	// The PDF is a byproduct; a render failure must not undo finalization.
	if url, err := s.renderInvoice(ctx, billing, items, now); err != nil {
		s.log.Warn("invoice pdf render failed",
			zap.String("invoice", *billing.InvoiceNumber),
			zap.Error(err),
		)
	} else if url != "" {
		billing.InvoicePDFURL = &url
		if err := s.repo.Update(ctx, s.db, billing); err != nil {
			return domain.Billing{}, err
		}
	}

	s.log.Info("billing finalized",
		zap.String("tenant", tenant),
		zap.String("invoice", *billing.InvoiceNumber),
	)
	return *billing, nil
}

func (s *Service) renderInvoice(ctx context.Context, billing *domain.Billing, items []domain.BillingItem, issuedAt time.Time) (string, error) {
	if s.renderer == nil || billing.InvoiceNumber == nil {
		return "", nil
	}

	work, err := s.works.GetByID(ctx, billing.WorkID)
	if err != nil {
		return "", err
	}

	data := domain.InvoiceData{
		InvoiceNumber: *billing.InvoiceNumber,
		Title:         billing.Title,
		TenantEmail:   billing.TenantEmail,
		WorkTitle:     work.Title,
		IssuedAt:      issuedAt.Format("2006-01-02"),
		Items:         items,
		TotalPrice:    billing.TotalPrice,
	}
	pdf, err := s.renderer.RenderInvoice(ctx, data)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cfg.InvoiceDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s.pdf", *billing.InvoiceNumber)
	path := filepath.Join(s.cfg.InvoiceDir, name)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(path), nil
}

func (s *Service) MarkPaidCash(ctx context.Context, id snowflake.ID) (domain.Billing, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.Billing{}, domain.ErrInvalidTenant
	}

	billing, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.Billing{}, err
	}
	if billing == nil {
		return domain.Billing{}, domain.ErrNotFound
	}
	if billing.Status != domain.BillingStatusDraft {
		return domain.Billing{}, domain.ErrNotDraft
	}

	items, err := billing.DecodeItems()
	if err != nil {
		return domain.Billing{}, err
	}

	billing.Status = domain.BillingStatusPaid
	billing.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, billing); err != nil {
		return domain.Billing{}, err
	}
	if err := s.applyDeltas(ctx, items, s.works.ApplyPaid); err != nil {
		return domain.Billing{}, err
	}

	s.log.Info("billing settled in cash",
		zap.String("tenant", tenant),
		zap.Int64("billing_id", billing.ID.Int64()),
	)
	return *billing, nil
}

func (s *Service) applyDeltas(ctx context.Context, items []domain.BillingItem, apply func(context.Context, []workdomain.BilledDelta) error) error {
	deltas := make([]workdomain.BilledDelta, 0, len(items))
	for _, item := range items {
		deltas = append(deltas, workdomain.BilledDelta{
			WorkItemID: item.WorkItemID,
			Quantity:   item.Quantity,
		})
	}
	return apply(ctx, deltas)
}

func (s *Service) DeleteDraft(ctx context.Context, id snowflake.ID) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}

	billing, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return err
	}
	if billing == nil {
		return domain.ErrNotFound
	}
	if billing.Status != domain.BillingStatusDraft {
		return domain.ErrNotDraft
	}
	return s.repo.Delete(ctx, s.db, tenant, id)
}
