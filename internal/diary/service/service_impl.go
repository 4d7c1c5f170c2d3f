package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/clock"
	"github.com/mesterwork/mesterwork/internal/diary/domain"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
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
	Works workdomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	works workdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("diary.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		works: p.Works,
	}
}

// itemPlan is one phase of a submission with its resolved progress delta.
type itemPlan struct {
	item  workdomain.WorkItem
	delta float64
	share float64
}

func (s *Service) SubmitGroup(ctx context.Context, req domain.SubmitGroupRequest) (domain.GroupResult, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.GroupResult{}, domain.ErrInvalidTenant
	}
	if len(req.Items) == 0 || len(req.Workers) == 0 {
		return domain.GroupResult{}, domain.ErrEmptySelection
	}

	if _, err := s.works.GetByID(ctx, req.WorkID); err != nil {
		if err == workdomain.ErrWorkNotFound {
			return domain.GroupResult{}, domain.ErrWorkNotFound
		}
		return domain.GroupResult{}, err
	}

	plans := make([]itemPlan, 0, len(req.Items))
	totalDelta := 0.0
	for _, input := range req.Items {
		item, err := s.works.GetItemByID(ctx, input.WorkItemID)
		if err != nil {
			return domain.GroupResult{}, err
		}
		delta := input.CompletedQuantity - item.CompletedQuantity
		if delta < 0 {
			delta = 0
		}
		plans = append(plans, itemPlan{item: item, delta: delta})
		totalDelta += delta
	}

	// Hours are split across phases by progress share; an all-zero day
	// splits them evenly instead.
	for i := range plans {
		if totalDelta > 0 {
			plans[i].share = plans[i].delta / totalDelta
		} else {
			plans[i].share = 1 / float64(len(plans))
		}
	}

	date := req.Date
	if date.IsZero() {
		date = s.clock.Now()
	}
	groupNo := s.clock.Now().Unix()

	var images datatypes.JSON
	if len(req.Images) > 0 {
		blob, err := json.Marshal(req.Images)
		if err != nil {
			return domain.GroupResult{}, err
		}
		images = datatypes.JSON(blob)
	}

	rows := make([]*domain.WorkDiaryItem, 0, len(plans)*len(req.Workers))
	for _, plan := range plans {
		diary, err := s.ensureDiary(ctx, tenant, req.WorkID, plan.item.ID, date)
		if err != nil {
			return domain.GroupResult{}, err
		}
		for _, worker := range req.Workers {
			row := &domain.WorkDiaryItem{
				ID:                  s.genID.Generate(),
				DiaryID:             diary.ID,
				WorkID:              req.WorkID,
				WorkItemID:          plan.item.ID,
				WorkforceRegistryID: worker.RegistryID,
				WorkItemWorkerID:    worker.AssignmentID,
				TenantEmail:         tenant,
				Name:                worker.Name,
				Email:               worker.Email,
				Date:                date,
				Quantity:            plan.delta,
				Unit:                plan.item.Unit,
				WorkHours:           worker.Hours * plan.share,
				Images:              images,
				Notes:               req.Notes,
				GroupNo:             groupNo,
			}
			rows = append(rows, row)
		}
	}

	// Rows and completion updates are issued concurrently; failures are
	// counted and reported, nothing is rolled back.
	var failed atomic.Int64
	var created atomic.Int64
	var wg sync.WaitGroup

	for _, row := range rows {
		wg.Add(1)
		go func(row *domain.WorkDiaryItem) {
			defer wg.Done()
			if err := s.repo.InsertItem(ctx, s.db, row); err != nil {
				s.log.Warn("diary row insert failed",
					zap.Int64("work_item_id", row.WorkItemID.Int64()),
					zap.Error(err),
				)
				failed.Add(1)
				return
			}
			created.Add(1)
		}(row)
	}
	for _, plan := range plans {
		if plan.delta == 0 {
			continue
		}
		wg.Add(1)
		go func(plan itemPlan) {
			defer wg.Done()
			newCompleted := plan.item.CompletedQuantity + plan.delta
			if _, err := s.works.UpdateItemCompletion(ctx, plan.item.ID, newCompleted); err != nil {
				s.log.Warn("completion update failed",
					zap.Int64("work_item_id", plan.item.ID.Int64()),
					zap.Error(err),
				)
				failed.Add(1)
			}
		}(plan)
	}
	wg.Wait()

	return domain.GroupResult{
		GroupNo: groupNo,
		Created: int(created.Load()),
		Failed:  int(failed.Load()),
	}, nil
}

func (s *Service) ensureDiary(ctx context.Context, tenant string, workID, workItemID snowflake.ID, date time.Time) (*domain.WorkDiary, error) {
	diary, err := s.repo.FindDiary(ctx, s.db, tenant, workID, workItemID)
	if err != nil {
		return nil, err
	}
	if diary != nil {
		return diary, nil
	}

	now := time.Now().UTC()
	diary = &domain.WorkDiary{
		ID:          s.genID.Generate(),
		WorkID:      workID,
		WorkItemID:  workItemID,
		TenantEmail: tenant,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.InsertDiary(ctx, s.db, diary); err != nil {
		return nil, err
	}
	return diary, nil
}

func (s *Service) ListByWork(ctx context.Context, workID snowflake.ID) ([]domain.WorkDiaryItem, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}
	rows, err := s.repo.ListByWork(ctx, s.db, tenant, workID)
	if err != nil {
		return nil, err
	}
	return deref(rows), nil
}

func (s *Service) ListGroup(ctx context.Context, groupNo int64) ([]domain.WorkDiaryItem, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}
	rows, err := s.repo.ListGroup(ctx, s.db, tenant, groupNo)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrGroupNotFound
	}
	return deref(rows), nil
}

func (s *Service) SetGroupApproval(ctx context.Context, groupNo int64, accepted bool) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}
	rows, err := s.repo.ListGroup(ctx, s.db, tenant, groupNo)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.ErrGroupNotFound
	}
	return s.repo.SetGroupAccepted(ctx, s.db, tenant, groupNo, accepted)
}

func (s *Service) GroupApprovalStatus(ctx context.Context, groupNo int64) (domain.ApprovalStatus, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return "", domain.ErrInvalidTenant
	}
	rows, err := s.repo.ListGroup(ctx, s.db, tenant, groupNo)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", domain.ErrGroupNotFound
	}

	accepted := 0
	for _, row := range rows {
		if row != nil && row.Accepted {
			accepted++
		}
	}
	switch {
	case accepted == len(rows):
		return domain.ApprovalAll, nil
	case accepted > 0:
		return domain.ApprovalSome, nil
	default:
		return domain.ApprovalNone, nil
	}
}

func (s *Service) DeleteGroup(ctx context.Context, groupNo int64) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}
	rows, err := s.repo.ListGroup(ctx, s.db, tenant, groupNo)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.ErrGroupNotFound
	}
	return s.repo.DeleteGroup(ctx, s.db, tenant, groupNo)
}

func (s *Service) UpdateItem(ctx context.Context, id snowflake.ID, req domain.UpdateDiaryItemRequest) (domain.WorkDiaryItem, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkDiaryItem{}, domain.ErrInvalidTenant
	}

	item, err := s.repo.FindItemByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.WorkDiaryItem{}, err
	}
	if item == nil {
		return domain.WorkDiaryItem{}, domain.ErrItemNotFound
	}

	if req.Date != nil {
		item.Date = *req.Date
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.WorkHours != nil {
		item.WorkHours = *req.WorkHours
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.Accepted != nil {
		item.Accepted = *req.Accepted
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateItem(ctx, s.db, item); err != nil {
		return domain.WorkDiaryItem{}, err
	}
	return *item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id snowflake.ID) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}

	item, err := s.repo.FindItemByID(ctx, s.db, tenant, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrItemNotFound
	}
	return s.repo.DeleteItem(ctx, s.db, tenant, id)
}

func deref(rows []*domain.WorkDiaryItem) []domain.WorkDiaryItem {
	items := make([]domain.WorkDiaryItem, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			items = append(items, *row)
		}
	}
	return items
}
