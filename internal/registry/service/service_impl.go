package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/registry/domain"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	workforcedomain "github.com/mesterwork/mesterwork/internal/workforce/domain"
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
		log:   p.Log.Named("registry.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.WorkforceRegistry, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	rows, err := s.repo.List(ctx, s.db, tenant)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.WorkforceRegistry, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			entries = append(entries, *row)
		}
	}
	return entries, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.WorkforceRegistry, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkforceRegistry{}, domain.ErrInvalidTenant
	}

	entry, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.WorkforceRegistry{}, err
	}
	if entry == nil {
		return domain.WorkforceRegistry{}, domain.ErrNotFound
	}
	return *entry, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateEntryRequest) (domain.WorkforceRegistry, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkforceRegistry{}, domain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.WorkforceRegistry{}, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByName(ctx, s.db, tenant, name)
	if err != nil {
		return domain.WorkforceRegistry{}, err
	}
	if existing != nil {
		return domain.WorkforceRegistry{}, domain.ErrDuplicateName
	}

	now := time.Now().UTC()
	entry := domain.WorkforceRegistry{
		ID:          s.genID.Generate(),
		TenantEmail: tenant,
		Name:        name,
		Role:        strings.TrimSpace(req.Role),
		Email:       req.Email,
		Phone:       req.Phone,
		HiredDate:   req.HiredDate,
		IsActive:    true,
		Notes:       req.Notes,
		DailyRate:   req.DailyRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.WorkforceRegistry{}, err
	}

	s.log.Info("registry entry created",
		zap.String("tenant", tenant),
		zap.Int64("id", entry.ID.Int64()),
	)
	return entry, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateEntryRequest) (domain.WorkforceRegistry, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkforceRegistry{}, domain.ErrInvalidTenant
	}

	entry, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.WorkforceRegistry{}, err
	}
	if entry == nil {
		return domain.WorkforceRegistry{}, domain.ErrNotFound
	}

	oldName := entry.Name
	assignmentFields := map[string]interface{}{}
	diaryFields := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.WorkforceRegistry{}, domain.ErrInvalidName
		}
		if name != entry.Name {
			duplicate, err := s.repo.FindByName(ctx, s.db, tenant, name)
			if err != nil {
				return domain.WorkforceRegistry{}, err
			}
			if duplicate != nil && duplicate.ID != entry.ID {
				return domain.WorkforceRegistry{}, domain.ErrDuplicateName
			}
			entry.Name = name
			assignmentFields["name"] = name
			diaryFields["name"] = name
		}
	}
	if req.Role != nil {
		entry.Role = strings.TrimSpace(*req.Role)
		assignmentFields["role"] = entry.Role
	}
	if req.Email != nil {
		entry.Email = req.Email
		assignmentFields["email"] = *req.Email
		diaryFields["email"] = *req.Email
	}
	if req.Phone != nil {
		entry.Phone = req.Phone
		assignmentFields["phone"] = *req.Phone
	}
	if req.HiredDate != nil {
		entry.HiredDate = req.HiredDate
	}
	if req.LeftDate != nil {
		entry.LeftDate = req.LeftDate
	}
	if req.Notes != nil {
		entry.Notes = req.Notes
	}
	if req.AvatarURL != nil {
		entry.AvatarURL = req.AvatarURL
	}
	if req.DailyRate != nil {
		entry.DailyRate = req.DailyRate
	}
	entry.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, entry); err != nil {
			return err
		}
		if len(assignmentFields) > 0 {
			if err := s.repo.PropagateToAssignments(ctx, tx, tenant, entry.ID, assignmentFields); err != nil {
				return err
			}
		}
		if len(diaryFields) > 0 {
			if err := s.repo.PropagateToDiaryRows(ctx, tx, tenant, entry.ID, oldName, diaryFields); err != nil {
				return err
			}
		}
		if newName, ok := assignmentFields["name"].(string); ok {
			if err := s.renameSlotMember(ctx, tx, tenant, entry.ID, newName); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.WorkforceRegistry{}, err
	}
	return *entry, nil
}

func (s *Service) SetActive(ctx context.Context, id snowflake.ID, active bool) error {
	return s.setFlag(ctx, id, func(entry *domain.WorkforceRegistry) {
		entry.IsActive = active
	})
}

func (s *Service) SetRestricted(ctx context.Context, id snowflake.ID, restricted bool) error {
	return s.setFlag(ctx, id, func(entry *domain.WorkforceRegistry) {
		entry.IsRestricted = restricted
	})
}

func (s *Service) setFlag(ctx context.Context, id snowflake.ID, apply func(*domain.WorkforceRegistry)) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}

	entry, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrNotFound
	}

	apply(entry)
	entry.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, entry)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) (domain.DeleteResult, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.DeleteResult{}, domain.ErrInvalidTenant
	}

	entry, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	if entry == nil {
		return domain.DeleteResult{}, domain.ErrNotFound
	}

	assignments, err := s.repo.ListAssignments(ctx, s.db, tenant, entry.ID)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	diaryCount, err := s.repo.CountDiaryRows(ctx, s.db, tenant, entry.ID, entry.Name)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	if len(assignments) > 0 || diaryCount > 0 {
		return domain.DeleteResult{
			NeedsCleanup: true,
			Assignments:  assignments,
			DiaryCount:   diaryCount,
		}, nil
	}

	if err := s.repo.Delete(ctx, s.db, tenant, entry.ID); err != nil {
		return domain.DeleteResult{}, err
	}
	return domain.DeleteResult{Deleted: true}, nil
}

func (s *Service) CleanupAndDelete(ctx context.Context, id snowflake.ID) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}

	entry, err := s.repo.FindByID(ctx, s.db, tenant, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return domain.ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteDiaryRows(ctx, tx, tenant, entry.ID, entry.Name); err != nil {
			return err
		}
		if err := s.repo.DeleteAssignments(ctx, tx, tenant, entry.ID); err != nil {
			return err
		}
		if err := s.pruneSlotMember(ctx, tx, tenant, entry.ID, entry.Name); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, tenant, entry.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("registry entry cleaned up and deleted",
		zap.String("tenant", tenant),
		zap.Int64("id", entry.ID.Int64()),
	)
	return nil
}

func (s *Service) ResolveOrCreate(ctx context.Context, name, email, phone, role string) (domain.WorkforceRegistry, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkforceRegistry{}, domain.ErrInvalidTenant
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.WorkforceRegistry{}, domain.ErrInvalidName
	}

	entry, err := s.repo.FindByName(ctx, s.db, tenant, name)
	if err != nil {
		return domain.WorkforceRegistry{}, err
	}
	if entry != nil {
		if entry.IsRestricted {
			return domain.WorkforceRegistry{}, domain.ErrRestricted
		}
		return *entry, nil
	}

	now := time.Now().UTC()
	created := domain.WorkforceRegistry{
		ID:          s.genID.Generate(),
		TenantEmail: tenant,
		Name:        name,
		Role:        strings.TrimSpace(role),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if email = strings.TrimSpace(email); email != "" {
		created.Email = &email
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		created.Phone = &phone
	}
	if err := s.repo.Insert(ctx, s.db, &created); err != nil {
		return domain.WorkforceRegistry{}, err
	}
	return created, nil
}

// pruneSlotMember drops the person from every slot's members array,
// shrinking the slot quantity alongside.
func (s *Service) pruneSlotMember(ctx context.Context, tx *gorm.DB, tenant string, registryID snowflake.ID, name string) error {
	return s.rewriteSlotMembers(ctx, tx, tenant, func(members []workforcedomain.Member) ([]workforcedomain.Member, bool) {
		kept := members[:0]
		changed := false
		for _, m := range members {
			if m.WorkforceRegistryID == registryID || m.Name == name {
				changed = true
				continue
			}
			kept = append(kept, m)
		}
		return kept, changed
	})
}

func (s *Service) renameSlotMember(ctx context.Context, tx *gorm.DB, tenant string, registryID snowflake.ID, newName string) error {
	return s.rewriteSlotMembers(ctx, tx, tenant, func(members []workforcedomain.Member) ([]workforcedomain.Member, bool) {
		changed := false
		for i := range members {
			if members[i].WorkforceRegistryID == registryID {
				members[i].Name = newName
				changed = true
			}
		}
		return members, changed
	})
}

func (s *Service) rewriteSlotMembers(ctx context.Context, tx *gorm.DB, tenant string, rewrite func([]workforcedomain.Member) ([]workforcedomain.Member, bool)) error {
	slots, err := s.repo.ListSlots(ctx, tx, tenant)
	if err != nil {
		return err
	}

	for _, slot := range slots {
		if slot == nil || len(slot.Members) == 0 {
			continue
		}
		var members []workforcedomain.Member
		if err := json.Unmarshal(slot.Members, &members); err != nil {
			s.log.Warn("skipping slot with malformed members",
				zap.Int64("slot_id", slot.ID.Int64()),
				zap.Error(err),
			)
			continue
		}

		rewritten, changed := rewrite(members)
		if !changed {
			continue
		}

		blob, err := json.Marshal(rewritten)
		if err != nil {
			return err
		}
		slot.Members = datatypes.JSON(blob)
		if len(rewritten) < slot.Quantity {
			slot.Quantity = len(rewritten)
		}
		slot.UpdatedAt = time.Now().UTC()
		if err := s.repo.UpdateSlotMembers(ctx, tx, slot); err != nil {
			return err
		}
	}
	return nil
}
