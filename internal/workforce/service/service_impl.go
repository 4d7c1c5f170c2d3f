package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	registrydomain "github.com/mesterwork/mesterwork/internal/registry/domain"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	"github.com/mesterwork/mesterwork/internal/workforce/domain"
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
	Repo     domain.Repository
	Registry registrydomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	registry registrydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("workforce.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		registry: p.Registry,
	}
}

func (s *Service) Summary(ctx context.Context, workID snowflake.ID) (domain.WorkforceSummary, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkforceSummary{}, domain.ErrInvalidTenant
	}

	work, err := s.repo.FindWork(ctx, s.db, tenant, workID)
	if err != nil {
		return domain.WorkforceSummary{}, err
	}
	if work == nil {
		return domain.WorkforceSummary{}, domain.ErrWorkNotFound
	}

	items, err := s.repo.ListWorkItems(ctx, s.db, tenant, workID)
	if err != nil {
		return domain.WorkforceSummary{}, err
	}
	assignments, err := s.repo.ListAssignmentsByWork(ctx, s.db, tenant, workID)
	if err != nil {
		return domain.WorkforceSummary{}, err
	}

	required := requiredByRole(items)
	assigned := assignedByRole(assignments)

	roles := make(map[string]struct{})
	for role := range required {
		roles[role] = struct{}{}
	}
	for role := range assigned {
		roles[role] = struct{}{}
	}

	summary := domain.WorkforceSummary{
		MaxRequiredWorkers: work.MaxRequiredWorkers,
	}
	names := make([]string, 0, len(roles))
	for role := range roles {
		names = append(names, role)
	}
	sort.Strings(names)

	for _, role := range names {
		rs := domain.RoleSummary{
			Role:     role,
			Required: required[role],
			Assigned: assigned[role],
		}
		// A role can be staffed beyond its plan; the actual headcount wins.
		if len(rs.Assigned) > rs.Required {
			rs.Required = len(rs.Assigned)
		}
		summary.Roles = append(summary.Roles, rs)
		summary.TotalRequired += rs.Required
		summary.TotalAssigned += len(rs.Assigned)
	}
	if summary.MaxRequiredWorkers > summary.TotalRequired {
		summary.TotalRequired = summary.MaxRequiredWorkers
	}
	return summary, nil
}

// requiredByRole sums the professional plan per trade. Phases currently in
// progress describe today's need best, so when any exist only those count.
func requiredByRole(items []*workdomain.WorkItem) map[string]int {
	selected := items
	var inProgress []*workdomain.WorkItem
	for _, item := range items {
		if item != nil && item.InProgress {
			inProgress = append(inProgress, item)
		}
	}
	if len(inProgress) > 0 {
		selected = inProgress
	}

	required := make(map[string]int)
	for _, item := range selected {
		if item == nil || len(item.RequiredProfessionals) == 0 {
			continue
		}
		var professionals []workdomain.Professional
		if err := json.Unmarshal(item.RequiredProfessionals, &professionals); err != nil {
			continue
		}
		for _, p := range professionals {
			role := strings.TrimSpace(p.Type)
			if role == "" || p.Quantity <= 0 {
				continue
			}
			required[role] += p.Quantity
		}
	}
	return required
}

// assignedByRole groups assignments per role, counting each person once
// even when they appear on several phases.
func assignedByRole(assignments []*domain.WorkItemWorker) map[string][]domain.WorkItemWorker {
	type personKey struct {
		registryID snowflake.ID
		name       string
	}
	seen := make(map[personKey]struct{})
	grouped := make(map[string][]domain.WorkItemWorker)
	for _, a := range assignments {
		if a == nil {
			continue
		}
		key := personKey{registryID: a.WorkforceRegistryID, name: a.Name}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		grouped[a.Role] = append(grouped[a.Role], *a)
	}
	return grouped
}

func (s *Service) ListAssignments(ctx context.Context, workID snowflake.ID) ([]domain.WorkItemWorker, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	rows, err := s.repo.ListAssignmentsByWork(ctx, s.db, tenant, workID)
	if err != nil {
		return nil, err
	}
	assignments := make([]domain.WorkItemWorker, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			assignments = append(assignments, *row)
		}
	}
	return assignments, nil
}

func (s *Service) AddWorker(ctx context.Context, req domain.AddWorkerRequest) (domain.WorkItemWorker, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkItemWorker{}, domain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.WorkItemWorker{}, domain.ErrInvalidName
	}

	work, err := s.repo.FindWork(ctx, s.db, tenant, req.WorkID)
	if err != nil {
		return domain.WorkItemWorker{}, err
	}
	if work == nil {
		return domain.WorkItemWorker{}, domain.ErrWorkNotFound
	}

	entry, err := s.registry.ResolveOrCreate(ctx, name, req.Email, req.Phone, req.Role)
	if err != nil {
		if err == registrydomain.ErrRestricted {
			return domain.WorkItemWorker{}, domain.ErrWorkerRestricted
		}
		return domain.WorkItemWorker{}, err
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = entry.Role
	}

	var assignment domain.WorkItemWorker
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.ensureSlot(ctx, tx, tenant, req.WorkID, req.WorkItemID, role, entry)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		assignment = domain.WorkItemWorker{
			ID:                  s.genID.Generate(),
			WorkID:              req.WorkID,
			WorkItemID:          req.WorkItemID,
			WorkerID:            slot.ID,
			WorkforceRegistryID: entry.ID,
			TenantEmail:         tenant,
			Name:                entry.Name,
			Email:               strings.TrimSpace(req.Email),
			Phone:               strings.TrimSpace(req.Phone),
			Role:                role,
			Quantity:            1,
			AvatarURL:           entry.AvatarURL,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := s.repo.InsertAssignment(ctx, tx, &assignment); err != nil {
			return err
		}
		return s.refreshWorkHeadcount(ctx, tx, tenant, work)
	})
	if err != nil {
		return domain.WorkItemWorker{}, err
	}

	s.log.Info("worker assigned",
		zap.String("tenant", tenant),
		zap.Int64("work_id", req.WorkID.Int64()),
		zap.Int64("registry_id", entry.ID.Int64()),
	)
	return assignment, nil
}

// ensureSlot finds or creates the profession slot for a role on a work and
// records the person in its members array.
func (s *Service) ensureSlot(ctx context.Context, tx *gorm.DB, tenant string, workID snowflake.ID, workItemID *snowflake.ID, role string, entry registrydomain.WorkforceRegistry) (*domain.Worker, error) {
	slotName := role
	if slotName == "" {
		slotName = "Általános"
	}

	slot, err := s.repo.FindSlotByProfession(ctx, tx, tenant, workID, slotName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if slot == nil {
		slot = &domain.Worker{
			ID:          s.genID.Generate(),
			WorkID:      workID,
			WorkItemID:  workItemID,
			TenantEmail: tenant,
			Name:        slotName,
			Role:        role,
			Quantity:    0,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.InsertSlot(ctx, tx, slot); err != nil {
			return nil, err
		}
	}

	var members []domain.Member
	if len(slot.Members) > 0 {
		if err := json.Unmarshal(slot.Members, &members); err != nil {
			return nil, err
		}
	}
	for _, m := range members {
		if m.WorkforceRegistryID == entry.ID {
			return slot, nil
		}
	}

	member := domain.Member{
		Name:                entry.Name,
		WorkforceRegistryID: entry.ID,
	}
	if entry.Email != nil {
		member.Email = *entry.Email
	}
	if entry.Phone != nil {
		member.Phone = *entry.Phone
	}
	members = append(members, member)

	blob, err := json.Marshal(members)
	if err != nil {
		return nil, err
	}
	slot.Members = datatypes.JSON(blob)
	if len(members) > slot.Quantity {
		slot.Quantity = len(members)
	}
	slot.UpdatedAt = now
	if err := s.repo.UpdateSlot(ctx, tx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *Service) UpdateAssignment(ctx context.Context, id snowflake.ID, req domain.UpdateAssignmentRequest) (domain.WorkItemWorker, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.WorkItemWorker{}, domain.ErrInvalidTenant
	}

	assignment, err := s.repo.FindAssignmentByID(ctx, s.db, tenant, id)
	if err != nil {
		return domain.WorkItemWorker{}, err
	}
	if assignment == nil {
		return domain.WorkItemWorker{}, domain.ErrAssignmentNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.WorkItemWorker{}, domain.ErrInvalidName
		}
		assignment.Name = name
	}
	if req.Email != nil {
		assignment.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		assignment.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		assignment.Role = strings.TrimSpace(*req.Role)
	}
	assignment.UpdatedAt = time.Now().UTC()

	// The person's other assignments follow suit so the same human never
	// shows up under two spellings.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateAssignment(ctx, tx, assignment); err != nil {
			return err
		}
		siblings, err := s.repo.ListAssignmentsByRegistry(ctx, tx, tenant, assignment.WorkforceRegistryID)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling == nil || sibling.ID == assignment.ID {
				continue
			}
			sibling.Name = assignment.Name
			sibling.Email = assignment.Email
			sibling.Phone = assignment.Phone
			sibling.UpdatedAt = assignment.UpdatedAt
			if err := s.repo.UpdateAssignment(ctx, tx, sibling); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.WorkItemWorker{}, err
	}
	return *assignment, nil
}

func (s *Service) RemoveAssignment(ctx context.Context, id snowflake.ID) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}

	assignment, err := s.repo.FindAssignmentByID(ctx, s.db, tenant, id)
	if err != nil {
		return err
	}
	if assignment == nil {
		return domain.ErrAssignmentNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteAssignment(ctx, tx, tenant, assignment.ID); err != nil {
			return err
		}

		// Drop the member from the slot only when this was the person's last
		// assignment on the work.
		remaining, err := s.repo.ListAssignmentsByRegistry(ctx, tx, tenant, assignment.WorkforceRegistryID)
		if err != nil {
			return err
		}
		stillOnWork := false
		for _, r := range remaining {
			if r != nil && r.WorkID == assignment.WorkID {
				stillOnWork = true
				break
			}
		}
		if !stillOnWork {
			if err := s.removeSlotMember(ctx, tx, tenant, assignment.WorkerID, assignment.WorkforceRegistryID); err != nil {
				return err
			}
		}

		work, err := s.repo.FindWork(ctx, tx, tenant, assignment.WorkID)
		if err != nil {
			return err
		}
		if work == nil {
			return nil
		}
		return s.refreshWorkHeadcount(ctx, tx, tenant, work)
	})
}

func (s *Service) removeSlotMember(ctx context.Context, tx *gorm.DB, tenant string, slotID, registryID snowflake.ID) error {
	slot, err := s.repo.FindSlotByID(ctx, tx, tenant, slotID)
	if err != nil {
		return err
	}
	if slot == nil || len(slot.Members) == 0 {
		return nil
	}

	var members []domain.Member
	if err := json.Unmarshal(slot.Members, &members); err != nil {
		return err
	}
	kept := members[:0]
	for _, m := range members {
		if m.WorkforceRegistryID != registryID {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return nil
	}

	blob, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	slot.Members = datatypes.JSON(blob)
	if slot.Quantity > len(kept) {
		slot.Quantity = len(kept)
	}
	slot.UpdatedAt = time.Now().UTC()
	if slot.Quantity == 0 && len(kept) == 0 {
		return s.repo.DeleteSlot(ctx, tx, tenant, slot.ID)
	}
	return s.repo.UpdateSlot(ctx, tx, slot)
}

func (s *Service) SetSlotQuantity(ctx context.Context, slotID snowflake.ID, quantity int) (domain.Worker, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.Worker{}, domain.ErrInvalidTenant
	}
	if quantity < 0 {
		return domain.Worker{}, domain.ErrInvalidQuantity
	}

	slot, err := s.repo.FindSlotByID(ctx, s.db, tenant, slotID)
	if err != nil {
		return domain.Worker{}, err
	}
	if slot == nil {
		return domain.Worker{}, domain.ErrSlotNotFound
	}

	var members []domain.Member
	if len(slot.Members) > 0 {
		if err := json.Unmarshal(slot.Members, &members); err != nil {
			return domain.Worker{}, err
		}
	}
	if quantity < len(members) {
		return domain.Worker{}, domain.ErrSlotBelowAssigned
	}

	slot.Quantity = quantity
	slot.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateSlot(ctx, s.db, slot); err != nil {
		return domain.Worker{}, err
	}
	return *slot, nil
}

func (s *Service) SetMaxRequiredWorkers(ctx context.Context, workID snowflake.ID, max int) error {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}
	if max < 0 {
		return domain.ErrInvalidQuantity
	}

	work, err := s.repo.FindWork(ctx, s.db, tenant, workID)
	if err != nil {
		return err
	}
	if work == nil {
		return domain.ErrWorkNotFound
	}

	assignments, err := s.repo.ListAssignmentsByWork(ctx, s.db, tenant, workID)
	if err != nil {
		return err
	}
	assigned := distinctAssigned(assignments)
	if max < assigned {
		return domain.ErrSlotBelowAssigned
	}

	work.MaxRequiredWorkers = max
	work.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateWorkHeadcount(ctx, s.db, work)
}

func (s *Service) refreshWorkHeadcount(ctx context.Context, tx *gorm.DB, tenant string, work *workdomain.Work) error {
	assignments, err := s.repo.ListAssignmentsByWork(ctx, tx, tenant, work.ID)
	if err != nil {
		return err
	}
	work.TotalWorkers = distinctAssigned(assignments)
	work.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateWorkHeadcount(ctx, tx, work)
}

func distinctAssigned(assignments []*domain.WorkItemWorker) int {
	type personKey struct {
		registryID snowflake.ID
		name       string
	}
	seen := make(map[personKey]struct{})
	for _, a := range assignments {
		if a == nil {
			continue
		}
		seen[personKey{registryID: a.WorkforceRegistryID, name: a.Name}] = struct{}{}
	}
	return len(seen)
}
