package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/clock"
	"github.com/mesterwork/mesterwork/internal/marketprice/domain"
	"github.com/mesterwork/mesterwork/internal/observability"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// stalenessWindow is how long a stored market price stays fresh.
	stalenessWindow = 72 * time.Hour

	// batchLimit caps how many items one tenant batch may check.
	batchLimit = 50

	itemDelay   = 1 * time.Second
	tenantDelay = 2 * time.Second
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Works    workdomain.Service
	Searcher domain.Searcher
	Selector domain.Selector
	Metrics  *observability.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	works    workdomain.Service
	searcher domain.Searcher
	selector domain.Selector
	metrics  *observability.Metrics

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("marketprice.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		works:    p.Works,
		searcher: p.Searcher,
		selector: p.Selector,
		metrics:  p.Metrics,
		sleep:    time.Sleep,
	}
}

func (s *Service) CheckWorkItem(ctx context.Context, workItemID snowflake.ID, forceRefresh bool) (domain.CheckResult, error) {
	tenant, ok := tenantctx.Email(ctx)
	if !ok {
		return domain.CheckResult{}, domain.ErrInvalidTenant
	}

	item, err := s.repo.FindItem(ctx, s.db, tenant, workItemID)
	if err != nil {
		return domain.CheckResult{}, err
	}
	if item == nil {
		return domain.CheckResult{}, domain.ErrItemNotFound
	}

	now := s.clock.Now()
	if !forceRefresh && item.LastPriceCheck != nil && now.Sub(*item.LastPriceCheck) < stalenessWindow {
		result := domain.CheckResult{
			Status:  domain.CheckStatusFresh,
			Message: domain.MsgFresh,
		}
		if len(item.CurrentMarketPrice) > 0 {
			var stored domain.MarketPrice
			if err := json.Unmarshal(item.CurrentMarketPrice, &stored); err == nil {
				result.MarketPrice = &stored
			}
		}
		return result, nil
	}

	return s.refresh(ctx, item, now)
}

func (s *Service) refresh(ctx context.Context, item *workdomain.WorkItem, now time.Time) (domain.CheckResult, error) {
	results, err := s.searcher.Search(ctx, item.Name+" ár vásárlás")
	if err != nil {
		return domain.CheckResult{}, err
	}

	var offer *domain.Offer
	if len(results) > 0 {
		offer, err = s.selector.SelectBestOffer(ctx, item.Name, results)
		if err != nil {
			return domain.CheckResult{}, err
		}
	}

	price := domain.MarketPrice{CheckedAt: now}
	status := domain.CheckStatusUpdated
	message := domain.MsgUpdated
	if offer == nil {
		// No usable offer is a terminal outcome, not an error: a
		// placeholder is stored so the item does not stay stale forever.
		price.BestPrice = item.MaterialUnitPrice
		price.Supplier = domain.PlaceholderSupplier
		price.ProductName = domain.PlaceholderProduct
		status = domain.CheckStatusNoOffer
		message = domain.MsgNoOffer
	} else {
		price.BestPrice = offer.Price
		price.Supplier = offer.Supplier
		price.ProductName = offer.ProductName
		price.URL = offer.URL
		if saving := item.MaterialUnitPrice - offer.Price; saving > 0 {
			price.Savings = saving
		}
	}

	blob, err := json.Marshal(price)
	if err != nil {
		return domain.CheckResult{}, err
	}
	if err := s.works.SaveItemMarketPrice(ctx, item.ID, blob, now); err != nil {
		return domain.CheckResult{}, err
	}

	s.log.Info("market price checked",
		zap.Int64("work_item_id", item.ID.Int64()),
		zap.String("status", string(status)),
		zap.Float64("best_price", price.BestPrice),
	)
	if s.metrics != nil {
		s.metrics.IncPriceCheck(string(status))
	}
	return domain.CheckResult{
		Status:      status,
		Message:     message,
		MarketPrice: &price,
	}, nil
}

func (s *Service) RunTenantBatch(ctx context.Context, tenantEmail string) (domain.BatchResult, error) {
	if tenantEmail == "" {
		return domain.BatchResult{}, domain.ErrInvalidTenant
	}
	ctx = tenantctx.WithTenant(ctx, tenantctx.Tenant{Email: tenantEmail})

	cutoff := s.clock.Now().Add(-stalenessWindow)
	items, err := s.repo.StaleItems(ctx, s.db, tenantEmail, cutoff, batchLimit)
	if err != nil {
		return domain.BatchResult{}, err
	}

	result := domain.BatchResult{TenantEmail: tenantEmail}
	for i, item := range items {
		if item == nil {
			continue
		}
		if i > 0 {
			s.sleep(itemDelay)
		}
		result.Checked++

		check, err := s.refresh(ctx, item, s.clock.Now())
		if err != nil {
			s.log.Warn("batch price check failed",
				zap.String("tenant", tenantEmail),
				zap.Int64("work_item_id", item.ID.Int64()),
				zap.Error(err),
			)
			result.Failed++
			continue
		}
		switch check.Status {
		case domain.CheckStatusNoOffer:
			result.NoOffer++
		default:
			result.Updated++
		}
	}
	return result, nil
}

func (s *Service) RunAllTenants(ctx context.Context) (domain.SweepResult, error) {
	tenants, err := s.repo.ActiveTenants(ctx, s.db)
	if err != nil {
		return domain.SweepResult{}, err
	}

	sweep := domain.SweepResult{}
	for i, tenant := range tenants {
		if i > 0 {
			s.sleep(tenantDelay)
		}
		batch, err := s.RunTenantBatch(ctx, tenant)
		if err != nil {
			s.log.Warn("tenant sweep failed",
				zap.String("tenant", tenant),
				zap.Error(err),
			)
			continue
		}
		sweep.Tenants = append(sweep.Tenants, batch)
	}
	return sweep, nil
}
