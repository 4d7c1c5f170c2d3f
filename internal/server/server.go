package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	billingdomain "github.com/mesterwork/mesterwork/internal/billing/domain"
	"github.com/mesterwork/mesterwork/internal/config"
	diarydomain "github.com/mesterwork/mesterwork/internal/diary/domain"
	marketpricedomain "github.com/mesterwork/mesterwork/internal/marketprice/domain"
	"github.com/mesterwork/mesterwork/internal/observability"
	pricelistdomain "github.com/mesterwork/mesterwork/internal/pricelist/domain"
	registrydomain "github.com/mesterwork/mesterwork/internal/registry/domain"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	workforcedomain "github.com/mesterwork/mesterwork/internal/workforce/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(metrics *observability.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if metrics != nil {
		r.Use(metrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(metrics *observability.Metrics) *gin.Engine {
	return NewEngine(metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	genID  *snowflake.Node

	workSvc        workdomain.Service
	workforceSvc   workforcedomain.Service
	registrySvc    registrydomain.Service
	diarySvc       diarydomain.Service
	billingSvc     billingdomain.Service
	priceListSvc   pricelistdomain.Service
	marketPriceSvc marketpricedomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	GenID          *snowflake.Node
	WorkSvc        workdomain.Service
	WorkforceSvc   workforcedomain.Service
	RegistrySvc    registrydomain.Service
	DiarySvc       diarydomain.Service
	BillingSvc     billingdomain.Service
	PriceListSvc   pricelistdomain.Service
	MarketPriceSvc marketpricedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		genID:          p.GenID,
		workSvc:        p.WorkSvc,
		workforceSvc:   p.WorkforceSvc,
		registrySvc:    p.RegistrySvc,
		diarySvc:       p.DiarySvc,
		billingSvc:     p.BillingSvc,
		priceListSvc:   p.PriceListSvc,
		marketPriceSvc: p.MarketPriceSvc,
	}

	svc.registerAPIRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	// The cron sweep authenticates with the shared secret instead of a
	// tenant token, so the scrape routes get their own middleware.
	scrape := s.engine.Group("/api", s.cronOrAuthMiddleware())
	scrape.POST("/scrape-material-prices", s.ScrapeMaterialPrices)
	scrape.GET("/scrape-material-prices", s.ScrapeMaterialPricesSweep)

	api := s.engine.Group("/api", s.authMiddleware())

	api.POST("/works", s.CreateWork)
	api.GET("/works", s.ListWorks)
	api.GET("/works/:id", s.GetWork)
	api.PATCH("/works/:id", s.UpdateWork)
	api.DELETE("/works/:id", s.ArchiveWork)

	api.POST("/works/:id/items", s.CreateWorkItem)
	api.GET("/works/:id/items", s.ListWorkItems)
	api.GET("/work-items/:id", s.GetWorkItem)
	api.PATCH("/work-items/:id", s.UpdateWorkItem)
	api.PUT("/work-items/:id/completion", s.UpdateWorkItemCompletion)
	api.PUT("/work-items/:id/in-progress", s.SetWorkItemInProgress)

	api.GET("/works/:id/workforce", s.ListAssignments)
	api.GET("/works/:id/workforce/summary", s.WorkforceSummary)
	api.POST("/works/:id/workforce", s.AddWorker)
	api.PUT("/works/:id/max-required-workers", s.SetMaxRequiredWorkers)
	api.PATCH("/workforce/assignments/:id", s.UpdateAssignment)
	api.DELETE("/workforce/assignments/:id", s.RemoveAssignment)
	api.PUT("/workforce/slots/:id/quantity", s.SetSlotQuantity)

	api.GET("/registry", s.ListRegistry)
	api.POST("/registry", s.CreateRegistryEntry)
	api.GET("/registry/:id", s.GetRegistryEntry)
	api.PATCH("/registry/:id", s.UpdateRegistryEntry)
	api.PUT("/registry/:id/active", s.SetRegistryActive)
	api.PUT("/registry/:id/restricted", s.SetRegistryRestricted)
	api.DELETE("/registry/:id", s.DeleteRegistryEntry)
	api.POST("/registry/:id/cleanup", s.CleanupRegistryEntry)

	api.POST("/works/:id/diary", s.SubmitDiaryGroup)
	api.GET("/works/:id/diary", s.ListWorkDiary)
	api.GET("/diary/groups/:groupNo", s.GetDiaryGroup)
	api.PUT("/diary/groups/:groupNo/approval", s.SetDiaryGroupApproval)
	api.GET("/diary/groups/:groupNo/approval", s.DiaryGroupApprovalStatus)
	api.DELETE("/diary/groups/:groupNo", s.DeleteDiaryGroup)
	api.PATCH("/diary/items/:id", s.UpdateDiaryItem)
	api.DELETE("/diary/items/:id", s.DeleteDiaryItem)

	api.POST("/works/:id/billings", s.CreateBillingDraft)
	api.GET("/works/:id/billings", s.ListBillings)
	api.GET("/billings/:id", s.GetBilling)
	api.PATCH("/billings/:id", s.UpdateBillingDraft)
	api.POST("/billings/:id/finalize", s.FinalizeBilling)
	api.POST("/billings/:id/pay-cash", s.MarkBillingPaidCash)
	api.DELETE("/billings/:id", s.DeleteBillingDraft)

	api.GET("/price-list/global", s.ListGlobalPriceList)
	api.PATCH("/price-list/global/:id", s.UpdateGlobalPrice)
	api.GET("/price-list", s.ListTenantPriceList)
	api.POST("/price-list", s.UpsertTenantPrice)
	api.PATCH("/price-list/:id", s.UpdateTenantPrice)
	api.DELETE("/price-list/:id", s.DeleteTenantPrice)
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError("id", "invalid_id", "invalid id")
	}
	return id, nil
}
