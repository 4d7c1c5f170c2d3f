package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mesterwork/mesterwork/internal/config"
	marketpricedomain "github.com/mesterwork/mesterwork/internal/marketprice/domain"
)

type fakeMarketPriceService struct {
	checkCalls      int
	batchCalls      int
	allTenantsCalls int
	lastTenant      string
	checkErr        error
}

func (f *fakeMarketPriceService) CheckWorkItem(ctx context.Context, workItemID snowflake.ID, forceRefresh bool) (marketpricedomain.CheckResult, error) {
	f.checkCalls++
	_ = ctx
	_ = workItemID
	_ = forceRefresh
	if f.checkErr != nil {
		return marketpricedomain.CheckResult{}, f.checkErr
	}
	return marketpricedomain.CheckResult{Status: marketpricedomain.CheckStatusUpdated}, nil
}

func (f *fakeMarketPriceService) RunTenantBatch(ctx context.Context, tenantEmail string) (marketpricedomain.BatchResult, error) {
	f.batchCalls++
	f.lastTenant = tenantEmail
	_ = ctx
	return marketpricedomain.BatchResult{TenantEmail: tenantEmail}, nil
}

func (f *fakeMarketPriceService) RunAllTenants(ctx context.Context) (marketpricedomain.SweepResult, error) {
	f.allTenantsCalls++
	_ = ctx
	return marketpricedomain.SweepResult{}, nil
}

func newScrapeTestServer(marketPrice *fakeMarketPriceService) *Server {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine: engine,
		cfg: config.Config{
			AuthJWTSecret: "test-jwt-secret",
			CronSecret:    "test-cron-secret",
		},
		marketPriceSvc: marketPrice,
	}
	srv.registerAPIRoutes()
	return srv
}

func signTenantToken(t *testing.T, secret, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": email})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestScrapeSweepCronSecretRunsAllTenants(t *testing.T) {
	marketPrice := &fakeMarketPriceService{}
	srv := newScrapeTestServer(marketPrice)

	req := httptest.NewRequest(http.MethodGet, "/api/scrape-material-prices", nil)
	req.Header.Set("Authorization", "Bearer test-cron-secret")
	resp := httptest.NewRecorder()
	srv.engine.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if marketPrice.allTenantsCalls != 1 {
		t.Fatalf("expected one all-tenant sweep, got %d", marketPrice.allTenantsCalls)
	}
	if marketPrice.batchCalls != 0 {
		t.Fatalf("expected no tenant batch, got %d", marketPrice.batchCalls)
	}
}

func TestScrapeSweepTenantTokenRunsOwnBatch(t *testing.T) {
	marketPrice := &fakeMarketPriceService{}
	srv := newScrapeTestServer(marketPrice)

	req := httptest.NewRequest(http.MethodGet, "/api/scrape-material-prices", nil)
	req.Header.Set("Authorization", "Bearer "+signTenantToken(t, "test-jwt-secret", "boss@example.com"))
	resp := httptest.NewRecorder()
	srv.engine.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if marketPrice.batchCalls != 1 {
		t.Fatalf("expected one tenant batch, got %d", marketPrice.batchCalls)
	}
	if marketPrice.lastTenant != "boss@example.com" {
		t.Fatalf("expected the caller's tenant, got %q", marketPrice.lastTenant)
	}
	if marketPrice.allTenantsCalls != 0 {
		t.Fatalf("expected no all-tenant sweep, got %d", marketPrice.allTenantsCalls)
	}
}

func TestScrapeSweepRejectsBadCredentials(t *testing.T) {
	marketPrice := &fakeMarketPriceService{}
	srv := newScrapeTestServer(marketPrice)

	// No Authorization header at all.
	req := httptest.NewRequest(http.MethodGet, "/api/scrape-material-prices", nil)
	resp := httptest.NewRecorder()
	srv.engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without a token, got %d", resp.Code)
	}

	// A token that is neither the cron secret nor a valid JWT.
	req = httptest.NewRequest(http.MethodGet, "/api/scrape-material-prices", nil)
	req.Header.Set("Authorization", "Bearer not-the-secret")
	resp = httptest.NewRecorder()
	srv.engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for a bad token, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "unauthorized") {
		t.Fatalf("expected an unauthorized error body, got %s", resp.Body.String())
	}

	// A JWT signed with the wrong key is rejected too.
	req = httptest.NewRequest(http.MethodGet, "/api/scrape-material-prices", nil)
	req.Header.Set("Authorization", "Bearer "+signTenantToken(t, "some-other-secret", "boss@example.com"))
	resp = httptest.NewRecorder()
	srv.engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for a forged token, got %d", resp.Code)
	}

	if marketPrice.batchCalls != 0 || marketPrice.allTenantsCalls != 0 {
		t.Fatal("expected the service to stay untouched behind the middleware")
	}
}

func TestScrapeCheckNotFoundMapsTo404(t *testing.T) {
	marketPrice := &fakeMarketPriceService{checkErr: marketpricedomain.ErrItemNotFound}
	srv := newScrapeTestServer(marketPrice)

	req := httptest.NewRequest(http.MethodPost, "/api/scrape-material-prices",
		strings.NewReader(`{"workItemId":"12345","forceRefresh":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTenantToken(t, "test-jwt-secret", "boss@example.com"))
	resp := httptest.NewRecorder()
	srv.engine.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
	if marketPrice.checkCalls != 1 {
		t.Fatalf("expected one check call, got %d", marketPrice.checkCalls)
	}
	if !strings.Contains(resp.Body.String(), "not_found") {
		t.Fatalf("expected a not_found error body, got %s", resp.Body.String())
	}
}
