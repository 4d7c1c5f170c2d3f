package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
)

type scrapeMaterialPricesRequest struct {
	WorkItemID   snowflake.ID `json:"workItemId"`
	ForceRefresh bool         `json:"forceRefresh"`
}

func (s *Server) ScrapeMaterialPrices(c *gin.Context) {
	var req scrapeMaterialPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.marketPriceSvc.CheckWorkItem(c.Request.Context(), req.WorkItemID, req.ForceRefresh)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ScrapeMaterialPricesSweep runs the batch refresh. The cron caller sweeps
// every tenant; a tenant caller only gets their own stale items.
func (s *Server) ScrapeMaterialPricesSweep(c *gin.Context) {
	ctx := c.Request.Context()

	if isCronRequest(c) {
		resp, err := s.marketPriceSvc.RunAllTenants(ctx)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
		return
	}

	email, ok := tenantctx.Email(ctx)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.marketPriceSvc.RunTenantBatch(ctx, email)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
