package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
)

type createWorkItemRequest struct {
	Name                  string                    `json:"name"`
	Quantity              float64                   `json:"quantity"`
	Unit                  string                    `json:"unit"`
	UnitPrice             *float64                  `json:"unitPrice"`
	MaterialUnitPrice     *float64                  `json:"materialUnitPrice"`
	Description           string                    `json:"description"`
	RequiredProfessionals []workdomain.Professional `json:"requiredProfessionals"`
}

func (s *Server) CreateWorkItem(c *gin.Context) {
	workID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createWorkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workSvc.CreateItem(c.Request.Context(), workdomain.CreateWorkItemRequest{
		WorkID:                workID,
		Name:                  strings.TrimSpace(req.Name),
		Quantity:              req.Quantity,
		Unit:                  strings.TrimSpace(req.Unit),
		UnitPrice:             req.UnitPrice,
		MaterialUnitPrice:     req.MaterialUnitPrice,
		Description:           req.Description,
		RequiredProfessionals: req.RequiredProfessionals,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListWorkItems(c *gin.Context) {
	workID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.workSvc.ListItems(c.Request.Context(), workID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetWorkItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.workSvc.GetItemByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateWorkItemRequest struct {
	Name              *string  `json:"name"`
	Quantity          *float64 `json:"quantity"`
	Unit              *string  `json:"unit"`
	UnitPrice         *float64 `json:"unitPrice"`
	MaterialUnitPrice *float64 `json:"materialUnitPrice"`
	Description       *string  `json:"description"`
}

func (s *Server) UpdateWorkItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateWorkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workSvc.UpdateItem(c.Request.Context(), id, workdomain.UpdateWorkItemRequest{
		Name:              req.Name,
		Quantity:          req.Quantity,
		Unit:              req.Unit,
		UnitPrice:         req.UnitPrice,
		MaterialUnitPrice: req.MaterialUnitPrice,
		Description:       req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateWorkItemCompletion(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		CompletedQuantity float64 `json:"completedQuantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workSvc.UpdateItemCompletion(c.Request.Context(), id, req.CompletedQuantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetWorkItemInProgress(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		InProgress bool `json:"inProgress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.workSvc.SetItemInProgress(c.Request.Context(), id, req.InProgress); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"inProgress": req.InProgress}})
}
