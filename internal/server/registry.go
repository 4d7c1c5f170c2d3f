package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	registrydomain "github.com/mesterwork/mesterwork/internal/registry/domain"
)

func (s *Server) ListRegistry(c *gin.Context) {
	resp, err := s.registrySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createRegistryRequest struct {
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	HiredDate *time.Time `json:"hiredDate"`
	Notes     *string    `json:"notes"`
	DailyRate *float64   `json:"dailyRate"`
}

func (s *Server) CreateRegistryEntry(c *gin.Context) {
	var req createRegistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.registrySvc.Create(c.Request.Context(), registrydomain.CreateEntryRequest{
		Name:      strings.TrimSpace(req.Name),
		Role:      strings.TrimSpace(req.Role),
		Email:     req.Email,
		Phone:     req.Phone,
		HiredDate: req.HiredDate,
		Notes:     req.Notes,
		DailyRate: req.DailyRate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRegistryEntry(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.registrySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateRegistryRequest struct {
	Name      *string    `json:"name"`
	Role      *string    `json:"role"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	HiredDate *time.Time `json:"hiredDate"`
	LeftDate  *time.Time `json:"leftDate"`
	Notes     *string    `json:"notes"`
	AvatarURL *string    `json:"avatarUrl"`
	DailyRate *float64   `json:"dailyRate"`
}

func (s *Server) UpdateRegistryEntry(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateRegistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.registrySvc.Update(c.Request.Context(), id, registrydomain.UpdateEntryRequest{
		Name:      req.Name,
		Role:      req.Role,
		Email:     req.Email,
		Phone:     req.Phone,
		HiredDate: req.HiredDate,
		LeftDate:  req.LeftDate,
		Notes:     req.Notes,
		AvatarURL: req.AvatarURL,
		DailyRate: req.DailyRate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetRegistryActive(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.registrySvc.SetActive(c.Request.Context(), id, req.Active); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"active": req.Active}})
}

func (s *Server) SetRegistryRestricted(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Restricted bool `json:"restricted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.registrySvc.SetRestricted(c.Request.Context(), id, req.Restricted); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"restricted": req.Restricted}})
}

func (s *Server) DeleteRegistryEntry(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.registrySvc.Delete(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if result.NeedsCleanup {
		c.JSON(http.StatusConflict, gin.H{
			"data":    result,
			"message": "Munkafázison dolgozik! Előbb töröld ki onnan.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) CleanupRegistryEntry(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.registrySvc.CleanupAndDelete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
