package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	diarydomain "github.com/mesterwork/mesterwork/internal/diary/domain"
)

type submitDiaryGroupRequest struct {
	Date    *time.Time                    `json:"date"`
	Items   []diarydomain.GroupItemInput  `json:"items"`
	Workers []diarydomain.GroupWorkerInput `json:"workers"`
	Notes   string                        `json:"notes"`
	Images  []string                      `json:"images"`
}

func (s *Server) SubmitDiaryGroup(c *gin.Context) {
	workID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req submitDiaryGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	submit := diarydomain.SubmitGroupRequest{
		WorkID:  workID,
		Items:   req.Items,
		Workers: req.Workers,
		Notes:   req.Notes,
		Images:  req.Images,
	}
	if req.Date != nil {
		submit.Date = *req.Date
	}

	resp, err := s.diarySvc.SubmitGroup(c.Request.Context(), submit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListWorkDiary(c *gin.Context) {
	workID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.diarySvc.ListByWork(c.Request.Context(), workID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseGroupNo(raw string) (int64, error) {
	groupNo, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, newValidationError("groupNo", "invalid_group_no", "invalid group number")
	}
	return groupNo, nil
}

func (s *Server) GetDiaryGroup(c *gin.Context) {
	groupNo, err := parseGroupNo(c.Param("groupNo"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.diarySvc.ListGroup(c.Request.Context(), groupNo)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetDiaryGroupApproval(c *gin.Context) {
	groupNo, err := parseGroupNo(c.Param("groupNo"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Accepted bool `json:"accepted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.diarySvc.SetGroupApproval(c.Request.Context(), groupNo, req.Accepted); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"accepted": req.Accepted}})
}

func (s *Server) DiaryGroupApprovalStatus(c *gin.Context) {
	groupNo, err := parseGroupNo(c.Param("groupNo"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status, err := s.diarySvc.GroupApprovalStatus(c.Request.Context(), groupNo)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": status}})
}

func (s *Server) DeleteDiaryGroup(c *gin.Context) {
	groupNo, err := parseGroupNo(c.Param("groupNo"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.diarySvc.DeleteGroup(c.Request.Context(), groupNo); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) UpdateDiaryItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req diarydomain.UpdateDiaryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.diarySvc.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDiaryItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.diarySvc.DeleteItem(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
