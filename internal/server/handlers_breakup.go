package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mysticvn/boitoan/internal/store"
)

func breakupPayload(b *store.Breakup) gin.H {
	var weeklyCheckDone []string
	if len(b.WeeklyCheckDone) > 0 {
		_ = json.Unmarshal(b.WeeklyCheckDone, &weeklyCheckDone)
	}
	return gin.H{
		"id":              b.ID,
		"isActive":        true,
		"partnerName":     b.PartnerName,
		"breakupDate":     b.BreakupDate.Format(time.RFC3339),
		"autoDeleteDate":  b.AutoDeleteDate.Format(time.RFC3339),
		"weeklyCheckDone": weeklyCheckDone,
	}
}

func (s *Server) GetBreakup(c *gin.Context) {
	breakup, err := s.store.GetActiveBreakup(userID(c), s.now())
	if err != nil {
		internalError(c, err)
		return
	}
	if breakup == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, breakupPayload(breakup))
}

type breakupUpdateRequest struct {
	WeeklyCheckDone []string `json:"weeklyCheckDone"`
	IsRecovered     bool     `json:"isRecovered"`
}

func (s *Server) UpdateBreakup(c *gin.Context) {
	var req breakupUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	breakup, err := s.store.GetActiveBreakup(userID(c), s.now())
	if err != nil {
		internalError(c, err)
		return
	}
	if breakup == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No active breakup found"})
		return
	}

	if req.IsRecovered {
		if err := s.store.DeleteBreakup(breakup.ID); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":     "Breakup record deleted - user has recovered",
			"isRecovered": true,
		})
		return
	}

	if req.WeeklyCheckDone == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No updates provided"})
		return
	}

	updated, err := s.store.UpdateBreakupWeeklyCheck(breakup.ID, req.WeeklyCheckDone)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakupPayload(updated))
}

type restoreBreakupRequest struct {
	RestorePartner *struct {
		PartnerInfo *partnerRequest `json:"partnerInfo"`
	} `json:"restorePartner"`
}

// RestoreBreakup puts the partner back: the couple got back together before
// the breakup record expired.
func (s *Server) RestoreBreakup(c *gin.Context) {
	var req restoreBreakupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RestorePartner == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	breakup, err := s.store.GetActiveBreakup(userID(c), s.now())
	if err != nil {
		internalError(c, err)
		return
	}
	if breakup == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No active breakup found to restore from"})
		return
	}

	existing, err := s.store.GetPartner(userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "User already has a partner"})
		return
	}

	info := req.RestorePartner.PartnerInfo
	if info == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Partner info required for restoration"})
		return
	}

	partner := &store.Partner{
		UserID:       userID(c),
		Name:         info.Name,
		BirthTime:    info.BirthTime,
		BirthPlace:   info.BirthPlace,
		Relationship: info.Relationship,
		// Reconciliation counts as a fresh start.
		StartDate: s.now(),
	}
	if t, err := time.Parse("2006-01-02", info.BirthDate); err == nil {
		partner.BirthDate = &t
	}

	if err := s.store.RestorePartnerFromBreakup(userID(c), partner, breakup.ID); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Partner restored successfully",
		"partner": partnerPayload(partner),
	})
}

func (s *Server) PurgeBreakups(c *gin.Context) {
	deleted, err := s.store.DeleteExpiredBreakups(userID(c), s.now())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Expired breakup records deleted",
		"deletedCount": deleted,
	})
}
