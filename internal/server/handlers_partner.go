package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mysticvn/boitoan/internal/store"
)

type partnerRequest struct {
	Name         string `json:"name"`
	BirthDate    string `json:"birthDate"`
	BirthTime    string `json:"birthTime"`
	BirthPlace   string `json:"birthPlace"`
	Relationship string `json:"relationship"`
}

func partnerPayload(p *store.Partner) gin.H {
	payload := gin.H{
		"id":           p.ID,
		"name":         p.Name,
		"birthTime":    p.BirthTime,
		"birthPlace":   p.BirthPlace,
		"relationship": p.Relationship,
		"startDate":    p.StartDate.Format("2006-01-02"),
	}
	if p.BirthDate != nil {
		payload["birthDate"] = p.BirthDate.Format("2006-01-02")
	}
	return payload
}

func (s *Server) GetPartnerHandler(c *gin.Context) {
	partner, err := s.store.GetPartner(userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if partner == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, partnerPayload(partner))
}

func (s *Server) CreatePartnerHandler(c *gin.Context) {
	var req partnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	if req.Name == "" || req.BirthDate == "" || req.BirthTime == "" || req.BirthPlace == "" || req.Relationship == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Missing required fields: name, birthDate, birthTime, birthPlace, relationship",
		})
		return
	}

	existing, err := s.store.GetPartner(userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "User already has a partner. Use PUT to update or DELETE first."})
		return
	}

	partner := &store.Partner{
		UserID:       userID(c),
		Name:         req.Name,
		BirthTime:    req.BirthTime,
		BirthPlace:   req.BirthPlace,
		Relationship: req.Relationship,
		StartDate:    s.now(),
	}
	if t, err := time.Parse("2006-01-02", req.BirthDate); err == nil {
		partner.BirthDate = &t
	}

	if err := s.store.CreatePartner(partner); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, partnerPayload(partner))
}

func (s *Server) UpdatePartnerHandler(c *gin.Context) {
	var req partnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	partner, err := s.store.GetPartner(userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if partner == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Partner not found. Use POST to create a new partner."})
		return
	}

	if req.Name != "" {
		partner.Name = req.Name
	}
	if req.BirthDate != "" {
		if t, err := time.Parse("2006-01-02", req.BirthDate); err == nil {
			partner.BirthDate = &t
		}
	}
	if req.BirthTime != "" {
		partner.BirthTime = req.BirthTime
	}
	if req.BirthPlace != "" {
		partner.BirthPlace = req.BirthPlace
	}
	if req.Relationship != "" {
		partner.Relationship = req.Relationship
	}

	if err := s.store.UpdatePartner(partner); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, partnerPayload(partner))
}

// DeletePartnerHandler records the breakup before removing the partner, so
// the emotional-support framing can kick in on subsequent readings.
func (s *Server) DeletePartnerHandler(c *gin.Context) {
	partner, err := s.store.GetPartner(userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if partner == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Partner not found."})
		return
	}

	if err := s.store.DeletePartnerWithBreakup(userID(c), partner, s.now()); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Partner deleted and breakup record created successfully"})
}
