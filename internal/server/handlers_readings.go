package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mysticvn/boitoan/internal/divination"
	"github.com/mysticvn/boitoan/internal/oracle"
)

// resolveUserContext merges the persisted profile snapshot with the context
// the client sent along. Request fields win when present; a missing profile
// row only means fewer facts for the prompt, never a failed request.
func (s *Server) resolveUserContext(c *gin.Context, req *divination.UserContext) divination.UserContext {
	base, err := s.store.LoadUserContext(userID(c), s.now())
	if err != nil {
		logrus.WithError(err).WithField("userId", userID(c)).Warn("could not load persisted user context")
		base = divination.UserContext{}
	}
	if req == nil {
		return base
	}
	if req.Name != "" {
		base.Name = req.Name
	}
	if req.BirthDate != "" {
		base.BirthDate = req.BirthDate
	}
	if req.BirthTime != "" {
		base.BirthTime = req.BirthTime
	}
	if req.BirthPlace != "" {
		base.BirthPlace = req.BirthPlace
	}
	if req.PartnerName != "" {
		base.PartnerName = req.PartnerName
	}
	base.HasPartner = base.HasPartner || req.HasPartner
	base.IsInBreakup = base.IsInBreakup || req.IsInBreakup
	if req.Partner != nil {
		base.Partner = req.Partner
	}
	if req.Breakup != nil {
		base.Breakup = req.Breakup
	}
	return base
}

func readingPayload(key string, reading oracle.Reading) gin.H {
	payload := gin.H{key: reading.Text}
	if reading.FactCheck != nil {
		payload["factCheck"] = reading.FactCheck
	}
	return payload
}

type astrologyRequest struct {
	Mode        string                  `json:"mode"`
	BirthDate   string                  `json:"birthDate"`
	BirthTime   string                  `json:"birthTime"`
	BirthPlace  string                  `json:"birthPlace"`
	UserContext *divination.UserContext `json:"userContext"`
}

func (s *Server) Astrology(c *gin.Context) {
	var req astrologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	uc := s.resolveUserContext(c, req.UserContext)
	if req.BirthDate != "" {
		uc.BirthDate = req.BirthDate
	}
	if req.BirthTime != "" {
		uc.BirthTime = req.BirthTime
	}
	if req.BirthPlace != "" {
		uc.BirthPlace = req.BirthPlace
	}

	reading, err := s.oracle.Astrology(c.Request.Context(), req.Mode, uc)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, readingPayload("analysis", reading))
}

type fortuneRequest struct {
	Mode         string                  `json:"mode"`
	SelectedDate string                  `json:"selectedDate"`
	UserContext  *divination.UserContext `json:"userContext"`
}

func (s *Server) Fortune(c *gin.Context) {
	var req fortuneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	uc := s.resolveUserContext(c, req.UserContext)
	reading, err := s.oracle.Fortune(c.Request.Context(), req.Mode, req.SelectedDate, uc)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, readingPayload("analysis", reading))
}

type numerologyRequest struct {
	UserContext *divination.UserContext `json:"userContext"`
}

func (s *Server) Numerology(c *gin.Context) {
	var req numerologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	uc := s.resolveUserContext(c, req.UserContext)
	reading, err := s.oracle.Numerology(c.Request.Context(), uc)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, readingPayload("analysis", reading))
}

type tarotRequest struct {
	Question    string                  `json:"question"`
	CardsDrawn  []string                `json:"cardsDrawn"`
	Mode        string                  `json:"mode"`
	UserContext *divination.UserContext `json:"userContext"`
}

func (s *Server) TarotReading(c *gin.Context) {
	var req tarotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	if req.Mode == "" {
		req.Mode = "question"
	}

	uc := s.resolveUserContext(c, req.UserContext)
	reading, err := s.oracle.Tarot(c.Request.Context(), req.Mode, req.Question, req.CardsDrawn, uc)
	if err != nil {
		internalError(c, err)
		return
	}

	record, err := s.store.CreateTarotReading(userID(c), req.Question, req.CardsDrawn, reading.Text)
	if err != nil {
		internalError(c, err)
		return
	}

	payload := readingPayload("interpretation", reading)
	payload["readingId"] = record.ID
	c.JSON(http.StatusOK, payload)
}
