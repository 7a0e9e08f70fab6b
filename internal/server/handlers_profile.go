package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type profileUpdateRequest struct {
	Name       string `json:"name"`
	BirthDate  string `json:"birthDate"`
	BirthTime  string `json:"birthTime"`
	BirthPlace string `json:"birthPlace"`
}

func (s *Server) GetProfile(c *gin.Context) {
	user, err := s.store.GetUserByID(userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, userPayload(user))
}

func (s *Server) UpdateProfileHandler(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		t, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid birthDate, expected YYYY-MM-DD"})
			return
		}
		birthDate = &t
	}

	user, err := s.store.UpdateProfile(userID(c), req.Name, birthDate, req.BirthTime, req.BirthPlace)
	if err != nil {
		internalError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, userPayload(user))
}
