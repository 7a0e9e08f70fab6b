package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/mysticvn/boitoan/internal/store"
)

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	BirthDate  string `json:"birthDate"`
	BirthTime  string `json:"birthTime"`
	BirthPlace string `json:"birthPlace"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userPayload(u *store.User) gin.H {
	payload := gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"birthTime":  u.BirthTime,
		"birthPlace": u.BirthPlace,
	}
	if u.BirthDate != nil {
		payload["birthDate"] = u.BirthDate.Format("2006-01-02")
	}
	return payload
}

func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing email or password"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(c, err)
		return
	}

	user := &store.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		BirthTime:    req.BirthTime,
		BirthPlace:   req.BirthPlace,
	}
	if req.BirthDate != "" {
		if t, err := time.Parse("2006-01-02", req.BirthDate); err == nil {
			user.BirthDate = &t
		}
	}

	if err := s.store.CreateUser(user); err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
		return
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": userPayload(user)})
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing email or password"})
		return
	}

	user, err := s.store.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": userPayload(user)})
}
