package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const userIDKey = "userID"

// authMiddleware resolves the caller's identity from the X-User-Id header
// (when the deployment trusts an upstream proxy to set it) or a Bearer JWT.
// Either way handlers read the resolved id from the context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.Auth.TrustUserIDHeader {
			if id := c.GetHeader("X-User-Id"); id != "" {
				c.Set(userIDKey, id)
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			unauthorized(c)
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])

		userID, err := s.parseToken(tokenString)
		if err != nil {
			logrus.WithError(err).Debug("rejected bearer token")
			unauthorized(c)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func (s *Server) parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token payload")
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", fmt.Errorf("token missing userId claim")
	}
	return userID, nil
}

func (s *Server) signToken(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"iat":    now.Unix(),
		"exp":    now.Add(time.Duration(s.cfg.Auth.TokenTTL) * time.Second).Unix(),
	})
	return token.SignedString([]byte(s.cfg.Auth.JWTSecret))
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
}

func internalError(c *gin.Context, err error) {
	logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}
