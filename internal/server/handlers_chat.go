package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mysticvn/boitoan/internal/divination"
)

const chatHistoryWindow = 10

type chatRequest struct {
	Message     string                  `json:"message"`
	UserContext *divination.UserContext `json:"userContext"`
}

func (s *Server) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	id := userID(c)
	recent, err := s.store.RecentChatMessages(id, chatHistoryWindow)
	if err != nil {
		internalError(c, err)
		return
	}
	history := make([]divination.ChatTurn, 0, len(recent))
	for _, msg := range recent {
		history = append(history, divination.ChatTurn{Role: msg.Role, Content: msg.Content})
	}

	if err := s.store.AppendChatMessage(id, "user", req.Message); err != nil {
		internalError(c, err)
		return
	}

	uc := s.resolveUserContext(c, req.UserContext)
	response, err := s.oracle.Chat(c.Request.Context(), req.Message, uc, history)
	if err != nil {
		internalError(c, err)
		return
	}

	if err := s.store.AppendChatMessage(id, "assistant", response); err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": response})
}

func (s *Server) ChatHistoryHandler(c *gin.Context) {
	messages, err := s.store.ChatHistory(userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
