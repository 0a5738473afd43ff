package handlers

import (
	"net/http"

	"bionexus-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// suggestedQuestions is the starter set shown to users with an empty
// query box.
var suggestedQuestions = []string{
	"What are the effects of microgravity on bone density?",
	"How does space radiation affect biological systems?",
	"What organisms have been studied on the International Space Station?",
	"How do plants grow in space?",
	"What are the cardiovascular effects of spaceflight?",
	"How does the immune system respond to microgravity?",
	"What countermeasures exist for muscle atrophy in space?",
	"How is gene expression altered during spaceflight?",
}

// AskHandler handles HTTP requests for question answering
type AskHandler struct {
	queryService *service.QueryService
}

// NewAskHandler creates a new ask handler
func NewAskHandler(queryService *service.QueryService) *AskHandler {
	return &AskHandler{queryService: queryService}
}

// AskRequest represents the request body for asking a question
type AskRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

// Ask handles POST /api/ask
func (h *AskHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	var sessionID *uuid.UUID
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_SESSION_ID",
					"message": "Invalid session_id format",
				},
			})
			return
		}
		sessionID = &id
	}

	answer := h.queryService.AskQuestion(c.Request.Context(), req.Query, sessionID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    answer,
	})
}

// Suggestions handles GET /api/suggestions
func (h *AskHandler) Suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"questions": suggestedQuestions,
		},
	})
}
