package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pulsechat/internal/pkg/messaging/presentation/middleware"
	"pulsechat/internal/pkg/messaging/usecase"
)

// MarkReadController acknowledges messages up to a given ID for the caller.
type MarkReadController struct {
	UC *usecase.MarkAsReadUseCase
}

func NewMarkReadController(uc *usecase.MarkAsReadUseCase) *MarkReadController {
	return &MarkReadController{UC: uc}
}

type markReadRequest struct {
	MessageID int64 `json:"message_id" binding:"required"`
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		advanced, err := h.UC.Execute(ctx, usecase.MarkAsReadInput{
			ConversationID: conversationID,
			UserID:         middleware.UserID(c),
			MessageID:      req.MessageID,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"advanced": advanced})
	}
}
