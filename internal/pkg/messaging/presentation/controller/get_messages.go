package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pulsechat/internal/pkg/messaging/presentation/middleware"
	"pulsechat/internal/pkg/messaging/usecase"
)

// GetMessagesController pages through a conversation's history with a
// before-ID cursor.
type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(uc *usecase.GetMessagesUseCase) *GetMessagesController {
	return &GetMessagesController{UC: uc}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var beforeID int64
		if v := c.Query("before_id"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				beforeID = n
			}
		}
		limit := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		page, err := h.UC.Execute(ctx, usecase.GetMessagesInput{
			ConversationID: conversationID,
			UserID:         middleware.UserID(c),
			BeforeID:       beforeID,
			Limit:          limit,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(page.Messages))
		for _, m := range page.Messages {
			out = append(out, messageJSON(m))
		}
		c.JSON(http.StatusOK, gin.H{
			"messages":    out,
			"has_more":    page.HasMore,
			"next_cursor": page.NextCursor,
		})
	}
}
