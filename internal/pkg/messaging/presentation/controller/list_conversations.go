package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pulsechat/internal/pkg/messaging/presentation/middleware"
	"pulsechat/internal/pkg/messaging/usecase"
)

// ListConversationsController lists the caller's conversations by recency of
// activity.
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase) *ListConversationsController {
	return &ListConversationsController{UC: uc}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		convs, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: middleware.UserID(c)})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(convs))
		for _, conv := range convs {
			out = append(out, conversationJSON(conv))
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
	}
}
