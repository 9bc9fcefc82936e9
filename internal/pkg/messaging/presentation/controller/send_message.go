package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "pulsechat/internal/pkg/messaging/domain"
	"pulsechat/internal/pkg/messaging/presentation/middleware"
	"pulsechat/internal/pkg/messaging/usecase"
)

// SendMessageController handles the send-message endpoint only (one
// controller per endpoint).
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(uc *usecase.SendMessageUseCase) *SendMessageController {
	return &SendMessageController{UC: uc}
}

type sendMessageRequest struct {
	Body    string `json:"body" binding:"required"`
	MsgType *int16 `json:"msg_type"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msgType := domain.MessageTypeText
		if req.MsgType != nil {
			msgType = domain.MessageType(*req.MsgType)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       middleware.UserID(c),
			Body:           req.Body,
			MsgType:        msgType,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, messageJSON(*msg))
	}
}

func messageJSON(m domain.Message) gin.H {
	return gin.H{
		"id":              m.ID,
		"conversation_id": m.ConversationID,
		"sender_id":       m.SenderID,
		"body":            m.Body,
		"msg_type":        m.MsgType,
		"created_at":      m.CreatedAt,
	}
}
