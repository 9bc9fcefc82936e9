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

// CreateConversationController handles the conversation creation endpoint
// (one controller per endpoint).
type CreateConversationController struct {
	UC *usecase.CreateConversationUseCase
}

func NewCreateConversationController(uc *usecase.CreateConversationUseCase) *CreateConversationController {
	return &CreateConversationController{UC: uc}
}

type createConversationRequest struct {
	Type           string   `json:"type" binding:"required"`
	ParticipantIDs []string `json:"participant_ids" binding:"required"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var convType domain.ConversationType
		switch req.Type {
		case "private":
			convType = domain.ConversationTypePrivate
		case "group":
			convType = domain.ConversationTypeGroup
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be private or group"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.CreateConversationInput{
			CreatorID:      middleware.UserID(c),
			ConvType:       convType,
			ParticipantIDs: req.ParticipantIDs,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		members := make([]gin.H, 0, len(out.Participants))
		for _, p := range out.Participants {
			members = append(members, gin.H{
				"user_id":   p.UserID,
				"joined_at": p.JoinedAt,
			})
		}

		c.JSON(http.StatusCreated, gin.H{
			"conversation": conversationJSON(out.Conversation),
			"participants": members,
		})
	}
}

func conversationJSON(conv domain.Conversation) gin.H {
	return gin.H{
		"id":                     conv.ID,
		"conv_type":              conv.ConvType,
		"last_message_id":        conv.LastMessageID,
		"last_message_body":      conv.LastMessageBody,
		"last_message_sender_id": conv.LastMessageSenderID,
		"last_message_type":      conv.LastMessageType,
		"last_message_at":        conv.LastMessageAt,
		"created_at":             conv.CreatedAt,
		"updated_at":             conv.UpdatedAt,
	}
}
