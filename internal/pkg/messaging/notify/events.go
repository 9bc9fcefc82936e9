package notify

import (
	"time"

	domain "pulsechat/internal/pkg/messaging/domain"
)

// Event type names pushed over the live connection.
const (
	EventNewMessage          = "new_message"
	EventConversationUpdated = "conversation_updated"
	EventUserTyping          = "user_typing"
	EventUserStoppedTyping   = "user_stopped_typing"
)

type messagePayload struct {
	ID             int64              `json:"id"`
	ConversationID string             `json:"conversation_id"`
	SenderID       string             `json:"sender_id"`
	Body           string             `json:"body"`
	MsgType        domain.MessageType `json:"msg_type"`
	CreatedAt      time.Time          `json:"created_at"`
}

type conversationPayload struct {
	ID                  string                  `json:"id"`
	ConvType            domain.ConversationType `json:"conv_type"`
	LastMessageID       int64                   `json:"last_message_id"`
	LastMessageBody     *string                 `json:"last_message_body,omitempty"`
	LastMessageSenderID *string                 `json:"last_message_sender_id,omitempty"`
	LastMessageType     *domain.MessageType     `json:"last_message_type,omitempty"`
	LastMessageAt       time.Time               `json:"last_message_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

type messageEvent struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

type conversationEvent struct {
	Type         string              `json:"type"`
	Conversation conversationPayload `json:"conversation"`
}

type typingEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

func toMessagePayload(m domain.Message) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		MsgType:        m.MsgType,
		CreatedAt:      m.CreatedAt,
	}
}

func toConversationPayload(c domain.Conversation) conversationPayload {
	return conversationPayload{
		ID:                  c.ID,
		ConvType:            c.ConvType,
		LastMessageID:       c.LastMessageID,
		LastMessageBody:     c.LastMessageBody,
		LastMessageSenderID: c.LastMessageSenderID,
		LastMessageType:     c.LastMessageType,
		LastMessageAt:       c.LastMessageAt,
		UpdatedAt:           c.UpdatedAt,
	}
}
