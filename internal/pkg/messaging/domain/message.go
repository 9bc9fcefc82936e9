package messaging

import (
	"strings"
	"time"
)

// MessageType represents the kind of message content
// 0=text, 1=image
type MessageType int16

const (
	MessageTypeText  MessageType = 0
	MessageTypeImage MessageType = 1
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	return t == MessageTypeText || t == MessageTypeImage
}

// Message is an immutable log entry in a conversation. The ID is assigned by
// the store and is monotonically increasing in creation order, so comparing
// IDs substitutes for comparing timestamps when ranking or paginating.
type Message struct {
	ID             int64       `db:"id"`
	ConversationID string      `db:"conversation_id"`
	SenderID       string      `db:"sender_id"`
	Body           string      `db:"body"`
	MsgType        MessageType `db:"msg_type"`
	CreatedAt      time.Time   `db:"created_at"`
}

// NewMessage validates and normalizes a message before persistence.
// The store assigns ID and CreatedAt on save.
func NewMessage(conversationID, senderID, body string, msgType MessageType) (*Message, error) {
	if conversationID == "" || senderID == "" {
		return nil, ErrValidation
	}
	if !msgType.Valid() {
		return nil, ErrValidation
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		MsgType:        msgType,
	}, nil
}
