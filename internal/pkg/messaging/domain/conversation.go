package messaging

import "time"

// ConversationType distinguishes 1:1 threads from group threads
// 0 = private (exactly two participants), 1 = group (two or more)
type ConversationType int16

const (
	ConversationTypePrivate ConversationType = 0
	ConversationTypeGroup   ConversationType = 1
)

// Conversation is a typed container of participants and messages.
// The last_message_* columns are a denormalized copy of the most recent
// message so conversation lists render without touching the message log.
// LastMessageID is the monotonic ID of that message and guards summary
// updates against older writers.
type Conversation struct {
	ID                  string           `db:"id"`
	ConvType            ConversationType `db:"conv_type"`
	LastMessageID       int64            `db:"last_message_id"`
	LastMessageBody     *string          `db:"last_message_body"`
	LastMessageSenderID *string          `db:"last_message_sender_id"`
	LastMessageType     *MessageType     `db:"last_message_type"`
	LastMessageAt       time.Time        `db:"last_message_at"`
	CreatedAt           time.Time        `db:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at"`
}

// ApplySummary returns a copy of c with the denormalized last-message fields
// taken from m. It does not decide whether m is newer than the current
// summary; that guard lives in the store update.
func (c Conversation) ApplySummary(m Message) Conversation {
	body := m.Body
	sender := m.SenderID
	msgType := m.MsgType
	c.LastMessageID = m.ID
	c.LastMessageBody = &body
	c.LastMessageSenderID = &sender
	c.LastMessageType = &msgType
	c.LastMessageAt = m.CreatedAt
	c.UpdatedAt = m.CreatedAt
	return c
}
