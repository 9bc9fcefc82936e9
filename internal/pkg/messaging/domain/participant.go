package messaging

import "time"

// Participant captures a user's membership in a conversation.
// Primary key: (ConversationID, UserID). Membership is immutable once
// written; only the read cursor moves, and only forward.
type Participant struct {
	ConversationID    string    `db:"conversation_id"`
	UserID            string    `db:"user_id"`
	JoinedAt          time.Time `db:"joined_at"`
	LastReadMessageID *int64    `db:"last_read_message_id"`
}

// HasReadUpTo reports whether the participant's read cursor already covers
// messageID. Used to short-circuit no-op acknowledgments.
func (p Participant) HasReadUpTo(messageID int64) bool {
	return p.LastReadMessageID != nil && *p.LastReadMessageID >= messageID
}
