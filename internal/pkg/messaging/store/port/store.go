package store

import (
	"context"

	domain "pulsechat/internal/pkg/messaging/domain"
)

// Store defines persistence operations for the messaging domain.
// Queries are explicit, named methods; each documents its own sort and
// filter semantics instead of composing generic specification objects.
type Store interface {
	// CreateConversation persists c and returns the store-assigned ID.
	CreateConversation(ctx context.Context, c domain.Conversation) (string, error)

	// AddParticipant inserts a membership row. Inserting the same
	// (conversation, user) pair twice is a no-op.
	AddParticipant(ctx context.Context, p domain.Participant) error

	// GetConversation returns the conversation or domain.ErrNotFound.
	GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error)

	// ListConversationsByIDs returns the conversations for ids ordered by
	// last_message_at descending. Unknown ids are skipped.
	ListConversationsByIDs(ctx context.Context, ids []string) ([]domain.Conversation, error)

	// GetParticipant returns the membership row or domain.ErrNotFound.
	GetParticipant(ctx context.Context, conversationID, userID string) (*domain.Participant, error)

	// IsParticipant reports whether userID belongs to the conversation.
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)

	// ListParticipants returns all membership rows for the conversation.
	ListParticipants(ctx context.Context, conversationID string) ([]domain.Participant, error)

	// ListUserParticipants returns all membership rows for userID ordered by
	// joined_at descending.
	ListUserParticipants(ctx context.Context, userID string) ([]domain.Participant, error)

	// SaveMessage appends m to the conversation log and returns the persisted
	// message with the store-assigned monotonic ID and creation timestamp.
	SaveMessage(ctx context.Context, m domain.Message) (*domain.Message, error)

	// MessagesBefore returns up to limit messages of the conversation ordered
	// by (created_at desc, id desc). When beforeID > 0 only messages with
	// id < beforeID are considered.
	MessagesBefore(ctx context.Context, conversationID string, beforeID int64, limit int) ([]domain.Message, error)

	// UpdateConversationSummary overwrites the conversation's denormalized
	// last-message fields with m, but only while the stored last_message_id
	// is lower than m.ID, so an older concurrent sender never clobbers a
	// newer summary. Returns false when the guard rejected the write.
	UpdateConversationSummary(ctx context.Context, conversationID string, m domain.Message) (bool, error)

	// AdvanceReadCursor moves the participant's read cursor to messageID if
	// it is unset or lower; out-of-order acknowledgments are a no-op.
	// Returns whether the cursor actually moved. The caller is responsible
	// for verifying membership first; a missing row yields (false, nil).
	AdvanceReadCursor(ctx context.Context, conversationID, userID string, messageID int64) (bool, error)
}
