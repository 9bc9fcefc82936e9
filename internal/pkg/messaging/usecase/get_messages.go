package usecase

import (
	"context"
	"fmt"

	domain "pulsechat/internal/pkg/messaging/domain"
	store "pulsechat/internal/pkg/messaging/store/port"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// GetMessagesInput carries the cursor pagination parameters. BeforeID <= 0
// starts from the newest message.
type GetMessagesInput struct {
	ConversationID string
	UserID         string
	BeforeID       int64
	Limit          int
}

// MessagePage is one page of a conversation's history in descending ID order.
// NextCursor is the ID of the last returned message and is only meaningful
// when HasMore is true.
type MessagePage struct {
	Messages   []domain.Message
	HasMore    bool
	NextCursor int64
}

// GetMessagesUseCase paginates a conversation's message log. A caller who is
// not a participant gets an empty page, not an error: the read path hides
// the conversation's existence instead of rejecting, unlike the send path.
type GetMessagesUseCase struct {
	Store store.Store
}

func NewGetMessagesUseCase(s store.Store) *GetMessagesUseCase {
	return &GetMessagesUseCase{Store: s}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) (*MessagePage, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return nil, fmt.Errorf("%w: conversation id and user id are required", domain.ErrValidation)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	isParticipant, err := uc.Store.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return &MessagePage{}, nil
	}

	// fetch one extra row: its presence means there is a next page, without a
	// separate count query
	msgs, err := uc.Store.MessagesBefore(ctx, in.ConversationID, in.BeforeID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	page := &MessagePage{Messages: msgs}
	if len(msgs) > limit {
		page.Messages = msgs[:limit]
		page.HasMore = true
	}
	if n := len(page.Messages); n > 0 {
		page.NextCursor = page.Messages[n-1].ID
	}
	return page, nil
}
