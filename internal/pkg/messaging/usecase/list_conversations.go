package usecase

import (
	"context"
	"fmt"

	domain "pulsechat/internal/pkg/messaging/domain"
	store "pulsechat/internal/pkg/messaging/store/port"
)

// ListConversationsInput wraps the user whose conversation list is requested.
type ListConversationsInput struct {
	UserID string
}

// ListConversationsUseCase resolves the user's conversations in two steps:
// membership rows first, then the conversations by ID. The returned order is
// driven by last_message_at, never by when the user joined.
type ListConversationsUseCase struct {
	Store store.Store
}

func NewListConversationsUseCase(s store.Store) *ListConversationsUseCase {
	return &ListConversationsUseCase{Store: s}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]domain.Conversation, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	memberships, err := uc.Store.ListUserParticipants(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if len(memberships) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.ConversationID)
	}

	convs, err := uc.Store.ListConversationsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return convs, nil
}
