package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	domain "pulsechat/internal/pkg/messaging/domain"
	store "pulsechat/internal/pkg/messaging/store/port"
)

// MarkAsReadInput acknowledges messages up to MessageID for the caller.
type MarkAsReadInput struct {
	ConversationID string
	UserID         string
	MessageID      int64
}

// MarkAsReadUseCase moves the caller's read cursor forward. The cursor only
// ever advances under the message ID order; a retried or out-of-order ack is
// a silent no-op, so the operation is idempotent.
type MarkAsReadUseCase struct {
	Store  store.Store
	Logger *logrus.Logger
}

func NewMarkAsReadUseCase(s store.Store, logger *logrus.Logger) *MarkAsReadUseCase {
	return &MarkAsReadUseCase{Store: s, Logger: logger}
}

// Execute returns whether the cursor actually moved.
func (uc *MarkAsReadUseCase) Execute(ctx context.Context, in MarkAsReadInput) (bool, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return false, fmt.Errorf("%w: conversation id and user id are required", domain.ErrValidation)
	}
	if in.MessageID <= 0 {
		return false, fmt.Errorf("%w: message id must be positive", domain.ErrValidation)
	}

	participant, err := uc.Store.GetParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotParticipant
		}
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if participant.HasReadUpTo(in.MessageID) {
		return false, nil
	}

	advanced, err := uc.Store.AdvanceReadCursor(ctx, in.ConversationID, in.UserID, in.MessageID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if advanced {
		uc.Logger.WithFields(logrus.Fields{
			"conversation_id": in.ConversationID,
			"user_id":         in.UserID,
			"message_id":      in.MessageID,
		}).Debug("read cursor advanced")
	}
	return advanced, nil
}
