package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	domain "pulsechat/internal/pkg/messaging/domain"
	"pulsechat/internal/pkg/messaging/follow"
	store "pulsechat/internal/pkg/messaging/store/port"
)

// CreateConversationInput carries the required data to open a new conversation.
// ParticipantIDs may repeat or include the creator; both are normalized away.
type CreateConversationInput struct {
	CreatorID      string
	ConvType       domain.ConversationType
	ParticipantIDs []string
}

// CreateConversationOutput returns the persisted conversation with its full
// participant list, creator included.
type CreateConversationOutput struct {
	Conversation domain.Conversation
	Participants []domain.Participant
}

// CreateConversationUseCase enforces the conversation creation policy:
// a private conversation needs exactly one other user who mutually follows
// the creator; a group conversation needs at least one other user.
type CreateConversationUseCase struct {
	Store   store.Store
	Follows follow.Checker
	Logger  *logrus.Logger
}

func NewCreateConversationUseCase(s store.Store, f follow.Checker, logger *logrus.Logger) *CreateConversationUseCase {
	return &CreateConversationUseCase{Store: s, Follows: f, Logger: logger}
}

func (uc *CreateConversationUseCase) Execute(ctx context.Context, in CreateConversationInput) (*CreateConversationOutput, error) {
	if in.CreatorID == "" {
		return nil, fmt.Errorf("%w: creator id is required", domain.ErrValidation)
	}
	if in.ConvType != domain.ConversationTypePrivate && in.ConvType != domain.ConversationTypeGroup {
		return nil, fmt.Errorf("%w: unknown conversation type %d", domain.ErrValidation, in.ConvType)
	}

	others := dedupeOthers(in.CreatorID, in.ParticipantIDs)

	switch in.ConvType {
	case domain.ConversationTypePrivate:
		if len(others) != 1 {
			return nil, fmt.Errorf("%w: private conversation requires exactly one other participant", domain.ErrValidation)
		}
		mutual, err := uc.Follows.IsMutualFollow(ctx, in.CreatorID, others[0])
		if err != nil {
			// fail closed: an unreachable social graph never grants access
			uc.Logger.WithError(err).WithFields(logrus.Fields{
				"creator_id": in.CreatorID,
				"other_id":   others[0],
			}).Warn("mutual follow check failed, treating as not mutual")
			mutual = false
		}
		if !mutual {
			return nil, domain.ErrNotMutualFollow
		}
	case domain.ConversationTypeGroup:
		if len(others) < 1 {
			return nil, fmt.Errorf("%w: group conversation requires at least one other participant", domain.ErrValidation)
		}
	}

	now := time.Now().UTC()
	id, err := uc.Store.CreateConversation(ctx, domain.Conversation{
		ConvType:  in.ConvType,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Membership rows are written after the conversation row, not inside one
	// transaction. A crash in between leaves an orphaned conversation with
	// partial membership; accepted and not retried.
	members := append([]string{in.CreatorID}, others...)
	participants := make([]domain.Participant, 0, len(members))
	for _, userID := range members {
		p := domain.Participant{
			ConversationID: id,
			UserID:         userID,
			JoinedAt:       now,
		}
		if err := uc.Store.AddParticipant(ctx, p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		participants = append(participants, p)
	}

	uc.Logger.WithFields(logrus.Fields{
		"conversation_id": id,
		"creator_id":      in.CreatorID,
		"conv_type":       in.ConvType,
		"participants":    len(participants),
	}).Info("conversation created")

	conv, err := uc.Store.GetConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &CreateConversationOutput{Conversation: *conv, Participants: participants}, nil
}

// dedupeOthers removes duplicates and the creator itself, keeping first-seen order.
func dedupeOthers(creatorID string, participantIDs []string) []string {
	seen := make(map[string]struct{}, len(participantIDs))
	var others []string
	for _, id := range participantIDs {
		if id == "" || id == creatorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		others = append(others, id)
	}
	return others
}
