package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	domain "pulsechat/internal/pkg/messaging/domain"
	store "pulsechat/internal/pkg/messaging/store/port"
)

// Notifier receives domain events after persistence has committed. Delivery
// is best effort; implementations must not fail the send path.
type Notifier interface {
	MessageSent(ctx context.Context, conv domain.Conversation, msg domain.Message)
}

// SendMessageInput carries the data needed to append a message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Body           string
	MsgType        domain.MessageType
}

// SendMessageUseCase validates membership, appends the message to the log,
// refreshes the conversation's denormalized summary and hands the result to
// the notifier for fan-out.
type SendMessageUseCase struct {
	Store    store.Store
	Notifier Notifier
	Logger   *logrus.Logger
}

func NewSendMessageUseCase(s store.Store, n Notifier, logger *logrus.Logger) *SendMessageUseCase {
	return &SendMessageUseCase{Store: s, Notifier: n, Logger: logger}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*domain.Message, error) {
	msg, err := domain.NewMessage(in.ConversationID, in.SenderID, in.Body, in.MsgType)
	if err != nil {
		return nil, err
	}

	isParticipant, err := uc.Store.IsParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, domain.ErrNotParticipant
	}

	saved, err := uc.Store.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	conv, err := uc.Store.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// The message is committed at this point; a summary failure must not
	// roll it back. The store-side guard on last_message_id keeps an older
	// concurrent sender from clobbering a newer summary.
	updated, err := uc.Store.UpdateConversationSummary(ctx, in.ConversationID, *saved)
	if err != nil {
		uc.Logger.WithError(err).WithField("conversation_id", in.ConversationID).
			Warn("failed to update conversation summary")
	}
	eventConv := *conv
	if updated {
		eventConv = conv.ApplySummary(*saved)
	}

	uc.Logger.WithFields(logrus.Fields{
		"message_id":      saved.ID,
		"conversation_id": saved.ConversationID,
		"sender_id":       saved.SenderID,
	}).Info("message sent")

	if uc.Notifier != nil {
		uc.Notifier.MessageSent(ctx, eventConv, *saved)
	}
	return saved, nil
}
