package notify

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	presence "pulsechat/internal/infrastructure/presence/port"
	qport "pulsechat/internal/infrastructure/queue/port"
	domain "pulsechat/internal/pkg/messaging/domain"
	store "pulsechat/internal/pkg/messaging/store/port"
	"pulsechat/internal/pkg/messaging/task"
)

// Pusher delivers a payload to every live connection in a user's logical
// channel and reports how many accepted it.
type Pusher interface {
	PushToUser(userID string, payload []byte) int
}

// Notifier fans out conversation events to current members. Membership is
// re-read from the store on every fan-out, never cached, because it can
// change between sends. Delivery is best effort with no acknowledgment or
// retry: an offline user simply misses the push and reconciles by pulling
// history after reconnecting.
type Notifier struct {
	store    store.Store
	pusher   Pusher
	presence presence.Tracker
	queue    qport.Client // nil when no queue backend is configured
	logger   *logrus.Logger
}

func New(s store.Store, p Pusher, t presence.Tracker, q qport.Client, logger *logrus.Logger) *Notifier {
	return &Notifier{store: s, pusher: p, presence: t, queue: q, logger: logger}
}

// MessageSent pushes NewMessage and ConversationUpdated to every participant,
// the sender included: the sender's own devices also need the authoritative
// copy, and its client suppresses the echo by matching sender identity.
// Participants with no live connection get an offline push task instead.
func (n *Notifier) MessageSent(ctx context.Context, conv domain.Conversation, msg domain.Message) {
	participants, err := n.store.ListParticipants(ctx, msg.ConversationID)
	if err != nil {
		n.logger.WithError(err).WithField("conversation_id", msg.ConversationID).
			Warn("fan-out aborted: cannot load participants")
		return
	}

	msgPayload, err := json.Marshal(messageEvent{Type: EventNewMessage, Message: toMessagePayload(msg)})
	if err != nil {
		n.logger.WithError(err).Warn("failed to encode new message event")
		return
	}
	convPayload, err := json.Marshal(conversationEvent{Type: EventConversationUpdated, Conversation: toConversationPayload(conv)})
	if err != nil {
		n.logger.WithError(err).Warn("failed to encode conversation event")
		return
	}

	userIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
		n.pusher.PushToUser(p.UserID, msgPayload)
		n.pusher.PushToUser(p.UserID, convPayload)
	}

	n.enqueueOfflinePushes(ctx, userIDs, msg)
}

// TypingStarted relays a typing signal to the conversation's other members.
// Nothing is stored and no error reaches the caller: a signal from a
// non-participant is dropped on the floor.
func (n *Notifier) TypingStarted(ctx context.Context, conversationID, userID string) {
	n.relayTyping(ctx, conversationID, userID, EventUserTyping)
}

// TypingStopped relays the end of a typing signal, with the same rules as
// TypingStarted.
func (n *Notifier) TypingStopped(ctx context.Context, conversationID, userID string) {
	n.relayTyping(ctx, conversationID, userID, EventUserStoppedTyping)
}

func (n *Notifier) relayTyping(ctx context.Context, conversationID, userID, eventType string) {
	isParticipant, err := n.store.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		n.logger.WithError(err).WithField("conversation_id", conversationID).
			Warn("typing relay: membership check failed")
		return
	}
	if !isParticipant {
		return
	}

	participants, err := n.store.ListParticipants(ctx, conversationID)
	if err != nil {
		n.logger.WithError(err).WithField("conversation_id", conversationID).
			Warn("typing relay: cannot load participants")
		return
	}

	payload, err := json.Marshal(typingEvent{Type: eventType, ConversationID: conversationID, UserID: userID})
	if err != nil {
		n.logger.WithError(err).Warn("failed to encode typing event")
		return
	}

	// unlike message fan-out, the caller is excluded here
	for _, p := range participants {
		if p.UserID == userID {
			continue
		}
		n.pusher.PushToUser(p.UserID, payload)
	}
}

func (n *Notifier) enqueueOfflinePushes(ctx context.Context, userIDs []string, msg domain.Message) {
	if n.queue == nil || n.presence == nil {
		return
	}

	targets := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != msg.SenderID {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return
	}

	online, err := n.presence.BatchIsOnline(ctx, targets)
	if err != nil {
		n.logger.WithError(err).Warn("offline push skipped: presence lookup failed")
		return
	}

	for _, id := range targets {
		if online[id] {
			continue
		}
		t, err := task.NewOfflinePushTask(task.OfflinePushPayload{
			UserID:         id,
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
			SenderID:       msg.SenderID,
			Preview:        msg.Body,
		})
		if err != nil {
			n.logger.WithError(err).Warn("failed to build offline push task")
			continue
		}
		if _, err := n.queue.Enqueue(ctx, t, qport.EnqueueOption{Queue: "push", MaxRetry: 5}); err != nil {
			n.logger.WithError(err).WithField("user_id", id).Warn("failed to enqueue offline push")
		}
	}
}
