package task

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	qport "pulsechat/internal/infrastructure/queue/port"
)

// OfflinePushTaskType is the queue task name for notifying a user who had no
// live connection when a message was fanned out.
const OfflinePushTaskType = "messaging:offline_push"

// OfflinePushPayload is the JSON payload transported via the queue.
type OfflinePushPayload struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
	MessageID      int64  `json:"messageId"`
	SenderID       string `json:"senderId"`
	Preview        string `json:"preview"`
}

// NewOfflinePushTask encodes p into a queue task.
func NewOfflinePushTask(p OfflinePushPayload) (qport.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return qport.Task{}, err
	}
	return qport.Task{Type: OfflinePushTaskType, Payload: b}, nil
}

// RegisterOfflinePushTask binds the task handler to the provided server.
// The actual push provider lives in the platform's notification service; this
// worker only records the handoff.
func RegisterOfflinePushTask(srv qport.Server, logger *logrus.Logger) {
	srv.Register(OfflinePushTaskType, func(ctx context.Context, t qport.Task) error {
		var p OfflinePushPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying cannot fix it
			return err
		}
		logger.WithFields(logrus.Fields{
			"user_id":         p.UserID,
			"conversation_id": p.ConversationID,
			"message_id":      p.MessageID,
		}).Info("handing message off to push provider")
		return nil
	})
}
