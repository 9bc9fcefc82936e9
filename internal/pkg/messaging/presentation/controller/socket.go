package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	presence "pulsechat/internal/infrastructure/presence/port"
	"pulsechat/internal/infrastructure/realtime"
	"pulsechat/internal/pkg/messaging/notify"
	"pulsechat/internal/pkg/messaging/presentation/middleware"
)

// SocketController owns the live connection endpoint. Per connection it runs
// the lifecycle: identity checked, presence registered and the connection
// attached to the user's channel, then a read loop that only accepts typing
// signals; teardown deregisters presence. No per-connection state survives a
// close, so a reconnect is indistinguishable from a fresh connection.
type SocketController struct {
	hub      *realtime.Hub
	presence presence.Tracker
	notifier *notify.Notifier
	logger   *logrus.Logger
}

func NewSocketController(hub *realtime.Hub, tracker presence.Tracker, notifier *notify.Notifier, logger *logrus.Logger) *SocketController {
	return &SocketController{hub: hub, presence: tracker, notifier: notifier, logger: logger}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering happens at the platform gateway in front of us.
		return true
	},
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type string `json:"type"`
}

const (
	defaultReadTimeout = 60 * time.Second
	maxFrameSize       = 4 << 10 // typing frames only, keep reads tiny
	typingTimeout      = 5 * time.Second
)

func (ctl *SocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "identity is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; nothing more to do.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.hub.Attach(conn)
		if err := ctl.presence.Connect(c.Request.Context(), userID, conn.ID); err != nil {
			ctl.logger.WithError(err).WithField("user_id", userID).Warn("presence registration failed")
		}

		defer func() {
			ctl.hub.Detach(conn)
			wentOffline, err := ctl.presence.Disconnect(context.Background(), userID, conn.ID)
			if err != nil {
				ctl.logger.WithError(err).WithField("user_id", userID).Warn("presence deregistration failed")
			} else if wentOffline {
				ctl.logger.WithField("user_id", userID).Debug("user went offline")
			}
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(maxFrameSize)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					ctl.logger.WithError(err).WithField("user_id", userID).Debug("socket read ended")
				}
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}
			if frame.ConversationID == "" && frame.Type != "" {
				ctl.replyError(conn, "bad_request", "conversation_id is required")
				continue
			}

			ctx, cancel := context.WithTimeout(c.Request.Context(), typingTimeout)
			switch frame.Type {
			case "typing_started":
				ctl.notifier.TypingStarted(ctx, frame.ConversationID, userID)
			case "typing_stopped":
				ctl.notifier.TypingStopped(ctx, frame.ConversationID, userID)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
			cancel()
		}
	}
}

func (ctl *SocketController) replyError(conn *realtime.Connection, code string, message string) {
	if payload, err := json.Marshal(errorFrame{Type: "error", Code: code, Error: message}); err == nil {
		_ = conn.Send(payload)
	}
}
