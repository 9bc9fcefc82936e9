package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	presence "pulsechat/internal/infrastructure/presence/port"
	"pulsechat/internal/infrastructure/realtime"
	"pulsechat/internal/pkg/messaging/follow"
	"pulsechat/internal/pkg/messaging/notify"
	"pulsechat/internal/pkg/messaging/presentation/controller"
	"pulsechat/internal/pkg/messaging/presentation/middleware"
	store "pulsechat/internal/pkg/messaging/store/port"
	"pulsechat/internal/pkg/messaging/usecase"
)

// Deps bundles the collaborators the messaging endpoints need. Everything is
// passed explicitly; there is no ambient container.
type Deps struct {
	Store     store.Store
	Follows   follow.Checker
	Presence  presence.Tracker
	Hub       *realtime.Hub
	Notifier  *notify.Notifier
	Logger    *logrus.Logger
	JWTSecret string
}

// RegisterRoutes registers messaging endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	auth := middleware.RequireUser(deps.JWTSecret)

	createCtl := controller.NewCreateConversationController(
		usecase.NewCreateConversationUseCase(deps.Store, deps.Follows, deps.Logger))
	listCtl := controller.NewListConversationsController(
		usecase.NewListConversationsUseCase(deps.Store))
	sendCtl := controller.NewSendMessageController(
		usecase.NewSendMessageUseCase(deps.Store, deps.Notifier, deps.Logger))
	messagesCtl := controller.NewGetMessagesController(
		usecase.NewGetMessagesUseCase(deps.Store))
	readCtl := controller.NewMarkReadController(
		usecase.NewMarkAsReadUseCase(deps.Store, deps.Logger))
	presenceCtl := controller.NewPresenceController(deps.Presence)
	socketCtl := controller.NewSocketController(deps.Hub, deps.Presence, deps.Notifier, deps.Logger)

	g.POST("/conversations", auth, createCtl.Handle())
	g.GET("/conversations", auth, listCtl.Handle())
	g.POST("/conversations/:conversationId/messages", auth, sendCtl.Handle())
	g.GET("/conversations/:conversationId/messages", auth, messagesCtl.Handle())
	g.POST("/conversations/:conversationId/read", auth, readCtl.Handle())
	g.GET("/presence", auth, presenceCtl.Handle())
	g.GET("/ws", auth, socketCtl.Handle())
}
