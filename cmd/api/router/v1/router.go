package v1

import (
	"github.com/gin-gonic/gin"

	httpHandler "pulsechat/internal/pkg/messaging/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, deps httpHandler.Deps) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, deps)
}
