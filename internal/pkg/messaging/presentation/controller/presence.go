package controller

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	presence "pulsechat/internal/infrastructure/presence/port"
)

// PresenceController answers "who is online" checks for conversation member
// lists. The lookup is batched: one round trip regardless of how many users
// are asked about.
type PresenceController struct {
	Tracker presence.Tracker
}

func NewPresenceController(t presence.Tracker) *PresenceController {
	return &PresenceController{Tracker: t}
}

func (h *PresenceController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("user_ids")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids is required"})
			return
		}

		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		online, err := h.Tracker.BatchIsOnline(ctx, ids)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "presence lookup failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"presence": online})
	}
}
