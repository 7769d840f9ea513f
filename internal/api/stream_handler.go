package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/models"
	"couple-plans-backend-go/internal/realtime"
)

const defaultKeepAlive = 25 * time.Second

// StreamHandler pushes plan and location snapshots to clients as Server-Sent Events.
type StreamHandler struct {
	hub       *realtime.Hub
	logger    *zap.Logger
	keepAlive time.Duration
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *realtime.Hub, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, logger: logger, keepAlive: defaultKeepAlive}
}

// Stream handles GET /stream
// Every event carries the full collection: "plans" sends []Plan, "locations" sends []string.
func (h *StreamHandler) Stream(c *gin.Context) {
	sub, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		waitCtx, cancel := context.WithTimeout(ctx, h.keepAlive)
		snaps, err := sub.Next(waitCtx)
		cancel()

		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, context.DeadlineExceeded):
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
		case err != nil:
			h.logger.Warn("Stream subscription failed", zap.Error(err))
			return
		default:
			for _, snap := range snaps {
				c.SSEvent(snap.Kind, eventData(snap))
			}
		}
		c.Writer.Flush()
	}
}

func eventData(snap realtime.Snapshot) interface{} {
	if snap.Kind == realtime.KindLocations {
		if snap.Locations == nil {
			return []string{}
		}
		return snap.Locations
	}
	if snap.Plans == nil {
		return []models.Plan{}
	}
	return snap.Plans
}
