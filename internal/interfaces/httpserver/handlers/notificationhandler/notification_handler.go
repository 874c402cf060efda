package notificationhandler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formgrid/forms-api/internal/infrastructure/logger"
	"github.com/formgrid/forms-api/internal/infrastructure/realtime"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/middlewares"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/responses"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

const heartbeatInterval = 25 * time.Second

// NotificationHandler streams owner notifications over SSE
type NotificationHandler struct {
	hub *realtime.Hub
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(hub *realtime.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub}
}

// Stream handles GET /v1/notifications/stream. Each connected client gets a
// dedicated buffered channel; slow clients drop events rather than block
// submission processing.
func (h *NotificationHandler) Stream(reqCtx *gin.Context) {
	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "2b3c4c5d-6e7f-489a-2b34-5d6e7f80913a")
		return
	}

	flusher, ok := middlewares.PrepareSSE(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "streaming unsupported", "3c4d5d6e-7f80-49ab-3c45-6e7f8091a24b")
		return
	}

	events, unsubscribe := h.hub.Subscribe(u.ID)
	defer unsubscribe()

	log := logger.GetLogger()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	fmt.Fprint(reqCtx.Writer, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ctx := reqCtx.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(reqCtx.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case n, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				log.Error().Err(err).Msg("failed to marshal notification event")
				continue
			}
			fmt.Fprintf(reqCtx.Writer, "event: %s\ndata: %s\n\n", n.Type, payload)
			flusher.Flush()
		}
	}
}
