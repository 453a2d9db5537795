package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/service"
)

// EventsHandler exposes the live plan activity feed over a websocket. Events
// are best-effort: a slow consumer drops messages instead of blocking the
// publisher.
type EventsHandler struct {
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewEventsHandler constructs the handler.
func NewEventsHandler(activity service.ActivityService, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		activity: activity,
		logger:   logger.With().Str("component", "events_handler").Logger(),
	}
}

// Register attaches the websocket upgrade to the organization-scoped group.
func (h *EventsHandler) Register(router fiber.Router, view fiber.Handler) {
	router.Use("/events", view, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/events", websocket.New(h.handleConnection))
}

func (h *EventsHandler) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	orgID, err := strconv.ParseUint(conn.Params("orgID"), 10, 64)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid organization identifier"))
		return
	}

	events := make(chan dto.ActivityEvent, 16)
	cancel, err := h.activity.Subscribe(uint(orgID), func(event dto.ActivityEvent) {
		select {
		case events <- event:
		default:
			// Slow consumer: drop rather than block the subscription callback.
		}
	})
	if err != nil {
		h.logger.Warn().Err(err).Uint64("organization_id", orgID).Msg("activity stream unavailable")
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "activity stream unavailable"))
		return
	}
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-events:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
