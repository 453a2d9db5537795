package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/observability"
)

// ErrActivityStreamUnavailable indicates no messaging backend is configured.
var ErrActivityStreamUnavailable = errors.New("activity stream unavailable")

// ActivityPublisher broadcasts plan mutations. Publishing is best-effort and
// must never fail the mutation that triggered it.
type ActivityPublisher interface {
	Publish(ctx context.Context, event dto.ActivityEvent)
}

// ActivityService publishes plan activity events to NATS and lets consumers
// subscribe per organization. Both sides tolerate a nil connection.
type ActivityService interface {
	ActivityPublisher
	Subscribe(orgID uint, handler func(dto.ActivityEvent)) (func(), error)
}

type activityService struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

// NewActivityService builds the NATS-backed activity broadcaster.
func NewActivityService(conn *nats.Conn, subjectBase string, logger zerolog.Logger) ActivityService {
	base := strings.TrimSuffix(subjectBase, ".")
	if base == "" {
		base = "plano.activity"
	}
	return &activityService{
		conn:        conn,
		subjectBase: base,
		logger:      logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) subject(orgID uint) string {
	return fmt.Sprintf("%s.%d", s.subjectBase, orgID)
}

func (s *activityService) Publish(_ context.Context, event dto.ActivityEvent) {
	if s.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode activity event")
		return
	}

	if err := s.conn.Publish(s.subject(event.OrganizationID), payload); err != nil {
		s.logger.Warn().Err(err).Uint("organization_id", event.OrganizationID).Msg("failed to publish activity event")
		return
	}

	observability.ActivityPublished().WithLabelValues(event.Verb).Inc()
}

// Subscribe delivers the organization's activity events to handler until the
// returned cancel function is called.
func (s *activityService) Subscribe(orgID uint, handler func(dto.ActivityEvent)) (func(), error) {
	if s.conn == nil {
		return nil, ErrActivityStreamUnavailable
	}

	sub, err := s.conn.Subscribe(s.subject(orgID), func(msg *nats.Msg) {
		var event dto.ActivityEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			s.logger.Warn().Err(err).Msg("discarding malformed activity event")
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to activity events: %w", err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to unsubscribe from activity events")
		}
	}, nil
}
