package service

import (
	"context"
	"errors"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/models"
	"github.com/campoverde/plano-api/internal/repository"
)

// ErrUnknownNoteKind indicates a note kind outside draft/synthesis.
var ErrUnknownNoteKind = errors.New("unknown note kind")

// NoteService manages the two collaborative free-text fields of an
// organization. Writes overwrite in full: the later writer wins and the
// earlier content is gone. Callers that need to coordinate must do so
// out-of-band.
type NoteService interface {
	Get(ctx context.Context, orgID uint, kind string) (dto.NoteResponse, error)
	Set(ctx context.Context, orgID uint, kind string, text *string, actor string) (dto.NoteResponse, error)
}

type noteService struct {
	repo      repository.NoteRepository
	orgs      repository.OrganizationRepository
	cache     *redis.Client
	activity  ActivityPublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewNoteService builds the collaborative note service. Stored text is
// stripped of markup before persisting.
func NewNoteService(repo repository.NoteRepository, orgs repository.OrganizationRepository, cache *redis.Client, activity ActivityPublisher, logger zerolog.Logger) NoteService {
	return &noteService{
		repo:      repo,
		orgs:      orgs,
		cache:     cache,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "note_service").Logger(),
	}
}

func (s *noteService) Get(ctx context.Context, orgID uint, kind string) (dto.NoteResponse, error) {
	if !models.IsValidNoteKind(kind) {
		return dto.NoteResponse{}, ErrUnknownNoteKind
	}
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return dto.NoteResponse{}, err
	}

	note, err := s.repo.Get(ctx, orgID, kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No note yet is a valid state, not an error.
			return dto.NoteResponse{}, nil
		}
		return dto.NoteResponse{}, err
	}

	return dto.NoteResponse{Text: note.Text, UpdatedBy: note.UpdatedBy, UpdatedAt: &note.UpdatedAt}, nil
}

func (s *noteService) Set(ctx context.Context, orgID uint, kind string, text *string, actor string) (dto.NoteResponse, error) {
	if !models.IsValidNoteKind(kind) {
		return dto.NoteResponse{}, ErrUnknownNoteKind
	}
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return dto.NoteResponse{}, err
	}

	note, err := s.repo.Get(ctx, orgID, kind)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NoteResponse{}, err
		}
		note = models.CollaborativeNote{OrganizationID: orgID, Kind: kind}
	}

	if text != nil {
		sanitized := s.sanitizer.Sanitize(*text)
		note.Text = &sanitized
	} else {
		note.Text = nil
	}
	note.UpdatedBy = actor

	if err := s.repo.Save(ctx, &note); err != nil {
		return dto.NoteResponse{}, err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, planViewCacheKey(orgID)).Err(); err != nil {
			s.logger.Warn().Err(err).Uint("organization_id", orgID).Msg("failed to invalidate plan view cache")
		}
	}
	if s.activity != nil {
		s.activity.Publish(ctx, dto.ActivityEvent{
			OrganizationID: orgID,
			Verb:           dto.ActivityNoteUpdated,
			NoteKind:       kind,
			Actor:          actor,
			OccurredAt:     note.UpdatedAt,
		})
	}
	s.logger.Info().Uint("organization_id", orgID).Str("kind", kind).Str("actor", actor).Msg("collaborative note updated")

	return dto.NoteResponse{Text: note.Text, UpdatedBy: note.UpdatedBy, UpdatedAt: &note.UpdatedAt}, nil
}

func (s *noteService) requireOrganization(ctx context.Context, orgID uint) error {
	exists, err := s.orgs.Exists(ctx, orgID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrOrganizationNotFound
	}
	return nil
}
