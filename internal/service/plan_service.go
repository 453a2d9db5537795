package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campoverde/plano-api/internal/catalog"
	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/models"
	"github.com/campoverde/plano-api/internal/observability"
	"github.com/campoverde/plano-api/internal/repository"
)

var (
	// ErrOrganizationNotFound indicates the organization does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrActionDefinitionNotFound indicates the template action id is unknown.
	ErrActionDefinitionNotFound = errors.New("action definition not found")
	// ErrCustomActionNotFound indicates the custom action does not exist for
	// this organization.
	ErrCustomActionNotFound = errors.New("custom action not found")
	// ErrUnknownPlanType indicates the plan type is not part of the catalog.
	ErrUnknownPlanType = errors.New("unknown plan type")
	// ErrMalformedActionKey indicates an action key that cannot be routed.
	ErrMalformedActionKey = errors.New("malformed action key")
)

// PlanService exposes the plan-of-action use cases for one organization: the
// merged read view and every mutation of the override and custom stores.
type PlanService interface {
	GetPlanView(ctx context.Context, orgID uint) (dto.PlanViewResponse, error)
	UpsertOverride(ctx context.Context, orgID uint, definitionID string, patch dto.ActionPatchRequest, actor string) (dto.ActionResponse, error)
	CreateCustomAction(ctx context.Context, orgID uint, payload dto.CustomActionCreateRequest, actor string) (dto.ActionResponse, error)
	UpdateCustomAction(ctx context.Context, orgID uint, customID uint, patch dto.ActionPatchRequest, actor string) (dto.ActionResponse, error)
	DeleteCustomAction(ctx context.Context, orgID uint, customID uint, actor string) error
	SetSuppressed(ctx context.Context, orgID uint, actionKey string, suppressed bool, actor string) (dto.ActionResponse, error)
}

type planService struct {
	catalog   *catalog.Catalog
	orgs      repository.OrganizationRepository
	overrides repository.OverrideRepository
	customs   repository.CustomActionRepository
	notes     repository.NoteRepository
	evidence  repository.EvidenceRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	activity  ActivityPublisher
	logger    zerolog.Logger
	location  *time.Location
	now       func() time.Time
}

// NewPlanService builds the plan service. The cache client and activity
// publisher may be nil; both are best-effort collaborators.
func NewPlanService(
	cat *catalog.Catalog,
	orgs repository.OrganizationRepository,
	overrides repository.OverrideRepository,
	customs repository.CustomActionRepository,
	notes repository.NoteRepository,
	evidence repository.EvidenceRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	activity ActivityPublisher,
	location *time.Location,
	logger zerolog.Logger,
) PlanService {
	return &planService{
		catalog:   cat,
		orgs:      orgs,
		overrides: overrides,
		customs:   customs,
		notes:     notes,
		evidence:  evidence,
		cache:     cache,
		cacheTTL:  cacheTTL,
		activity:  activity,
		location:  location,
		logger:    logger.With().Str("component", "plan_service").Logger(),
		now:       time.Now,
	}
}

func planViewCacheKey(orgID uint) string {
	return fmt.Sprintf("plan:view:%d", orgID)
}

func (s *planService) GetPlanView(ctx context.Context, orgID uint) (dto.PlanViewResponse, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return dto.PlanViewResponse{}, err
	}

	cacheKey := planViewCacheKey(orgID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var view dto.PlanViewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &view); unmarshalErr == nil {
				s.logger.Debug().Uint("organization_id", orgID).Msg("plan view cache hit")
				return view, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read plan view cache")
		}
	}

	start := time.Now()
	view, err := s.buildPlanView(ctx, orgID)
	if err != nil {
		return dto.PlanViewResponse{}, err
	}
	observability.PlanMergeLatency().Observe(time.Since(start).Seconds())

	if s.cache != nil {
		if payload, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store plan view cache")
			}
		}
	}

	return view, nil
}

func (s *planService) buildPlanView(ctx context.Context, orgID uint) (dto.PlanViewResponse, error) {
	overrides, err := s.overrides.ListByOrganization(ctx, orgID)
	if err != nil {
		return dto.PlanViewResponse{}, err
	}

	customs, err := s.customs.ListByOrganization(ctx, orgID)
	if err != nil {
		return dto.PlanViewResponse{}, err
	}

	view := dto.PlanViewResponse{
		OrganizationID: orgID,
		Plans:          buildPlanTree(s.catalog, overrides, customs, s.today()),
	}

	for _, kind := range []string{models.NoteKindDraft, models.NoteKindSynthesis} {
		note, err := s.notes.Get(ctx, orgID, kind)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.PlanViewResponse{}, err
			}
			continue
		}
		response := dto.NoteResponse{Text: note.Text, UpdatedBy: note.UpdatedBy, UpdatedAt: &note.UpdatedAt}
		if kind == models.NoteKindDraft {
			view.Notes.Draft = response
		} else {
			view.Notes.Synthesis = response
		}
	}

	evidence, err := s.evidence.ListByOrganization(ctx, orgID)
	if err != nil {
		return dto.PlanViewResponse{}, err
	}
	view.Evidence = dto.NewEvidenceResponseSlice(evidence)

	return view, nil
}

func (s *planService) UpsertOverride(ctx context.Context, orgID uint, definitionID string, patch dto.ActionPatchRequest, actor string) (dto.ActionResponse, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return dto.ActionResponse{}, err
	}

	def, ok := s.catalog.Definition(definitionID)
	if !ok {
		return dto.ActionResponse{}, ErrActionDefinitionNotFound
	}

	override, err := s.overrides.GetByAction(ctx, orgID, definitionID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActionResponse{}, err
		}
		override = models.ActionOverride{OrganizationID: orgID, ActionDefinitionID: definitionID}
	}

	applyOverridePatch(&override, patch)

	if err := s.overrides.Save(ctx, &override); err != nil {
		return dto.ActionResponse{}, err
	}

	s.invalidateView(ctx, orgID)
	s.publish(ctx, dto.ActivityEvent{
		OrganizationID: orgID,
		Verb:           dto.ActivityOverrideUpdated,
		ActionKey:      models.TemplateActionKey(definitionID),
		Actor:          actor,
	})
	s.logger.Info().Uint("organization_id", orgID).Str("action_definition_id", definitionID).Msg("override saved")

	return effectiveTemplateAction(def, &override, s.today()), nil
}

func (s *planService) CreateCustomAction(ctx context.Context, orgID uint, payload dto.CustomActionCreateRequest, actor string) (dto.ActionResponse, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return dto.ActionResponse{}, err
	}

	if !s.catalog.HasPlanType(payload.PlanType) {
		return dto.ActionResponse{}, ErrUnknownPlanType
	}

	action := models.CustomAction{
		OrganizationID: orgID,
		PlanType:       payload.PlanType,
		GroupName:      payload.GroupName,
	}

	if err := s.customs.Create(ctx, &action); err != nil {
		return dto.ActionResponse{}, err
	}

	s.invalidateView(ctx, orgID)
	s.publish(ctx, dto.ActivityEvent{
		OrganizationID: orgID,
		Verb:           dto.ActivityCustomCreated,
		ActionKey:      models.CustomActionKey(action.ID),
		Actor:          actor,
	})
	s.logger.Info().Uint("organization_id", orgID).Uint("custom_action_id", action.ID).Msg("custom action created")

	return effectiveCustomAction(action, s.today()), nil
}

func (s *planService) UpdateCustomAction(ctx context.Context, orgID uint, customID uint, patch dto.ActionPatchRequest, actor string) (dto.ActionResponse, error) {
	action, err := s.ownedCustomAction(ctx, orgID, customID)
	if err != nil {
		return dto.ActionResponse{}, err
	}

	applyCustomActionPatch(&action, patch)

	if err := s.customs.Save(ctx, &action); err != nil {
		return dto.ActionResponse{}, err
	}

	s.invalidateView(ctx, orgID)
	s.publish(ctx, dto.ActivityEvent{
		OrganizationID: orgID,
		Verb:           dto.ActivityCustomUpdated,
		ActionKey:      models.CustomActionKey(action.ID),
		Actor:          actor,
	})

	return effectiveCustomAction(action, s.today()), nil
}

func (s *planService) DeleteCustomAction(ctx context.Context, orgID uint, customID uint, actor string) error {
	action, err := s.ownedCustomAction(ctx, orgID, customID)
	if err != nil {
		return err
	}

	if err := s.customs.Delete(ctx, action.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomActionNotFound
		}
		return err
	}

	s.invalidateView(ctx, orgID)
	s.publish(ctx, dto.ActivityEvent{
		OrganizationID: orgID,
		Verb:           dto.ActivityCustomDeleted,
		ActionKey:      models.CustomActionKey(action.ID),
		Actor:          actor,
	})
	s.logger.Info().Uint("organization_id", orgID).Uint("custom_action_id", action.ID).Msg("custom action deleted")

	return nil
}

func (s *planService) SetSuppressed(ctx context.Context, orgID uint, actionKey string, suppressed bool, actor string) (dto.ActionResponse, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return dto.ActionResponse{}, err
	}

	source, rawID, err := models.ParseActionKey(actionKey)
	if err != nil {
		return dto.ActionResponse{}, fmt.Errorf("%w: %v", ErrMalformedActionKey, err)
	}

	var response dto.ActionResponse

	switch source {
	case models.ActionSourceTemplate:
		def, ok := s.catalog.Definition(rawID)
		if !ok {
			return dto.ActionResponse{}, ErrActionDefinitionNotFound
		}

		override, err := s.overrides.GetByAction(ctx, orgID, rawID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ActionResponse{}, err
			}
			override = models.ActionOverride{OrganizationID: orgID, ActionDefinitionID: rawID}
		}
		override.Suppressed = suppressed

		if err := s.overrides.Save(ctx, &override); err != nil {
			return dto.ActionResponse{}, err
		}
		response = effectiveTemplateAction(def, &override, s.today())

	case models.ActionSourceCustom:
		id, _ := strconv.ParseUint(rawID, 10, 64)
		action, err := s.ownedCustomAction(ctx, orgID, uint(id))
		if err != nil {
			return dto.ActionResponse{}, err
		}
		action.Suppressed = suppressed

		if err := s.customs.Save(ctx, &action); err != nil {
			return dto.ActionResponse{}, err
		}
		response = effectiveCustomAction(action, s.today())
	}

	s.invalidateView(ctx, orgID)
	s.publish(ctx, dto.ActivityEvent{
		OrganizationID: orgID,
		Verb:           dto.ActivitySuppressionChanged,
		ActionKey:      actionKey,
		Actor:          actor,
	})

	return response, nil
}

// ownedCustomAction loads a custom action and verifies it belongs to orgID.
// Another organization's action is reported as not found, never as forbidden,
// so ids do not leak across organizations.
func (s *planService) ownedCustomAction(ctx context.Context, orgID uint, customID uint) (models.CustomAction, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return models.CustomAction{}, err
	}

	action, err := s.customs.GetByID(ctx, customID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CustomAction{}, ErrCustomActionNotFound
		}
		return models.CustomAction{}, err
	}
	if action.OrganizationID != orgID {
		return models.CustomAction{}, ErrCustomActionNotFound
	}

	return action, nil
}

func (s *planService) requireOrganization(ctx context.Context, orgID uint) error {
	exists, err := s.orgs.Exists(ctx, orgID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrOrganizationNotFound
	}
	return nil
}

func (s *planService) today() time.Time {
	return s.now().In(s.location)
}

func (s *planService) invalidateView(ctx context.Context, orgID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, planViewCacheKey(orgID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("organization_id", orgID).Msg("failed to invalidate plan view cache")
	}
}

func (s *planService) publish(ctx context.Context, event dto.ActivityEvent) {
	if s.activity == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	s.activity.Publish(ctx, event)
}

func applyOverridePatch(override *models.ActionOverride, patch dto.ActionPatchRequest) {
	if patch.Title.Set {
		override.Title = patch.Title.Value
	}
	if patch.Responsible.Set {
		override.Responsible = patch.Responsible.Value
	}
	if patch.StartDate.Set {
		override.StartDate = toStoredDate(patch.StartDate.Value)
	}
	if patch.EndDate.Set {
		override.EndDate = toStoredDate(patch.EndDate.Value)
	}
	if patch.HowItWillBeDone.Set {
		override.HowItWillBeDone = patch.HowItWillBeDone.Value
	}
	if patch.Resources.Set {
		override.Resources = patch.Resources.Value
	}
	if patch.Suppressed != nil {
		override.Suppressed = *patch.Suppressed
	}
}

func applyCustomActionPatch(action *models.CustomAction, patch dto.ActionPatchRequest) {
	if patch.Title.Set {
		action.Title = patch.Title.Value
	}
	if patch.Responsible.Set {
		action.Responsible = patch.Responsible.Value
	}
	if patch.StartDate.Set {
		action.StartDate = toStoredDate(patch.StartDate.Value)
	}
	if patch.EndDate.Set {
		action.EndDate = toStoredDate(patch.EndDate.Value)
	}
	if patch.HowItWillBeDone.Set {
		action.HowItWillBeDone = patch.HowItWillBeDone.Value
	}
	if patch.Resources.Set {
		action.Resources = patch.Resources.Value
	}
	if patch.Suppressed != nil {
		action.Suppressed = *patch.Suppressed
	}
}

func toStoredDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(*t)
	return &d
}
