package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campoverde/plano-api/internal/catalog"
	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return cat
}

func strPtr(s string) *string {
	return &s
}

func day(value string) time.Time {
	parsed, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

type orgRepoStub struct {
	ids map[uint]bool
}

func (s *orgRepoStub) GetByID(_ context.Context, id uint) (models.Organization, error) {
	if s.ids[id] {
		return models.Organization{ID: id}, nil
	}
	return models.Organization{}, gorm.ErrRecordNotFound
}

func (s *orgRepoStub) Exists(_ context.Context, id uint) (bool, error) {
	return s.ids[id], nil
}

type overrideRepoStub struct {
	rows   map[string]models.ActionOverride
	nextID uint
}

func newOverrideRepoStub() *overrideRepoStub {
	return &overrideRepoStub{rows: map[string]models.ActionOverride{}}
}

func overrideKey(orgID uint, definitionID string) string {
	return fmt.Sprintf("%d/%s", orgID, definitionID)
}

func (s *overrideRepoStub) GetByAction(_ context.Context, orgID uint, definitionID string) (models.ActionOverride, error) {
	row, ok := s.rows[overrideKey(orgID, definitionID)]
	if !ok {
		return models.ActionOverride{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *overrideRepoStub) ListByOrganization(_ context.Context, orgID uint) ([]models.ActionOverride, error) {
	var rows []models.ActionOverride
	for _, row := range s.rows {
		if row.OrganizationID == orgID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *overrideRepoStub) Save(_ context.Context, override *models.ActionOverride) error {
	if override.ID == 0 {
		s.nextID++
		override.ID = s.nextID
	}
	override.UpdatedAt = time.Now()
	s.rows[overrideKey(override.OrganizationID, override.ActionDefinitionID)] = *override
	return nil
}

type customRepoStub struct {
	rows   map[uint]models.CustomAction
	order  []uint
	nextID uint
}

func newCustomRepoStub() *customRepoStub {
	return &customRepoStub{rows: map[uint]models.CustomAction{}}
}

func (s *customRepoStub) GetByID(_ context.Context, id uint) (models.CustomAction, error) {
	row, ok := s.rows[id]
	if !ok {
		return models.CustomAction{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *customRepoStub) ListByOrganization(_ context.Context, orgID uint) ([]models.CustomAction, error) {
	var rows []models.CustomAction
	for _, id := range s.order {
		row, ok := s.rows[id]
		if ok && row.OrganizationID == orgID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *customRepoStub) Create(_ context.Context, action *models.CustomAction) error {
	s.nextID++
	action.ID = s.nextID
	action.CreatedAt = time.Now()
	s.rows[action.ID] = *action
	s.order = append(s.order, action.ID)
	return nil
}

func (s *customRepoStub) Save(_ context.Context, action *models.CustomAction) error {
	if _, ok := s.rows[action.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	action.UpdatedAt = time.Now()
	s.rows[action.ID] = *action
	return nil
}

func (s *customRepoStub) Delete(_ context.Context, id uint) error {
	if _, ok := s.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.rows, id)
	return nil
}

type noteRepoStub struct {
	rows   map[string]models.CollaborativeNote
	nextID uint
}

func newNoteRepoStub() *noteRepoStub {
	return &noteRepoStub{rows: map[string]models.CollaborativeNote{}}
}

func noteKey(orgID uint, kind string) string {
	return fmt.Sprintf("%d/%s", orgID, kind)
}

func (s *noteRepoStub) Get(_ context.Context, orgID uint, kind string) (models.CollaborativeNote, error) {
	row, ok := s.rows[noteKey(orgID, kind)]
	if !ok {
		return models.CollaborativeNote{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *noteRepoStub) Save(_ context.Context, note *models.CollaborativeNote) error {
	if note.ID == 0 {
		s.nextID++
		note.ID = s.nextID
	}
	note.UpdatedAt = time.Now()
	s.rows[noteKey(note.OrganizationID, note.Kind)] = *note
	return nil
}

type evidenceRepoStub struct {
	rows   map[uint]models.Evidence
	order  []uint
	nextID uint
}

func newEvidenceRepoStub() *evidenceRepoStub {
	return &evidenceRepoStub{rows: map[uint]models.Evidence{}}
}

func (s *evidenceRepoStub) GetByID(_ context.Context, id uint) (models.Evidence, error) {
	row, ok := s.rows[id]
	if !ok {
		return models.Evidence{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *evidenceRepoStub) ListByOrganization(_ context.Context, orgID uint) ([]models.Evidence, error) {
	var rows []models.Evidence
	for i := len(s.order) - 1; i >= 0; i-- {
		row, ok := s.rows[s.order[i]]
		if ok && row.OrganizationID == orgID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *evidenceRepoStub) Create(_ context.Context, evidence *models.Evidence) error {
	s.nextID++
	evidence.ID = s.nextID
	evidence.CreatedAt = time.Now()
	s.rows[evidence.ID] = *evidence
	s.order = append(s.order, evidence.ID)
	return nil
}

func (s *evidenceRepoStub) Delete(_ context.Context, id uint) error {
	if _, ok := s.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.rows, id)
	return nil
}

type activityRecorder struct {
	events []dto.ActivityEvent
}

func (r *activityRecorder) Publish(_ context.Context, event dto.ActivityEvent) {
	r.events = append(r.events, event)
}

func (r *activityRecorder) verbs() []string {
	verbs := make([]string, 0, len(r.events))
	for _, event := range r.events {
		verbs = append(verbs, event.Verb)
	}
	return verbs
}
