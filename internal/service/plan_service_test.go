package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/models"
)

type planFixture struct {
	svc       *planService
	orgs      *orgRepoStub
	overrides *overrideRepoStub
	customs   *customRepoStub
	notes     *noteRepoStub
	evidence  *evidenceRepoStub
	activity  *activityRecorder
}

func newPlanFixture(t *testing.T, cache *redis.Client) planFixture {
	t.Helper()
	f := planFixture{
		orgs:      &orgRepoStub{ids: map[uint]bool{1: true, 2: true}},
		overrides: newOverrideRepoStub(),
		customs:   newCustomRepoStub(),
		notes:     newNoteRepoStub(),
		evidence:  newEvidenceRepoStub(),
		activity:  &activityRecorder{},
	}
	svc := NewPlanService(testCatalog(t), f.orgs, f.overrides, f.customs, f.notes, f.evidence, cache, time.Minute, f.activity, time.UTC, testLogger())
	f.svc = svc.(*planService)
	f.svc.now = func() time.Time { return day("2024-06-01") }
	return f
}

func TestPlanServiceGetPlanViewUnknownOrganization(t *testing.T) {
	f := newPlanFixture(t, nil)

	_, err := f.svc.GetPlanView(context.Background(), 99)
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestPlanServiceGetPlanViewMergesAllStores(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.UpsertOverride(ctx, 1, "go-doc-01", dto.ActionPatchRequest{
		Title: dto.NullableString{Set: true, Value: strPtr("Atualizar estatuto")},
	}, "maria@coop.br")
	require.NoError(t, err)

	created, err := f.svc.CreateCustomAction(ctx, 1, dto.CustomActionCreateRequest{PlanType: "producao", GroupName: strPtr("Planejamento produtivo")}, "maria@coop.br")
	require.NoError(t, err)

	view, err := f.svc.GetPlanView(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint(1), view.OrganizationID)
	require.Len(t, view.Plans, 4)

	edited := findAction(t, view.Plans, "template:go-doc-01")
	require.Equal(t, "Atualizar estatuto", *edited.Title)

	custom := findAction(t, view.Plans, created.Key)
	require.Equal(t, dto.StatusNotStarted, custom.Status)

	require.Empty(t, view.Evidence)
	require.Nil(t, view.Notes.Draft.Text)
}

func TestPlanServiceUpsertOverrideCreatesRowLazily(t *testing.T) {
	f := newPlanFixture(t, nil)

	action, err := f.svc.UpsertOverride(context.Background(), 1, "go-doc-01", dto.ActionPatchRequest{
		Title:       dto.NullableString{Set: true, Value: strPtr("Atualizar CNPJ")},
		Responsible: dto.NullableString{Set: true, Value: strPtr("Maria")},
	}, "maria@coop.br")
	require.NoError(t, err)

	require.Equal(t, "template:go-doc-01", action.Key)
	require.Equal(t, "Atualizar CNPJ", *action.Title)
	require.Equal(t, "Maria", *action.Responsible)
	require.Equal(t, dto.StatusNotStarted, action.Status)
	require.Len(t, f.overrides.rows, 1)
	require.Equal(t, []string{dto.ActivityOverrideUpdated}, f.activity.verbs())
}

func TestPlanServiceUpsertOverrideUnknownDefinition(t *testing.T) {
	f := newPlanFixture(t, nil)

	_, err := f.svc.UpsertOverride(context.Background(), 1, "nope-99", dto.ActionPatchRequest{}, "maria@coop.br")
	require.ErrorIs(t, err, ErrActionDefinitionNotFound)
	require.Empty(t, f.overrides.rows)
}

func TestPlanServiceUpsertOverrideDistinguishesNullFromAbsent(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.UpsertOverride(ctx, 1, "go-doc-01", dto.ActionPatchRequest{
		Title:       dto.NullableString{Set: true, Value: strPtr("Atualizar CNPJ")},
		Responsible: dto.NullableString{Set: true, Value: strPtr("Maria")},
	}, "maria@coop.br")
	require.NoError(t, err)

	// Explicit null clears the title; the absent responsible stays.
	action, err := f.svc.UpsertOverride(ctx, 1, "go-doc-01", dto.ActionPatchRequest{
		Title: dto.NullableString{Set: true, Value: nil},
	}, "maria@coop.br")
	require.NoError(t, err)

	require.Nil(t, action.Title)
	require.Equal(t, "Maria", *action.Responsible)
	require.Len(t, f.overrides.rows, 1, "clearing fields must not create a second row")
}

func TestPlanServiceUpsertOverrideParsesDates(t *testing.T) {
	f := newPlanFixture(t, nil)
	start := day("2024-01-01")
	end := day("2024-01-02")

	action, err := f.svc.UpsertOverride(context.Background(), 1, "go-doc-01", dto.ActionPatchRequest{
		StartDate: dto.NullableDate{Set: true, Value: &start},
		EndDate:   dto.NullableDate{Set: true, Value: &end},
	}, "maria@coop.br")
	require.NoError(t, err)

	require.Equal(t, "2024-01-01", *action.StartDate)
	require.Equal(t, "2024-01-02", *action.EndDate)
	require.Equal(t, dto.StatusCompleted, action.Status)
}

func TestPlanServiceSuppressionIsIdempotent(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.SetSuppressed(ctx, 1, "template:go-doc-01", true, "maria@coop.br")
	require.NoError(t, err)
	second, err := f.svc.SetSuppressed(ctx, 1, "template:go-doc-01", true, "maria@coop.br")
	require.NoError(t, err)

	require.Equal(t, dto.StatusSuppressed, first.Status)
	require.Equal(t, dto.StatusSuppressed, second.Status)
	require.Len(t, f.overrides.rows, 1, "repeated suppression reuses the same override row")

	row := f.overrides.rows[overrideKey(1, "go-doc-01")]
	require.True(t, row.Suppressed)
	require.Nil(t, row.Title)
	require.Nil(t, row.StartDate)
}

func TestPlanServiceSuppressionRoundTrip(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.SetSuppressed(ctx, 1, "template:go-doc-01", true, "maria@coop.br")
	require.NoError(t, err)

	action, err := f.svc.SetSuppressed(ctx, 1, "template:go-doc-01", false, "maria@coop.br")
	require.NoError(t, err)

	require.False(t, action.Suppressed)
	require.Equal(t, dto.StatusNotStarted, action.Status)
	require.Len(t, f.overrides.rows, 1, "unsuppressing keeps the row around")
}

func TestPlanServiceSuppressionRejectsMalformedKeys(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	for _, key := range []string{"", "go-doc-01", "template:", "custom:abc", "other:1"} {
		_, err := f.svc.SetSuppressed(ctx, 1, key, true, "maria@coop.br")
		require.ErrorIs(t, err, ErrMalformedActionKey, "key %q", key)
	}
}

func TestPlanServiceSuppressionOnCustomAction(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.CreateCustomAction(ctx, 1, dto.CustomActionCreateRequest{PlanType: "producao"}, "maria@coop.br")
	require.NoError(t, err)

	action, err := f.svc.SetSuppressed(ctx, 1, created.Key, true, "maria@coop.br")
	require.NoError(t, err)
	require.Equal(t, dto.StatusSuppressed, action.Status)
}

func TestPlanServiceCustomActionLifecycle(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	baseline, err := f.svc.GetPlanView(ctx, 1)
	require.NoError(t, err)

	created, err := f.svc.CreateCustomAction(ctx, 1, dto.CustomActionCreateRequest{PlanType: "producao", GroupName: strPtr("Planejamento produtivo")}, "maria@coop.br")
	require.NoError(t, err)
	require.Equal(t, "custom:1", created.Key)
	require.Nil(t, created.Title)
	require.Equal(t, dto.StatusNotStarted, created.Status)

	updated, err := f.svc.UpdateCustomAction(ctx, 1, 1, dto.ActionPatchRequest{
		Title: dto.NullableString{Set: true, Value: strPtr("Mapear safra")},
	}, "maria@coop.br")
	require.NoError(t, err)
	require.Equal(t, "Mapear safra", *updated.Title)

	require.NoError(t, f.svc.DeleteCustomAction(ctx, 1, 1, "maria@coop.br"))

	// Deleting the only custom action restores the baseline tree.
	restored, err := f.svc.GetPlanView(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, baseline.Plans, restored.Plans)

	require.ErrorIs(t, f.svc.DeleteCustomAction(ctx, 1, 1, "maria@coop.br"), ErrCustomActionNotFound)
	require.Equal(t, []string{
		dto.ActivityCustomCreated,
		dto.ActivityCustomUpdated,
		dto.ActivityCustomDeleted,
	}, f.activity.verbs())
}

func TestPlanServiceDeleteKeepsSiblingKeysStable(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.CreateCustomAction(ctx, 1, dto.CustomActionCreateRequest{PlanType: "producao"}, "maria@coop.br")
	require.NoError(t, err)
	second, err := f.svc.CreateCustomAction(ctx, 1, dto.CustomActionCreateRequest{PlanType: "producao"}, "maria@coop.br")
	require.NoError(t, err)
	require.Equal(t, "custom:1", first.Key)
	require.Equal(t, "custom:2", second.Key)

	require.NoError(t, f.svc.DeleteCustomAction(ctx, 1, 1, "maria@coop.br"))

	view, err := f.svc.GetPlanView(ctx, 1)
	require.NoError(t, err)
	remaining := findAction(t, view.Plans, "custom:2")
	require.Equal(t, "custom:2", remaining.Key)
}

func TestPlanServiceCreateCustomActionUnknownPlanType(t *testing.T) {
	f := newPlanFixture(t, nil)

	_, err := f.svc.CreateCustomAction(context.Background(), 1, dto.CustomActionCreateRequest{PlanType: "financeiro"}, "maria@coop.br")
	require.ErrorIs(t, err, ErrUnknownPlanType)
}

func TestPlanServiceCustomActionsAreOrganizationScoped(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.CreateCustomAction(ctx, 2, dto.CustomActionCreateRequest{PlanType: "producao"}, "ana@coop.br")
	require.NoError(t, err)
	require.Equal(t, "custom:1", created.Key)

	// Another organization addressing the same id gets not-found, never a
	// permission error that would confirm the id exists.
	_, err = f.svc.UpdateCustomAction(ctx, 1, 1, dto.ActionPatchRequest{}, "maria@coop.br")
	require.ErrorIs(t, err, ErrCustomActionNotFound)
	require.ErrorIs(t, f.svc.DeleteCustomAction(ctx, 1, 1, "maria@coop.br"), ErrCustomActionNotFound)

	// And the owner's view is untouched by the attempts.
	view, err := f.svc.GetPlanView(ctx, 2)
	require.NoError(t, err)
	findAction(t, view.Plans, "custom:1")
}

func TestPlanServiceOverridesAreOrganizationScoped(t *testing.T) {
	f := newPlanFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.UpsertOverride(ctx, 1, "go-doc-01", dto.ActionPatchRequest{
		Title: dto.NullableString{Set: true, Value: strPtr("Org um")},
	}, "maria@coop.br")
	require.NoError(t, err)

	view, err := f.svc.GetPlanView(ctx, 2)
	require.NoError(t, err)
	action := findAction(t, view.Plans, "template:go-doc-01")
	require.Nil(t, action.Title, "overrides must not leak across organizations")
}

func TestPlanServiceCachesViewAndInvalidatesOnMutation(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	f := newPlanFixture(t, client)
	ctx := context.Background()

	first, err := f.svc.GetPlanView(ctx, 1)
	require.NoError(t, err)
	require.True(t, server.Exists("plan:view:1"))

	// A direct store change is invisible while the cache entry lives.
	sideLoaded := models.ActionOverride{OrganizationID: 1, ActionDefinitionID: "go-doc-01", Title: strPtr("Fora do cache")}
	require.NoError(t, f.overrides.Save(ctx, &sideLoaded))
	cached, err := f.svc.GetPlanView(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, first, cached)

	// A mutation through the service drops the entry.
	_, err = f.svc.UpsertOverride(ctx, 1, "go-doc-02", dto.ActionPatchRequest{
		Title: dto.NullableString{Set: true, Value: strPtr("Nova ata")},
	}, "maria@coop.br")
	require.NoError(t, err)
	require.False(t, server.Exists("plan:view:1"))

	fresh, err := f.svc.GetPlanView(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Fora do cache", *findAction(t, fresh.Plans, "template:go-doc-01").Title)
	require.Equal(t, "Nova ata", *findAction(t, fresh.Plans, "template:go-doc-02").Title)
}
