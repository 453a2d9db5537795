package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBuildsValidatedCatalog(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, cat.Plans())

	seen := map[string]struct{}{}
	for _, plan := range cat.Plans() {
		_, dup := seen[plan.Type]
		require.False(t, dup, "plan type %s appears twice", plan.Type)
		seen[plan.Type] = struct{}{}

		require.NotEmpty(t, plan.Title)
		require.NotEmpty(t, plan.Groups)
		for _, group := range plan.Groups {
			require.NotEmpty(t, group.Actions)
			for i, def := range group.Actions {
				require.Equal(t, plan.Type, def.PlanType)
				require.Equal(t, group.Name, def.GroupName)
				require.NotEmpty(t, def.HintTitle)
				if i > 0 {
					require.LessOrEqual(t, group.Actions[i-1].OrderIndex, def.OrderIndex, "actions must stay in declared order")
				}
			}
		}
	}
}

func TestDefinitionLookup(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	def, ok := cat.Definition("go-doc-01")
	require.True(t, ok)
	require.Equal(t, "gestao_organizacional", def.PlanType)
	require.NotEmpty(t, def.HintTitle)

	_, ok = cat.Definition("missing-99")
	require.False(t, ok)
}

func TestPlanTypeLookup(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	require.True(t, cat.HasPlanType("producao"))
	require.False(t, cat.HasPlanType("financeiro"))

	groups, ok := cat.ListForPlan("producao")
	require.True(t, ok)
	require.NotEmpty(t, groups)

	_, ok = cat.ListForPlan("financeiro")
	require.False(t, ok)
}

func TestDefaultIsSingleton(t *testing.T) {
	first, err := Default()
	require.NoError(t, err)
	second, err := Default()
	require.NoError(t, err)
	require.Same(t, first, second)
}
