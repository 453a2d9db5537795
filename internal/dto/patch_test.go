package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActionPatchDistinguishesAbsentFromNull(t *testing.T) {
	var patch ActionPatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":null,"responsible":"Maria"}`), &patch))

	require.True(t, patch.Title.Set)
	require.Nil(t, patch.Title.Value)

	require.True(t, patch.Responsible.Set)
	require.Equal(t, "Maria", *patch.Responsible.Value)

	require.False(t, patch.StartDate.Set)
	require.False(t, patch.HowItWillBeDone.Set)
	require.Nil(t, patch.Suppressed)
}

func TestActionPatchParsesDates(t *testing.T) {
	var patch ActionPatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"start_date":"2024-03-01","end_date":null}`), &patch))

	require.True(t, patch.StartDate.Set)
	require.Equal(t, "2024-03-01", patch.StartDate.Value.Format(DateLayout))
	require.True(t, patch.EndDate.Set)
	require.Nil(t, patch.EndDate.Value)
}

func TestActionPatchRejectsBadDates(t *testing.T) {
	var patch ActionPatchRequest
	require.Error(t, json.Unmarshal([]byte(`{"start_date":"01/03/2024"}`), &patch))
	require.Error(t, json.Unmarshal([]byte(`{"start_date":"2024-13-40"}`), &patch))
	require.Error(t, json.Unmarshal([]byte(`{"start_date":123}`), &patch))
}

func TestActionPatchIsEmpty(t *testing.T) {
	var patch ActionPatchRequest
	require.True(t, patch.IsEmpty())

	require.NoError(t, json.Unmarshal([]byte(`{"suppressed":false}`), &patch))
	require.False(t, patch.IsEmpty())
	require.NotNil(t, patch.Suppressed)
	require.False(t, *patch.Suppressed)
}
