package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casenotify/internal/types"
)

func TestResolve_CaseStatusEvents(t *testing.T) {
	older := types.CaseStatus{URL: "s1", SetAt: time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)}
	newer := types.CaseStatus{URL: "s2", SetAt: time.Date(2023, 9, 2, 0, 0, 0, 0, time.UTC)}

	tests := []struct {
		name      string
		statuses  types.CaseStatuses
		final     bool
		want      Kind
		wantTypes int
	}{
		{name: "single status is created", statuses: types.CaseStatuses{older}, want: CaseCreated, wantTypes: 0},
		{name: "non-final update", statuses: types.CaseStatuses{newer, older}, want: CaseStatusUpdated, wantTypes: 1},
		{name: "final status closes", statuses: types.CaseStatuses{newer, older}, final: true, want: CaseClosed, wantTypes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := newFakeData()
			data.statuses = tt.statuses
			data.caseType.IsFinalStatus = tt.final

			res, err := Resolve(context.Background(), data, ObjectTypes{}, statusEvent())
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Kind)
			assert.Equal(t, tt.want, res.Scenario.Kind())
			assert.Equal(t, tt.statuses, res.Statuses)
			assert.Equal(t, tt.wantTypes, data.calls["GetLastCaseType"])
			if tt.wantTypes > 0 {
				require.NotNil(t, res.CaseType)
				assert.Equal(t, tt.final, res.CaseType.IsFinalStatus)
			} else {
				assert.Nil(t, res.CaseType)
			}
		})
	}
}

func TestResolve_ObjectEvents(t *testing.T) {
	objects := ObjectTypes{Task: testTaskType, Message: testMessageType}

	res, err := Resolve(context.Background(), newFakeData(), objects, objectEvent(testTaskType))
	require.NoError(t, err)
	assert.Equal(t, TaskAssigned, res.Kind)

	res, err = Resolve(context.Background(), newFakeData(), objects, objectEvent(testMessageType))
	require.NoError(t, err)
	assert.Equal(t, MessageReceived, res.Kind)
}

func TestResolve_UnknownObjectTypeAborts(t *testing.T) {
	objects := ObjectTypes{Task: testTaskType, Message: testMessageType}

	for _, objectType := range []uuid.UUID{uuid.New(), uuid.New(), uuid.Nil} {
		_, err := Resolve(context.Background(), newFakeData(), objects, objectEvent(objectType))
		require.Error(t, err)

		result := types.ResultFromError("resolve", err)
		assert.Equal(t, types.StatusAborted, result.Status())
		assert.False(t, types.CauseOf(types.ErrCodeAbortUnknownObjectType).Retryable())
	}

	ev := objectEvent(testTaskType)
	ev.Attributes.ObjectType = "not-a-url"
	_, err := Resolve(context.Background(), newFakeData(), objects, ev)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeAbortUnknownObjectType, appErr.Code)
}

func TestResolve_DecisionAndFallthrough(t *testing.T) {
	data := newFakeData()

	ev := types.Event{Action: types.ActionCreate, Channel: types.ChannelDecisions, Resource: types.ResourceDecision}
	res, err := Resolve(context.Background(), data, ObjectTypes{}, ev)
	require.NoError(t, err)
	assert.Equal(t, DecisionMade, res.Kind)

	for _, ev := range []types.Event{
		{Action: types.ActionUpdate, Channel: types.ChannelCases, Resource: types.ResourceStatus},
		{Action: types.ActionCreate, Channel: types.ChannelCases, Resource: types.ResourceCase},
		{Action: types.ActionCreate, Channel: "documenten", Resource: "enkelvoudiginformatieobject"},
	} {
		res, err := Resolve(context.Background(), data, ObjectTypes{}, ev)
		require.NoError(t, err)
		assert.Equal(t, NotImplemented, res.Kind)
	}
	assert.Zero(t, data.calls["GetCaseStatuses"], "fallthrough must not query backends")
}

func TestFor_EveryKindHasItsScenario(t *testing.T) {
	for _, k := range Kinds() {
		assert.Equal(t, k, For(k).Kind())
		assert.NotEmpty(t, For(k).Description())
	}
	assert.Equal(t, NotImplemented, For(Kind(99)).Kind())
	assert.Equal(t, "notImplemented", Kind(99).String())
}
