package repository

import (
	"testing"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullChain = []model.Stage{model.StageMIC, model.StageSIC, model.StagePM}

func TestStageConditionsPermissive(t *testing.T) {
	conds := StageConditions(fullChain, StageFilter{
		Stage:  model.StagePM,
		Status: model.StatusPending,
	})
	require.Len(t, conds, 3)

	// Preceding stages only need to not be rejected.
	assert.Equal(t, "mic_status", conds[0].Column)
	assert.ElementsMatch(t, []model.StageStatus{model.StatusPending, model.StatusApproved}, conds[0].Statuses)
	assert.Equal(t, "sic_status", conds[1].Column)
	assert.ElementsMatch(t, []model.StageStatus{model.StatusPending, model.StatusApproved}, conds[1].Statuses)

	assert.Equal(t, "pm_status", conds[2].Column)
	assert.Equal(t, []model.StageStatus{model.StatusPending}, conds[2].Statuses)
}

func TestStageConditionsStrict(t *testing.T) {
	conds := StageConditions(fullChain, StageFilter{
		Stage:  model.StageSIC,
		Status: model.StatusPending,
		Strict: true,
	})
	require.Len(t, conds, 2)

	assert.Equal(t, "mic_status", conds[0].Column)
	assert.Equal(t, []model.StageStatus{model.StatusApproved}, conds[0].Statuses)
	assert.Equal(t, "sic_status", conds[1].Column)
	assert.Equal(t, []model.StageStatus{model.StatusPending}, conds[1].Statuses)
}

func TestStageConditionsFirstStageHasNoPredecessors(t *testing.T) {
	conds := StageConditions(fullChain, StageFilter{
		Stage:  model.StageMIC,
		Status: model.StatusApproved,
		Strict: true,
	})
	require.Len(t, conds, 1)
	assert.Equal(t, "mic_status", conds[0].Column)
	assert.Equal(t, []model.StageStatus{model.StatusApproved}, conds[0].Statuses)
}

func TestStageConditionsSingleStageChain(t *testing.T) {
	conds := StageConditions([]model.Stage{model.StagePM}, StageFilter{
		Stage:  model.StagePM,
		Status: model.StatusPending,
	})
	require.Len(t, conds, 1)
	assert.Equal(t, "pm_status", conds[0].Column)
}
