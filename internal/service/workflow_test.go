package service

import (
	"testing"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidateDecision(t *testing.T) {
	st, reason, err := validateDecision("approved", nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, st)
	assert.Nil(t, reason)

	// A reason on a non-rejection is discarded, not stored.
	st, reason, err = validateDecision("pending", strPtr("left over"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, st)
	assert.Nil(t, reason)

	st, reason, err = validateDecision("rejected", strPtr("  wrong store  "))
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, st)
	require.NotNil(t, reason)
	assert.Equal(t, "wrong store", *reason)
}

func TestValidateDecisionFailures(t *testing.T) {
	_, _, err := validateDecision("cancelled", nil)
	assert.True(t, apperr.IsBadInput(err))

	_, _, err = validateDecision("rejected", nil)
	assert.True(t, apperr.IsBadInput(err), "rejection without a reason")

	_, _, err = validateDecision("rejected", strPtr("   "))
	assert.True(t, apperr.IsBadInput(err), "blank reason is no reason")
}

func TestValidateStage(t *testing.T) {
	full := &model.DieselRequisition{}
	pmOnly := &model.MaterialTransaction{}

	st, err := validateStage(full, "sic")
	require.NoError(t, err)
	assert.Equal(t, model.StageSIC, st)

	_, err = validateStage(full, "warehouse")
	assert.True(t, apperr.IsBadInput(err))

	// A known stage that this document type does not carry.
	_, err = validateStage(pmOnly, "mic")
	assert.True(t, apperr.IsBadInput(err))

	st, err = validateStage(pmOnly, "pm")
	require.NoError(t, err)
	assert.Equal(t, model.StagePM, st)
}
