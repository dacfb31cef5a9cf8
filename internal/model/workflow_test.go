package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFieldApprovalsApplyDecision(t *testing.T) {
	var a FieldApprovals

	reason := strPtr("quantity looks wrong")
	ok := a.ApplyDecision(StageSIC, StatusRejected, reason)
	require.True(t, ok)
	assert.Equal(t, StatusRejected, a.SicStatus)
	require.NotNil(t, a.SicRejectReason)
	assert.Equal(t, "quantity looks wrong", *a.SicRejectReason)

	// Other stages keep their state and reasons.
	assert.Equal(t, StageStatus(""), a.MicStatus)
	assert.Nil(t, a.MicRejectReason)

	// Re-approving the same stage clears its reason, even if one is passed.
	ok = a.ApplyDecision(StageSIC, StatusApproved, strPtr("stale"))
	require.True(t, ok)
	assert.Equal(t, StatusApproved, a.SicStatus)
	assert.Nil(t, a.SicRejectReason)

	assert.False(t, a.ApplyDecision(Stage("warehouse"), StatusApproved, nil))
}

func TestFieldApprovalsRejectReasonsAreIndependent(t *testing.T) {
	var a FieldApprovals
	a.ApplyDecision(StageMIC, StatusRejected, strPtr("mic says no"))
	a.ApplyDecision(StageSIC, StatusRejected, strPtr("sic says no"))

	require.NotNil(t, a.MicRejectReason)
	require.NotNil(t, a.SicRejectReason)
	assert.Equal(t, "mic says no", *a.MicRejectReason)
	assert.Equal(t, "sic says no", *a.SicRejectReason)

	// Approving sic later must not disturb mic's explanation.
	a.ApplyDecision(StageSIC, StatusApproved, nil)
	require.NotNil(t, a.MicRejectReason)
	assert.Equal(t, "mic says no", *a.MicRejectReason)
}

func TestFieldApprovalsFullyApproved(t *testing.T) {
	var a FieldApprovals
	a.ApplyDecision(StageMIC, StatusApproved, nil)
	a.ApplyDecision(StageSIC, StatusApproved, nil)
	assert.False(t, a.FullyApproved())

	a.ApplyDecision(StagePM, StatusApproved, nil)
	assert.True(t, a.FullyApproved())

	// Any stage flipping back breaks full approval; there is no terminal state.
	a.ApplyDecision(StageSIC, StatusPending, nil)
	assert.False(t, a.FullyApproved())
}

func TestPMApprovalOnlyKnowsPMStage(t *testing.T) {
	var a PMApproval

	_, ok := a.StageState(StageMIC)
	assert.False(t, ok)
	assert.False(t, a.ApplyDecision(StageMIC, StatusApproved, nil))

	require.True(t, a.ApplyDecision(StagePM, StatusApproved, nil))
	assert.True(t, a.FullyApproved())
	assert.Equal(t, []Stage{StagePM}, a.ApprovalStages())
}

func TestStageColumn(t *testing.T) {
	assert.Equal(t, "mic_status", StageColumn(StageMIC))
	assert.Equal(t, "sic_status", StageColumn(StageSIC))
	assert.Equal(t, "pm_status", StageColumn(StagePM))
	assert.Equal(t, "", StageColumn(Stage("nope")))
}

func TestConsumptionSheetAttachItems(t *testing.T) {
	sheet := &ConsumptionSheet{}
	sheet.ID = uuid.New()
	equipment := uuid.New()

	start := decimal.NewFromInt(120)
	end := decimal.NewFromInt(145)
	err := sheet.AttachItems([]LineItemSpec{{
		ItemID:      uuid.New(),
		UOMID:       uuid.New(),
		Quantity:    decimal.NewFromInt(40),
		EquipmentID: &equipment,
		MeterStart:  &start,
		MeterEnd:    &end,
	}})
	require.NoError(t, err)
	require.Len(t, sheet.Items, 1)
	assert.Equal(t, sheet.ID, sheet.Items[0].SheetID)
	assert.Equal(t, equipment, sheet.Items[0].EquipmentID)

	err = sheet.AttachItems([]LineItemSpec{{
		ItemID:   uuid.New(),
		UOMID:    uuid.New(),
		Quantity: decimal.NewFromInt(40),
	}})
	assert.Error(t, err, "consumption line without equipment must be rejected")

	err = sheet.AttachItems([]LineItemSpec{{
		ItemID:      uuid.New(),
		UOMID:       uuid.New(),
		Quantity:    decimal.NewFromInt(40),
		EquipmentID: &equipment,
		MeterStart:  &end,
		MeterEnd:    &start,
	}})
	assert.Error(t, err, "meter end before meter start must be rejected")
}

func TestAttachItemsStampsOwnerFK(t *testing.T) {
	req := &DieselRequisition{}
	req.ID = uuid.New()

	err := req.AttachItems([]LineItemSpec{
		{ItemID: uuid.New(), UOMID: uuid.New(), Quantity: decimal.NewFromInt(10)},
		{ItemID: uuid.New(), UOMID: uuid.New(), Quantity: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)
	require.Len(t, req.Items, 2)
	for _, it := range req.Items {
		assert.Equal(t, req.ID, it.RequisitionID)
	}
}
