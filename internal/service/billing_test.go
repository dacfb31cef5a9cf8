package service

import (
	"context"
	"testing"
	"time"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDocRepo is an in-memory DocumentRepository over material transactions.
type memDocRepo struct {
	docs map[uuid.UUID]*model.MaterialTransaction
}

func (m *memDocRepo) Create(_ context.Context, doc *model.MaterialTransaction) error {
	doc.ID = uuid.New()
	m.docs[doc.ID] = doc
	return nil
}

func (m *memDocRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MaterialTransaction, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return doc, nil
}

func (m *memDocRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.MaterialTransaction, error) {
	return m.FindByID(ctx, id)
}

func (m *memDocRepo) Save(_ context.Context, doc *model.MaterialTransaction) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memDocRepo) List(context.Context, uuid.UUID, *repository.StageFilter, int, int) ([]model.MaterialTransaction, int64, error) {
	return nil, 0, nil
}

func (m *memDocRepo) ReplaceItems(context.Context, *model.MaterialTransaction, []model.LineItemSpec) error {
	return nil
}

func (m *memDocRepo) Delete(_ context.Context, doc *model.MaterialTransaction) error {
	delete(m.docs, doc.ID)
	return nil
}

// memBillingRepo implements just what CreateMaterialBill touches.
type memBillingRepo struct {
	repository.BillingRepository
	bills map[uuid.UUID]*model.MaterialBillTransaction // keyed by source id
	seq   int64
}

func (m *memBillingRepo) MaterialBillExists(_ context.Context, sourceID uuid.UUID) (bool, error) {
	_, ok := m.bills[sourceID]
	return ok, nil
}

func (m *memBillingRepo) CreateMaterialBill(_ context.Context, bill *model.MaterialBillTransaction) error {
	bill.ID = uuid.New()
	m.bills[bill.MaterialTransactionID] = bill
	return nil
}

func (m *memBillingRepo) FindMaterialBillByID(_ context.Context, id uuid.UUID) (*model.MaterialBillTransaction, error) {
	for _, bill := range m.bills {
		if bill.ID == id {
			return bill, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memBillingRepo) NextSequence(_ context.Context, _ string, _ any, _ string) (int64, error) {
	m.seq++
	return m.seq, nil
}

func newBillingServiceForTest() (*memDocRepo, BillingService) {
	docs := &memDocRepo{docs: make(map[uuid.UUID]*model.MaterialTransaction)}
	bills := &memBillingRepo{bills: make(map[uuid.UUID]*model.MaterialBillTransaction)}
	svc := NewBillingService(bills, docs, nil, allowAllIdentity{}, passthroughTx{})
	return docs, svc
}

func approvedMaterialTransaction(docs *memDocRepo) *model.MaterialTransaction {
	tx := &model.MaterialTransaction{}
	tx.ApplyDecision(model.StagePM, model.StatusApproved, nil)
	_ = docs.Create(context.Background(), tx)
	return tx
}

func materialBillRequest(sourceID uuid.UUID) CreateMaterialBillRequest {
	return CreateMaterialBillRequest{
		MaterialTransactionID: sourceID.String(),
		Date:                  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		CreatedBy:             uuid.NewString(),
		Forms: []BillLineRequest{
			{Item: uuid.NewString(), UOMID: uuid.NewString(), Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(250)},
			{Item: uuid.NewString(), UOMID: uuid.NewString(), Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(99.5)},
		},
	}
}

func TestCreateMaterialBill(t *testing.T) {
	docs, svc := newBillingServiceForTest()
	source := approvedMaterialTransaction(docs)

	bill, err := svc.CreateMaterialBill(context.Background(), materialBillRequest(source.ID))
	require.NoError(t, err)

	// 4*250 + 2*99.5
	assert.True(t, bill.TotalValue.Equal(decimal.NewFromInt(1199)), "got %s", bill.TotalValue)
	require.Len(t, bill.Forms, 2)
	assert.True(t, bill.Forms[0].TotalValue.Equal(decimal.NewFromInt(1000)))
	assert.Contains(t, bill.BillNo, "MBL-20260302-")

	assert.Equal(t, model.InvoiceInvoiced, docs.docs[source.ID].IsInvoiced)
}

func TestCreateMaterialBillRejectsUnapprovedSource(t *testing.T) {
	docs, svc := newBillingServiceForTest()
	source := &model.MaterialTransaction{}
	require.NoError(t, docs.Create(context.Background(), source))

	_, err := svc.CreateMaterialBill(context.Background(), materialBillRequest(source.ID))
	assert.ErrorIs(t, err, apperr.ErrSourceNotApproved)
}

func TestCreateMaterialBillIsOneShot(t *testing.T) {
	docs, svc := newBillingServiceForTest()
	source := approvedMaterialTransaction(docs)

	_, err := svc.CreateMaterialBill(context.Background(), materialBillRequest(source.ID))
	require.NoError(t, err)

	_, err = svc.CreateMaterialBill(context.Background(), materialBillRequest(source.ID))
	assert.ErrorIs(t, err, apperr.ErrDuplicateBilling)
}

func TestCreateMaterialBillUnknownSource(t *testing.T) {
	_, svc := newBillingServiceForTest()
	_, err := svc.CreateMaterialBill(context.Background(), materialBillRequest(uuid.New()))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateMaterialBillRejectsNonPositiveLines(t *testing.T) {
	docs, svc := newBillingServiceForTest()
	source := approvedMaterialTransaction(docs)

	req := materialBillRequest(source.ID)
	req.Forms[0].Quantity = decimal.Zero
	_, err := svc.CreateMaterialBill(context.Background(), req)
	assert.True(t, apperr.IsBadInput(err))
}
