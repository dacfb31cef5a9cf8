package repository

import (
	"context"
	"errors"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BillingRepository interface {
	MaterialBillExists(ctx context.Context, sourceID uuid.UUID) (bool, error)
	CreateMaterialBill(ctx context.Context, bill *model.MaterialBillTransaction) error
	FindMaterialBillByID(ctx context.Context, id uuid.UUID) (*model.MaterialBillTransaction, error)
	ListMaterialBillsByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]model.MaterialBillTransaction, int64, error)
	// ListUnbilledMaterialTransactions is the authoritative eligibility read:
	// fully approved transactions minus those already referenced by a bill.
	ListUnbilledMaterialTransactions(ctx context.Context, projectID uuid.UUID) ([]model.MaterialTransaction, error)

	DieselInvoiceExists(ctx context.Context, receiptID uuid.UUID) (bool, error)
	CreateDieselInvoice(ctx context.Context, inv *model.DieselInvoice) error
	FindDieselInvoiceByID(ctx context.Context, id uuid.UUID) (*model.DieselInvoice, error)
	ListDieselInvoicesByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]model.DieselInvoice, int64, error)
	ListUninvoicedDieselReceipts(ctx context.Context, projectID uuid.UUID) ([]model.DieselReceipt, error)

	NextSequence(ctx context.Context, prefix string, mdl any, column string) (int64, error)
}

type billingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) BillingRepository {
	return &billingRepository{db: db}
}

func (r *billingRepository) MaterialBillExists(ctx context.Context, sourceID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.MaterialBillTransaction{}).
		Where("material_transaction_id = ?", sourceID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *billingRepository) CreateMaterialBill(ctx context.Context, bill *model.MaterialBillTransaction) error {
	return GetDB(ctx, r.db).Create(bill).Error
}

func (r *billingRepository) FindMaterialBillByID(ctx context.Context, id uuid.UUID) (*model.MaterialBillTransaction, error) {
	var bill model.MaterialBillTransaction
	err := GetDB(ctx, r.db).Preload("Forms").Preload("Partner").Preload("MaterialTransaction").
		First(&bill, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

func (r *billingRepository) ListMaterialBillsByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]model.MaterialBillTransaction, int64, error) {
	db := GetDB(ctx, r.db)

	base := db.Model(&model.MaterialBillTransaction{}).
		Joins("JOIN material_transactions ON material_transactions.id = material_bill_transactions.material_transaction_id").
		Where("material_transactions.project_id = ?", projectID)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bills []model.MaterialBillTransaction
	offset := (page - 1) * limit
	err := db.Preload("Forms").Preload("Partner").Preload("MaterialTransaction").
		Joins("JOIN material_transactions ON material_transactions.id = material_bill_transactions.material_transaction_id").
		Where("material_transactions.project_id = ?", projectID).
		Order("material_bill_transactions.date DESC, material_bill_transactions.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&bills).Error
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

func (r *billingRepository) ListUnbilledMaterialTransactions(ctx context.Context, projectID uuid.UUID) ([]model.MaterialTransaction, error) {
	db := GetDB(ctx, r.db)
	var txs []model.MaterialTransaction
	billed := db.Model(&model.MaterialBillTransaction{}).Select("material_transaction_id")
	err := db.Preload("Items").
		Where("project_id = ?", projectID).
		Where("pm_status = ?", model.StatusApproved).
		Where("id NOT IN (?)", billed).
		Order("date DESC, created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *billingRepository) DieselInvoiceExists(ctx context.Context, receiptID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.DieselInvoice{}).
		Where("diesel_receipt_id = ?", receiptID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *billingRepository) CreateDieselInvoice(ctx context.Context, inv *model.DieselInvoice) error {
	return GetDB(ctx, r.db).Create(inv).Error
}

func (r *billingRepository) FindDieselInvoiceByID(ctx context.Context, id uuid.UUID) (*model.DieselInvoice, error) {
	var inv model.DieselInvoice
	err := GetDB(ctx, r.db).Preload("Forms").Preload("Partner").Preload("DieselReceipt").
		First(&inv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *billingRepository) ListDieselInvoicesByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]model.DieselInvoice, int64, error) {
	db := GetDB(ctx, r.db)

	base := db.Model(&model.DieselInvoice{}).
		Joins("JOIN diesel_receipts ON diesel_receipts.id = diesel_invoices.diesel_receipt_id").
		Where("diesel_receipts.project_id = ?", projectID)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []model.DieselInvoice
	offset := (page - 1) * limit
	err := db.Preload("Forms").Preload("Partner").Preload("DieselReceipt").
		Joins("JOIN diesel_receipts ON diesel_receipts.id = diesel_invoices.diesel_receipt_id").
		Where("diesel_receipts.project_id = ?", projectID).
		Order("diesel_invoices.date DESC, diesel_invoices.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *billingRepository) ListUninvoicedDieselReceipts(ctx context.Context, projectID uuid.UUID) ([]model.DieselReceipt, error) {
	db := GetDB(ctx, r.db)
	var receipts []model.DieselReceipt
	invoiced := db.Model(&model.DieselInvoice{}).Select("diesel_receipt_id")
	err := db.Preload("Items").
		Where("project_id = ?", projectID).
		Where("mic_status = ? AND sic_status = ? AND pm_status = ?",
			model.StatusApproved, model.StatusApproved, model.StatusApproved).
		Where("id NOT IN (?)", invoiced).
		Order("date DESC, created_at DESC").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// NextSequence counts rows whose numbering column starts with prefix, under a
// transaction-scoped advisory lock so concurrent callers cannot mint the same
// number.
func (r *billingRepository) NextSequence(ctx context.Context, prefix string, mdl any, column string) (int64, error) {
	db := GetDB(ctx, r.db)
	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error; err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(mdl).Where(column+" LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count + 1, nil
}
