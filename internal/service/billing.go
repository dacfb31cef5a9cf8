package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type BillLineRequest struct {
	Item      string          `json:"item" binding:"required,uuid"`
	UOMID     string          `json:"uom_id" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

type CreateMaterialBillRequest struct {
	MaterialTransactionID string            `json:"materialTransactionId" binding:"required,uuid"`
	PartnerID             *string           `json:"partner_id" binding:"omitempty,uuid"`
	Date                  time.Time         `json:"date" binding:"required"`
	CreatedBy             string            `json:"createdBy" binding:"required,uuid"`
	Forms                 []BillLineRequest `json:"forms" binding:"required,min=1,dive"`
}

type CreateDieselInvoiceRequest struct {
	DieselReceiptID string            `json:"dieselReceiptId" binding:"required,uuid"`
	PartnerID       *string           `json:"partner_id" binding:"omitempty,uuid"`
	Date            time.Time         `json:"date" binding:"required"`
	CreatedBy       string            `json:"createdBy" binding:"required,uuid"`
	Forms           []BillLineRequest `json:"forms" binding:"required,min=1,dive"`
}

// BillingService links a fully approved source transaction to exactly one
// monetary settlement. Eligibility is surfaced as a set difference (approved
// sources minus billed ones), not a stored flag.
type BillingService interface {
	CreateMaterialBill(ctx context.Context, req CreateMaterialBillRequest) (*model.MaterialBillTransaction, error)
	ListMaterialBills(ctx context.Context, projectID string, page, limit int) ([]model.MaterialBillTransaction, int64, error)
	ListUnbilledMaterialTransactions(ctx context.Context, projectID string) ([]model.MaterialTransaction, error)

	CreateDieselInvoice(ctx context.Context, req CreateDieselInvoiceRequest) (*model.DieselInvoice, error)
	ListDieselInvoices(ctx context.Context, projectID string, page, limit int) ([]model.DieselInvoice, int64, error)
	ListUninvoicedDieselReceipts(ctx context.Context, projectID string) ([]model.DieselReceipt, error)
}

type billingService struct {
	billing      repository.BillingRepository
	materialRepo repository.DocumentRepository[model.MaterialTransaction, *model.MaterialTransaction]
	receiptRepo  repository.DocumentRepository[model.DieselReceipt, *model.DieselReceipt]
	identity     repository.IdentityRepository
	txManager    repository.TransactionManager
}

func NewBillingService(
	billing repository.BillingRepository,
	materialRepo repository.DocumentRepository[model.MaterialTransaction, *model.MaterialTransaction],
	receiptRepo repository.DocumentRepository[model.DieselReceipt, *model.DieselReceipt],
	identity repository.IdentityRepository,
	txManager repository.TransactionManager,
) BillingService {
	return &billingService{
		billing:      billing,
		materialRepo: materialRepo,
		receiptRepo:  receiptRepo,
		identity:     identity,
		txManager:    txManager,
	}
}

// billLine is one validated, priced form row.
type billLine struct {
	ItemID     uuid.UUID
	UOMID      uuid.UUID
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalValue decimal.Decimal
}

// validateBillLines checks positivity, resolves references and prices each
// line; the grand total is the sum of line totals.
func (s *billingService) validateBillLines(ctx context.Context, forms []BillLineRequest) ([]billLine, decimal.Decimal, error) {
	lines := make([]billLine, 0, len(forms))
	total := decimal.Zero
	for _, f := range forms {
		itemID, err := uuid.Parse(f.Item)
		if err != nil {
			return nil, decimal.Zero, apperr.Validation("forms.item", "invalid uuid")
		}
		uomID, err := uuid.Parse(f.UOMID)
		if err != nil {
			return nil, decimal.Zero, apperr.Validation("forms.uom_id", "invalid uuid")
		}
		if !f.Quantity.IsPositive() {
			return nil, decimal.Zero, apperr.Validation("forms.quantity", "must be greater than zero")
		}
		if !f.UnitPrice.IsPositive() {
			return nil, decimal.Zero, apperr.Validation("forms.unit_price", "must be greater than zero")
		}
		ok, err := s.identity.ItemExists(ctx, itemID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if !ok {
			return nil, decimal.Zero, apperr.Reference("forms.item", itemID.String())
		}
		ok, err = s.identity.UOMExists(ctx, uomID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if !ok {
			return nil, decimal.Zero, apperr.Reference("forms.uom_id", uomID.String())
		}

		lineTotal := f.Quantity.Mul(f.UnitPrice)
		total = total.Add(lineTotal)
		lines = append(lines, billLine{
			ItemID:     itemID,
			UOMID:      uomID,
			Quantity:   f.Quantity,
			UnitPrice:  f.UnitPrice,
			TotalValue: lineTotal,
		})
	}
	return lines, total, nil
}

func (s *billingService) resolveBillHeader(ctx context.Context, createdBy string, partnerID *string) (uuid.UUID, *uuid.UUID, error) {
	creator, err := uuid.Parse(createdBy)
	if err != nil {
		return uuid.Nil, nil, apperr.Validation("createdBy", "invalid uuid")
	}
	ok, err := s.identity.EmployeeExists(ctx, creator)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !ok {
		return uuid.Nil, nil, apperr.Reference("createdBy", creator.String())
	}
	var partner *uuid.UUID
	if partnerID != nil && *partnerID != "" {
		parsed, parseErr := uuid.Parse(*partnerID)
		if parseErr != nil {
			return uuid.Nil, nil, apperr.Validation("partner_id", "invalid uuid")
		}
		ok, err = s.identity.PartnerExists(ctx, parsed)
		if err != nil {
			return uuid.Nil, nil, err
		}
		if !ok {
			return uuid.Nil, nil, apperr.Reference("partner_id", parsed.String())
		}
		partner = &parsed
	}
	return creator, partner, nil
}

func (s *billingService) CreateMaterialBill(ctx context.Context, req CreateMaterialBillRequest) (*model.MaterialBillTransaction, error) {
	sourceID, err := uuid.Parse(req.MaterialTransactionID)
	if err != nil {
		return nil, apperr.Validation("materialTransactionId", "invalid uuid")
	}

	var bill model.MaterialBillTransaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		source, findErr := s.materialRepo.FindByIDForUpdate(txCtx, sourceID)
		if findErr != nil {
			return findErr
		}
		if !source.FullyApproved() {
			return apperr.ErrSourceNotApproved
		}
		billed, existsErr := s.billing.MaterialBillExists(txCtx, sourceID)
		if existsErr != nil {
			return existsErr
		}
		if billed {
			return apperr.ErrDuplicateBilling
		}

		creator, partner, hdrErr := s.resolveBillHeader(txCtx, req.CreatedBy, req.PartnerID)
		if hdrErr != nil {
			return hdrErr
		}
		lines, total, lineErr := s.validateBillLines(txCtx, req.Forms)
		if lineErr != nil {
			return lineErr
		}

		seq, seqErr := s.billing.NextSequence(txCtx, billNoPrefix("MBL", req.Date), &model.MaterialBillTransaction{}, "bill_no")
		if seqErr != nil {
			return fmt.Errorf("failed to allocate bill number: %w", seqErr)
		}

		bill = model.MaterialBillTransaction{
			MaterialTransactionID: sourceID,
			BillNo:                fmt.Sprintf("%s%05d", billNoPrefix("MBL", req.Date), seq),
			PartnerID:             partner,
			Date:                  req.Date,
			CreatedBy:             creator,
			TotalValue:            total,
		}
		for _, l := range lines {
			bill.Forms = append(bill.Forms, model.MaterialBillForm{
				ItemID:     l.ItemID,
				UOMID:      l.UOMID,
				Quantity:   l.Quantity,
				UnitPrice:  l.UnitPrice,
				TotalValue: l.TotalValue,
			})
		}
		if createErr := s.billing.CreateMaterialBill(txCtx, &bill); createErr != nil {
			// The unique index on material_transaction_id closes the
			// check-then-insert race the pre-check cannot.
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return apperr.ErrDuplicateBilling
			}
			return fmt.Errorf("failed to create material bill: %w", createErr)
		}

		source.IsInvoiced = model.InvoiceInvoiced
		if saveErr := s.materialRepo.Save(txCtx, source); saveErr != nil {
			return fmt.Errorf("failed to flag source transaction invoiced: %w", saveErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.billing.FindMaterialBillByID(ctx, bill.ID)
}

func (s *billingService) ListMaterialBills(ctx context.Context, projectID string, page, limit int) ([]model.MaterialBillTransaction, int64, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, 0, apperr.Validation("project_id", "invalid uuid")
	}
	page, limit = normalisePage(page, limit)
	return s.billing.ListMaterialBillsByProject(ctx, pid, page, limit)
}

func (s *billingService) ListUnbilledMaterialTransactions(ctx context.Context, projectID string) ([]model.MaterialTransaction, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, apperr.Validation("project_id", "invalid uuid")
	}
	return s.billing.ListUnbilledMaterialTransactions(ctx, pid)
}

func (s *billingService) CreateDieselInvoice(ctx context.Context, req CreateDieselInvoiceRequest) (*model.DieselInvoice, error) {
	receiptID, err := uuid.Parse(req.DieselReceiptID)
	if err != nil {
		return nil, apperr.Validation("dieselReceiptId", "invalid uuid")
	}

	var invoice model.DieselInvoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		receipt, findErr := s.receiptRepo.FindByIDForUpdate(txCtx, receiptID)
		if findErr != nil {
			return findErr
		}
		if !receipt.FullyApproved() {
			return apperr.ErrSourceNotApproved
		}
		invoiced, existsErr := s.billing.DieselInvoiceExists(txCtx, receiptID)
		if existsErr != nil {
			return existsErr
		}
		if invoiced {
			return apperr.ErrDuplicateBilling
		}

		creator, partner, hdrErr := s.resolveBillHeader(txCtx, req.CreatedBy, req.PartnerID)
		if hdrErr != nil {
			return hdrErr
		}
		lines, total, lineErr := s.validateBillLines(txCtx, req.Forms)
		if lineErr != nil {
			return lineErr
		}

		seq, seqErr := s.billing.NextSequence(txCtx, billNoPrefix("DINV", req.Date), &model.DieselInvoice{}, "invoice_no")
		if seqErr != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", seqErr)
		}

		invoice = model.DieselInvoice{
			DieselReceiptID: receiptID,
			InvoiceNo:       fmt.Sprintf("%s%05d", billNoPrefix("DINV", req.Date), seq),
			PartnerID:       partner,
			Date:            req.Date,
			CreatedBy:       creator,
			TotalValue:      total,
		}
		for _, l := range lines {
			invoice.Forms = append(invoice.Forms, model.DieselInvoiceForm{
				ItemID:     l.ItemID,
				UOMID:      l.UOMID,
				Quantity:   l.Quantity,
				UnitPrice:  l.UnitPrice,
				TotalValue: l.TotalValue,
			})
		}
		if createErr := s.billing.CreateDieselInvoice(txCtx, &invoice); createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return apperr.ErrDuplicateBilling
			}
			return fmt.Errorf("failed to create diesel invoice: %w", createErr)
		}

		receipt.IsInvoiced = model.InvoiceInvoiced
		if saveErr := s.receiptRepo.Save(txCtx, receipt); saveErr != nil {
			return fmt.Errorf("failed to flag receipt invoiced: %w", saveErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.billing.FindDieselInvoiceByID(ctx, invoice.ID)
}

func (s *billingService) ListDieselInvoices(ctx context.Context, projectID string, page, limit int) ([]model.DieselInvoice, int64, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, 0, apperr.Validation("project_id", "invalid uuid")
	}
	page, limit = normalisePage(page, limit)
	return s.billing.ListDieselInvoicesByProject(ctx, pid, page, limit)
}

func (s *billingService) ListUninvoicedDieselReceipts(ctx context.Context, projectID string) ([]model.DieselReceipt, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, apperr.Validation("project_id", "invalid uuid")
	}
	return s.billing.ListUninvoicedDieselReceipts(ctx, pid)
}

func billNoPrefix(kind string, date time.Time) string {
	return kind + "-" + date.Format("20060102") + "-"
}
