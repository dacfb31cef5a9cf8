package model

import (
	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceState tracks whether a billable transaction has been settled.
type InvoiceState string

const (
	InvoiceDraft    InvoiceState = "draft"
	InvoiceInvoiced InvoiceState = "invoiced"
	InvoiceRejected InvoiceState = "rejected"
)

// DieselRequisition asks for diesel to be issued to a site.
type DieselRequisition struct {
	DocumentCore
	FieldApprovals
	Items []DieselRequisitionItem `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE" json:"items"`
}

func (*DieselRequisition) DocumentKind() DocumentKind { return KindDieselRequisition }

func (d *DieselRequisition) LineItems() any { return &d.Items }

func (d *DieselRequisition) AttachItems(specs []LineItemSpec) error {
	d.Items = make([]DieselRequisitionItem, 0, len(specs))
	for _, s := range specs {
		d.Items = append(d.Items, DieselRequisitionItem{
			RequisitionID: d.ID,
			ItemID:        s.ItemID,
			UOMID:         s.UOMID,
			Quantity:      s.Quantity,
			Notes:         s.Notes,
		})
	}
	return nil
}

type DieselRequisitionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequisitionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"requisition_id"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"item"`
	UOMID         uuid.UUID       `gorm:"type:uuid;not null" json:"uom_id"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
}

// DieselReceipt records diesel received against a requisition; once fully
// approved it becomes eligible for exactly one DieselInvoice.
type DieselReceipt struct {
	DocumentCore
	FieldApprovals
	IsInvoiced InvoiceState        `gorm:"type:varchar(10);not null;default:'draft';index" json:"is_invoiced"`
	Items      []DieselReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"items"`
}

func (*DieselReceipt) DocumentKind() DocumentKind { return KindDieselReceipt }

func (d *DieselReceipt) LineItems() any { return &d.Items }

func (d *DieselReceipt) AttachItems(specs []LineItemSpec) error {
	d.Items = make([]DieselReceiptItem, 0, len(specs))
	for _, s := range specs {
		d.Items = append(d.Items, DieselReceiptItem{
			ReceiptID: d.ID,
			ItemID:    s.ItemID,
			UOMID:     s.UOMID,
			Quantity:  s.Quantity,
			Notes:     s.Notes,
		})
	}
	return nil
}

type DieselReceiptItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReceiptID uuid.UUID       `gorm:"type:uuid;not null;index" json:"receipt_id"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"item"`
	UOMID     uuid.UUID       `gorm:"type:uuid;not null" json:"uom_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Notes     *string         `gorm:"type:text" json:"notes,omitempty"`
}

// ConsumptionSheet records diesel consumed by equipment, with meter readings.
type ConsumptionSheet struct {
	DocumentCore
	FieldApprovals
	Items []ConsumptionSheetItem `gorm:"foreignKey:SheetID;constraint:OnDelete:CASCADE" json:"items"`
}

func (*ConsumptionSheet) DocumentKind() DocumentKind { return KindConsumptionSheet }

func (d *ConsumptionSheet) LineItems() any { return &d.Items }

func (d *ConsumptionSheet) AttachItems(specs []LineItemSpec) error {
	d.Items = make([]ConsumptionSheetItem, 0, len(specs))
	for _, s := range specs {
		if s.EquipmentID == nil {
			return apperr.Validation("items", "consumption line requires equipment")
		}
		if s.MeterStart != nil && s.MeterEnd != nil && s.MeterEnd.LessThan(*s.MeterStart) {
			return apperr.Validation("items", "meter end precedes meter start")
		}
		d.Items = append(d.Items, ConsumptionSheetItem{
			SheetID:     d.ID,
			ItemID:      s.ItemID,
			UOMID:       s.UOMID,
			EquipmentID: *s.EquipmentID,
			Quantity:    s.Quantity,
			MeterStart:  s.MeterStart,
			MeterEnd:    s.MeterEnd,
			Notes:       s.Notes,
		})
	}
	return nil
}

type ConsumptionSheetItem struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SheetID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"sheet_id"`
	ItemID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"item"`
	UOMID       uuid.UUID        `gorm:"type:uuid;not null" json:"uom_id"`
	EquipmentID uuid.UUID        `gorm:"type:uuid;not null;index" json:"equipment"`
	Quantity    decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"quantity"`
	MeterStart  *decimal.Decimal `gorm:"type:decimal(18,4)" json:"meter_start,omitempty"`
	MeterEnd    *decimal.Decimal `gorm:"type:decimal(18,4)" json:"meter_end,omitempty"`
	Notes       *string          `gorm:"type:text" json:"notes,omitempty"`
}

// MaintenanceSheet records parts consumed while servicing equipment.
type MaintenanceSheet struct {
	DocumentCore
	FieldApprovals
	Items []MaintenanceSheetItem `gorm:"foreignKey:SheetID;constraint:OnDelete:CASCADE" json:"items"`
}

func (*MaintenanceSheet) DocumentKind() DocumentKind { return KindMaintenanceSheet }

func (d *MaintenanceSheet) LineItems() any { return &d.Items }

func (d *MaintenanceSheet) AttachItems(specs []LineItemSpec) error {
	d.Items = make([]MaintenanceSheetItem, 0, len(specs))
	for _, s := range specs {
		if s.EquipmentID == nil {
			return apperr.Validation("items", "maintenance line requires equipment")
		}
		d.Items = append(d.Items, MaintenanceSheetItem{
			SheetID:     d.ID,
			ItemID:      s.ItemID,
			UOMID:       s.UOMID,
			EquipmentID: *s.EquipmentID,
			Quantity:    s.Quantity,
			Notes:       s.Notes,
		})
	}
	return nil
}

type MaintenanceSheetItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SheetID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"sheet_id"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"item"`
	UOMID       uuid.UUID       `gorm:"type:uuid;not null" json:"uom_id"`
	EquipmentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"equipment"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
}

// MaterialTransaction moves material stock; the project manager alone signs it
// off, after which it becomes eligible for exactly one MaterialBillTransaction.
type MaterialTransaction struct {
	DocumentCore
	PMApproval
	IsInvoiced InvoiceState              `gorm:"type:varchar(10);not null;default:'draft';index" json:"is_invoiced"`
	Items      []MaterialTransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
}

func (*MaterialTransaction) DocumentKind() DocumentKind { return KindMaterialTransaction }

func (d *MaterialTransaction) LineItems() any { return &d.Items }

func (d *MaterialTransaction) AttachItems(specs []LineItemSpec) error {
	d.Items = make([]MaterialTransactionItem, 0, len(specs))
	for _, s := range specs {
		d.Items = append(d.Items, MaterialTransactionItem{
			TransactionID: d.ID,
			ItemID:        s.ItemID,
			UOMID:         s.UOMID,
			Quantity:      s.Quantity,
			Notes:         s.Notes,
		})
	}
	return nil
}

type MaterialTransactionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"item"`
	UOMID         uuid.UUID       `gorm:"type:uuid;not null" json:"uom_id"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
}

// EquipmentTransaction moves equipment between projects or stores.
type EquipmentTransaction struct {
	DocumentCore
	PMApproval
	Items []EquipmentTransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
}

func (*EquipmentTransaction) DocumentKind() DocumentKind { return KindEquipmentTransaction }

func (d *EquipmentTransaction) LineItems() any { return &d.Items }

func (d *EquipmentTransaction) AttachItems(specs []LineItemSpec) error {
	d.Items = make([]EquipmentTransactionItem, 0, len(specs))
	for _, s := range specs {
		if s.EquipmentID == nil {
			return apperr.Validation("items", "equipment transaction line requires equipment")
		}
		d.Items = append(d.Items, EquipmentTransactionItem{
			TransactionID: d.ID,
			ItemID:        s.ItemID,
			UOMID:         s.UOMID,
			EquipmentID:   *s.EquipmentID,
			Quantity:      s.Quantity,
			Notes:         s.Notes,
		})
	}
	return nil
}

type EquipmentTransactionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"item"`
	UOMID         uuid.UUID       `gorm:"type:uuid;not null" json:"uom_id"`
	EquipmentID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"equipment"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
}
