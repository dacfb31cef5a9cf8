package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialBillTransaction settles exactly one material transaction. The
// unique index on MaterialTransactionID is the duplicate-billing guard; the
// service treats the resulting constraint violation as ErrDuplicateBilling.
type MaterialBillTransaction struct {
	ID                    uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MaterialTransactionID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex" json:"material_transaction_id"`
	MaterialTransaction   *MaterialTransaction `gorm:"foreignKey:MaterialTransactionID" json:"material_transaction,omitempty"`
	BillNo                string               `gorm:"type:varchar(50);uniqueIndex;not null" json:"bill_no"`
	PartnerID             *uuid.UUID           `gorm:"type:uuid;index" json:"partner_id,omitempty"`
	Partner               *Partner             `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Date                  time.Time            `gorm:"not null" json:"date"`
	CreatedBy             uuid.UUID            `gorm:"type:uuid;not null;index" json:"created_by"`
	TotalValue            decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"total_value"`
	Forms                 []MaterialBillForm   `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"forms"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// MaterialBillForm mirrors one source line plus pricing.
type MaterialBillForm struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"item"`
	UOMID      uuid.UUID       `gorm:"type:uuid;not null" json:"uom_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalValue decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_value"`
}

// DieselInvoice settles exactly one diesel receipt.
type DieselInvoice struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DieselReceiptID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"diesel_receipt_id"`
	DieselReceipt   *DieselReceipt      `gorm:"foreignKey:DieselReceiptID" json:"diesel_receipt,omitempty"`
	InvoiceNo       string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_no"`
	PartnerID       *uuid.UUID          `gorm:"type:uuid;index" json:"partner_id,omitempty"`
	Partner         *Partner            `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Date            time.Time           `gorm:"not null" json:"date"`
	CreatedBy       uuid.UUID           `gorm:"type:uuid;not null;index" json:"created_by"`
	TotalValue      decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"total_value"`
	Forms           []DieselInvoiceForm `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"forms"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// DieselInvoiceForm mirrors one receipt line plus pricing.
type DieselInvoiceForm struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"item"`
	UOMID      uuid.UUID       `gorm:"type:uuid;not null" json:"uom_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalValue decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_value"`
}
