package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stage is a named approval checkpoint a document passes through.
type Stage string

const (
	StageMIC Stage = "mic" // mechanic-in-charge
	StageSIC Stage = "sic" // site-in-charge
	StagePM  Stage = "pm"  // project manager
)

// StageStatus is the tri-state decision held by each stage.
type StageStatus string

const (
	StatusPending  StageStatus = "pending"
	StatusApproved StageStatus = "approved"
	StatusRejected StageStatus = "rejected"
)

// Valid reports whether s is one of the three known stage statuses.
func (s StageStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// StageColumn maps a stage to its status column for query building.
func StageColumn(st Stage) string {
	switch st {
	case StageMIC:
		return "mic_status"
	case StageSIC:
		return "sic_status"
	case StagePM:
		return "pm_status"
	}
	return ""
}

// DocumentKind names one of the six workflow document types.
type DocumentKind string

const (
	KindDieselRequisition    DocumentKind = "diesel_requisition"
	KindDieselReceipt        DocumentKind = "diesel_receipt"
	KindConsumptionSheet     DocumentKind = "consumption_sheet"
	KindMaintenanceSheet     DocumentKind = "maintenance_sheet"
	KindMaterialTransaction  DocumentKind = "material_transaction"
	KindEquipmentTransaction DocumentKind = "equipment_transaction"
)

// Approvable is the contract every workflow document header satisfies so a
// single engine can drive all document shapes.
type Approvable interface {
	ApprovalStages() []Stage
	StageState(Stage) (StageStatus, bool)
	// ApplyDecision sets the stage status and its reason. On a rejection the
	// reason is stored against that stage; any other decision clears it.
	// Returns false when the stage does not belong to this document type.
	ApplyDecision(stage Stage, status StageStatus, reason *string) bool
	FullyApproved() bool
}

// FieldApprovals is embedded by field documents that pass the full
// mic -> sic -> pm chain. Each stage keeps its own reject reason so a later
// decision never clobbers an earlier stage's explanation.
type FieldApprovals struct {
	MicStatus       StageStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"mic_status"`
	MicRejectReason *string     `gorm:"type:text" json:"mic_reject_reason,omitempty"`
	SicStatus       StageStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"sic_status"`
	SicRejectReason *string     `gorm:"type:text" json:"sic_reject_reason,omitempty"`
	PmStatus        StageStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"pm_status"`
	PmRejectReason  *string     `gorm:"type:text" json:"pm_reject_reason,omitempty"`
}

func (a *FieldApprovals) ApprovalStages() []Stage {
	return []Stage{StageMIC, StageSIC, StagePM}
}

func (a *FieldApprovals) StageState(st Stage) (StageStatus, bool) {
	switch st {
	case StageMIC:
		return a.MicStatus, true
	case StageSIC:
		return a.SicStatus, true
	case StagePM:
		return a.PmStatus, true
	}
	return "", false
}

func (a *FieldApprovals) ApplyDecision(st Stage, status StageStatus, reason *string) bool {
	if status != StatusRejected {
		reason = nil
	}
	switch st {
	case StageMIC:
		a.MicStatus, a.MicRejectReason = status, reason
	case StageSIC:
		a.SicStatus, a.SicRejectReason = status, reason
	case StagePM:
		a.PmStatus, a.PmRejectReason = status, reason
	default:
		return false
	}
	return true
}

func (a *FieldApprovals) FullyApproved() bool {
	return a.MicStatus == StatusApproved && a.SicStatus == StatusApproved && a.PmStatus == StatusApproved
}

// PMApproval is embedded by material/equipment transactions, which only the
// project manager signs off.
type PMApproval struct {
	PmStatus       StageStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"pm_status"`
	PmRejectReason *string     `gorm:"type:text" json:"pm_reject_reason,omitempty"`
}

func (a *PMApproval) ApprovalStages() []Stage {
	return []Stage{StagePM}
}

func (a *PMApproval) StageState(st Stage) (StageStatus, bool) {
	if st == StagePM {
		return a.PmStatus, true
	}
	return "", false
}

func (a *PMApproval) ApplyDecision(st Stage, status StageStatus, reason *string) bool {
	if st != StagePM {
		return false
	}
	if status != StatusRejected {
		reason = nil
	}
	a.PmStatus, a.PmRejectReason = status, reason
	return true
}

func (a *PMApproval) FullyApproved() bool {
	return a.PmStatus == StatusApproved
}

// DocumentCore carries the fields every document header shares.
type DocumentCore struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Date      time.Time  `gorm:"not null;index" json:"date"`
	CreatedBy uuid.UUID  `gorm:"type:uuid;not null;index" json:"created_by"`
	Creator   *Employee  `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	OrgID     *uuid.UUID `gorm:"type:uuid;index" json:"org_id,omitempty"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *DocumentCore) DocumentID() uuid.UUID { return c.ID }

// SetCore fills the shared header fields at creation time.
func (c *DocumentCore) SetCore(date time.Time, createdBy uuid.UUID, orgID *uuid.UUID, projectID uuid.UUID) {
	c.Date = date
	c.CreatedBy = createdBy
	c.OrgID = orgID
	c.ProjectID = projectID
}

// LineItemSpec is the type-neutral description of one line; each document
// type materialises it into its own item row and rejects shapes it cannot
// represent (e.g. a consumption line without equipment).
type LineItemSpec struct {
	ItemID      uuid.UUID
	UOMID       uuid.UUID
	Quantity    decimal.Decimal
	Notes       *string
	EquipmentID *uuid.UUID
	MeterStart  *decimal.Decimal
	MeterEnd    *decimal.Decimal
}

// WorkflowDocument is what the generic document service and approval engine
// operate on.
type WorkflowDocument interface {
	Approvable
	DocumentID() uuid.UUID
	DocumentKind() DocumentKind
	SetCore(date time.Time, createdBy uuid.UUID, orgID *uuid.UUID, projectID uuid.UUID)
	// AttachItems materialises specs into the document's own item rows,
	// stamping the owning foreign key when the header already has an id.
	AttachItems([]LineItemSpec) error
	// LineItems exposes the concrete item slice as a pointer suitable for a
	// bulk insert.
	LineItems() any
}
