package model

import (
	"time"

	"github.com/google/uuid"
)

// StageDecision is one immutable row of the approval trail: who decided what,
// when, and why. The header's stage columns stay the cached current state;
// this log is the history those columns discard on overwrite.
type StageDecision struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentKind DocumentKind `gorm:"type:varchar(40);not null;index:idx_stage_decisions_doc" json:"document_kind"`
	DocumentID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_stage_decisions_doc" json:"document_id"`
	Stage        Stage        `gorm:"type:varchar(10);not null" json:"stage"`
	Decision     StageStatus  `gorm:"type:varchar(10);not null" json:"decision"`
	DecidedBy    *uuid.UUID   `gorm:"type:uuid;index" json:"decided_by,omitempty"`
	Reason       *string      `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
