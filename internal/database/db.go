package database

import (
	"log"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM.
// TranslateError is on so unique-constraint violations surface as
// gorm.ErrDuplicatedKey instead of driver-specific errors.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		// identity masters
		&model.Employee{},
		&model.Organisation{},
		&model.Project{},
		&model.Store{},
		&model.ConsumableItem{},
		&model.UOM{},
		&model.Equipment{},
		&model.Partner{},
		// workflow documents
		&model.DieselRequisition{},
		&model.DieselRequisitionItem{},
		&model.DieselReceipt{},
		&model.DieselReceiptItem{},
		&model.ConsumptionSheet{},
		&model.ConsumptionSheetItem{},
		&model.MaintenanceSheet{},
		&model.MaintenanceSheetItem{},
		&model.MaterialTransaction{},
		&model.MaterialTransactionItem{},
		&model.EquipmentTransaction{},
		&model.EquipmentTransactionItem{},
		// decision log
		&model.StageDecision{},
		// billing
		&model.MaterialBillTransaction{},
		&model.MaterialBillForm{},
		&model.DieselInvoice{},
		&model.DieselInvoiceForm{},
		// stock ledger
		&model.StockLocation{},
		&model.StockEntry{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
