package models

import "gorm.io/gorm"

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Client{},
		&Asset{},
		&Denomination{},
		&DetailDenomination{},
		&Balance{},
		&Transaction{},
		&TransactionDetail{},
		&Reconciliation{},
		&AuditLog{},
	)
}
