package models

import (
	"github.com/cambista/ledger/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Lock() (tx *gorm.DB) {
	return LockTx(config.DataBase)
}

// LockTx takes a FOR UPDATE row lock inside the caller's atomic unit.
// SQLite serializes writers on its own and rejects the clause, so the lock
// only applies on dialects that support it.
func LockTx(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}

	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

type Reference struct {
	ID   uint64
	Type string
}
