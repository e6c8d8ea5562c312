package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Reconciliation links the transaction whose client credit was netted against
// another client's debt. Pure trace entity, holds no balance itself.
type Reconciliation struct {
	ID                  uint64          `json:"id" gorm:"primaryKey"`
	SourceTransactionID uint64          `json:"source_transaction_id" gorm:"index"`
	TargetTransactionID uint64          `json:"target_transaction_id" gorm:"index"`
	Amount              decimal.Decimal `json:"amount"`
	Notes               sql.NullString  `json:"notes"`
	CreatedAt           time.Time       `json:"created_at"`
}
