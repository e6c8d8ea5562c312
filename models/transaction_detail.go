package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambista/ledger/ledger"
	"github.com/cambista/ledger/types"
)

// TransactionDetail is one movement of one asset attached to a transaction,
// tagged from the client's perspective: income means the client delivers,
// expense means the client receives.
type TransactionDetail struct {
	ID                   uint64              `json:"id" gorm:"primaryKey"`
	TransactionID        uint64              `json:"transaction_id" gorm:"index"`
	AssetID              uint64              `json:"asset_id" validate:"required"`
	MovementType         types.MovementType  `json:"movement_type" validate:"required|ValidateMovementType"`
	Amount               decimal.Decimal     `json:"amount" validate:"ValidateAmount"`
	PercentageDifference decimal.NullDecimal `json:"percentage_difference"`
	Notes                sql.NullString      `json:"notes"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

func (d TransactionDetail) ValidateMovementType(MovementType types.MovementType) bool {
	return MovementType == types.MovementIncome || MovementType == types.MovementExpense
}

func (d TransactionDetail) ValidateAmount(Amount decimal.Decimal) bool {
	return Amount.GreaterThanOrEqual(decimal.Zero)
}

func (d *TransactionDetail) Movement() ledger.Movement {
	return ledger.Movement{
		AssetID: d.AssetID,
		Type:    d.MovementType,
		Amount:  d.Amount,
	}
}

func (d *TransactionDetail) AppendNote(note string) {
	if d.Notes.Valid && len(d.Notes.String) > 0 {
		d.Notes.String = d.Notes.String + "; " + note
	} else {
		d.Notes.String = note
	}

	d.Notes.Valid = true
}
