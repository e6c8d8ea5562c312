package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cambista/ledger/ledger"
)

// Denomination is one physical note value of an asset, e.g. a 100 bill.
type Denomination struct {
	ID        uint64          `json:"id" gorm:"primaryKey"`
	AssetID   uint64          `json:"asset_id" gorm:"index"`
	Value     decimal.Decimal `json:"value"`
	IsActive  bool            `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func ListDenominations(tx *gorm.DB, asset_id uint64) ([]*Denomination, error) {
	var denominations []*Denomination

	err := tx.Where("asset_id = ? AND is_active = ?", asset_id, true).Order("value desc").Find(&denominations).Error
	if err != nil {
		return nil, err
	}

	return denominations, nil
}

// DetailDenomination is the physical note breakdown of one movement.
type DetailDenomination struct {
	ID                  uint64    `json:"id" gorm:"primaryKey"`
	TransactionDetailID uint64    `json:"transaction_detail_id" gorm:"index"`
	DenominationID      uint64    `json:"denomination_id"`
	Count               int64     `json:"count"`
	CreatedAt           time.Time `json:"created_at"`
}

// BreakdownNote checks a movement's note breakdown against its amount. A
// discrepancy beyond the rounding tolerance is reported as a note for the
// movement, never as a rejection.
func BreakdownNote(amount decimal.Decimal, denominations map[uint64]*Denomination, breakdown []*DetailDenomination) (string, bool) {
	total := decimal.Zero

	for _, row := range breakdown {
		denomination, found := denominations[row.DenominationID]
		if !found {
			continue
		}

		total = total.Add(denomination.Value.Mul(decimal.NewFromInt(row.Count)))
	}

	difference := total.Sub(amount)
	if difference.Abs().LessThanOrEqual(ledger.Tolerance) {
		return "", false
	}

	return "denomination breakdown differs from amount by " + difference.String(), true
}
