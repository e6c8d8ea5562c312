package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Balance is the running per (client, asset) position. Positive means the
// client owes the house, negative means the house owes the client. For every
// asset the sum over all clients plus the house account is zero.
type Balance struct {
	ID                uint64          `json:"id" gorm:"primaryKey"`
	ClientID          uint64          `json:"client_id" gorm:"index:idx_balances_client_asset,unique"`
	AssetID           uint64          `json:"asset_id" gorm:"index:idx_balances_client_asset,unique"`
	Amount            decimal.Decimal `json:"amount"`
	LastTransactionID uint64          `json:"last_transaction_id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// FindBalanceForUpdate loads the balance row under a FOR UPDATE lock so that
// concurrent propagations against the same (client, asset) serialize.
func FindBalanceForUpdate(tx *gorm.DB, client_id, asset_id uint64) (*Balance, error) {
	balance := &Balance{}

	err := LockTx(tx).Where("client_id = ? AND asset_id = ?", client_id, asset_id).First(balance).Error
	if err != nil {
		return nil, err
	}

	return balance, nil
}

func (b *Balance) Plus(tx *gorm.DB, amount decimal.Decimal, last_transaction_id uint64) error {
	b.Amount = b.Amount.Add(amount)
	b.LastTransactionID = last_transaction_id

	return tx.Save(b).Error
}

// Force overwrites the running amount instead of accumulating into it. The
// only caller is the child-settlement completion path, which pins the client
// balance to the residual parent-minus-children difference.
func (b *Balance) Force(tx *gorm.DB, amount decimal.Decimal, last_transaction_id uint64) error {
	b.Amount = amount
	b.LastTransactionID = last_transaction_id

	return tx.Save(b).Error
}

// ApplyBalanceDelta upserts the (client, asset) balance by delta: the row is
// created lazily at the delta value on first movement, added to afterwards.
func ApplyBalanceDelta(tx *gorm.DB, client_id, asset_id uint64, delta decimal.Decimal, last_transaction_id uint64) (*Balance, error) {
	if delta.IsZero() {
		return nil, nil
	}

	balance, err := FindBalanceForUpdate(tx, client_id, asset_id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		balance = &Balance{
			ClientID:          client_id,
			AssetID:           asset_id,
			Amount:            delta,
			LastTransactionID: last_transaction_id,
		}

		if err := tx.Create(balance).Error; err != nil {
			return nil, err
		}

		return balance, nil
	}

	if err := balance.Plus(tx, delta, last_transaction_id); err != nil {
		return nil, err
	}

	return balance, nil
}

// ForceBalance pins the (client, asset) balance to amount, creating the row
// if it does not exist yet.
func ForceBalance(tx *gorm.DB, client_id, asset_id uint64, amount decimal.Decimal, last_transaction_id uint64) (*Balance, error) {
	balance, err := FindBalanceForUpdate(tx, client_id, asset_id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		balance = &Balance{
			ClientID:          client_id,
			AssetID:           asset_id,
			Amount:            amount,
			LastTransactionID: last_transaction_id,
		}

		if err := tx.Create(balance).Error; err != nil {
			return nil, err
		}

		return balance, nil
	}

	if err := balance.Force(tx, amount, last_transaction_id); err != nil {
		return nil, err
	}

	return balance, nil
}

func FindBalance(tx *gorm.DB, client_id, asset_id uint64) (*Balance, error) {
	balance := &Balance{}

	err := tx.Where("client_id = ? AND asset_id = ?", client_id, asset_id).First(balance).Error
	if err != nil {
		return nil, err
	}

	return balance, nil
}

func BalancesForAsset(tx *gorm.DB, asset_id uint64) ([]*Balance, error) {
	var balances []*Balance

	err := tx.Where("asset_id = ?", asset_id).Order("client_id asc").Find(&balances).Error
	if err != nil {
		return nil, err
	}

	return balances, nil
}
