package models

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/ledger"
	"github.com/cambista/ledger/types"
)

type Transaction struct {
	ID                  uint64                 `json:"id" gorm:"primaryKey"`
	ClientID            uint64                 `json:"client_id" validate:"required" gorm:"index"`
	Date                time.Time              `json:"date"`
	State               types.TransactionState `json:"state" gorm:"default:pending" validate:"ValidateState"`
	Notes               sql.NullString         `json:"notes"`
	ParentTransactionID *uint64                `json:"parent_transaction_id" gorm:"index"`
	CreatedBy           sql.NullString         `json:"created_by"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

func (t Transaction) ValidateState(State types.TransactionState) bool {
	return ledger.ValidState(State)
}

func (t *Transaction) IsTerminal() bool {
	return ledger.IsTerminal(t.State)
}

func FindTransaction(tx *gorm.DB, id uint64) (*Transaction, error) {
	transaction := &Transaction{}

	if err := tx.First(transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.NewNotFound("ledger.transaction.doesnt_exist")
		}

		return nil, err
	}

	return transaction, nil
}

// FindTransactionForUpdate locks the transaction row for the remainder of the
// atomic unit so concurrent state transitions serialize.
func FindTransactionForUpdate(tx *gorm.DB, id uint64) (*Transaction, error) {
	transaction := &Transaction{}

	if err := LockTx(tx).First(transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.NewNotFound("ledger.transaction.doesnt_exist")
		}

		return nil, err
	}

	return transaction, nil
}

func (t *Transaction) Details(tx *gorm.DB) ([]*TransactionDetail, error) {
	var details []*TransactionDetail

	if err := tx.Where("transaction_id = ?", t.ID).Order("id asc").Find(&details).Error; err != nil {
		return nil, err
	}

	return details, nil
}

// Movements converts the persisted details into the engine's movement set.
func (t *Transaction) Movements(tx *gorm.DB) ([]ledger.Movement, error) {
	details, err := t.Details(tx)
	if err != nil {
		return nil, err
	}

	movements := make([]ledger.Movement, 0, len(details))
	for _, detail := range details {
		movements = append(movements, detail.Movement())
	}

	return movements, nil
}

func (t *Transaction) Children(tx *gorm.DB) ([]*Transaction, error) {
	var children []*Transaction

	if err := tx.Where("parent_transaction_id = ?", t.ID).Order("id asc").Find(&children).Error; err != nil {
		return nil, err
	}

	return children, nil
}

func (t *Transaction) HasChildren(tx *gorm.DB) (bool, error) {
	var count int64

	if err := tx.Model(&Transaction{}).Where("parent_transaction_id = ?", t.ID).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (t *Transaction) WriteToInflux() {
	if config.InfluxDB == nil {
		return
	}

	tags := map[string]string{"state": t.State}
	fields := map[string]interface{}{
		"id":         int64(t.ID),
		"client_id":  int64(t.ClientID),
		"created_at": t.CreatedAt,
	}

	config.InfluxDB.NewPoint("ledger_transactions", tags, fields)
}
