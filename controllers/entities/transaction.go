package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambista/ledger/models"
	"github.com/cambista/ledger/services/accounting"
	"github.com/cambista/ledger/types"
)

type MovementEntity struct {
	ID           uint64             `json:"id"`
	AssetID      uint64             `json:"asset_id"`
	MovementType types.MovementType `json:"movement_type"`
	Amount       decimal.Decimal    `json:"amount"`
	Notes        string             `json:"notes"`
}

type BalanceEntity struct {
	ClientID uint64          `json:"client_id"`
	AssetID  uint64          `json:"asset_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type TransactionEntity struct {
	ID                  uint64                 `json:"id"`
	ClientID            uint64                 `json:"client_id"`
	Date                time.Time              `json:"date"`
	State               types.TransactionState `json:"state"`
	Notes               string                 `json:"notes"`
	ParentTransactionID *uint64                `json:"parent_transaction_id"`
	Details             []MovementEntity       `json:"details"`
	Balances            []BalanceEntity        `json:"balances,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
}

func TransactionToEntity(transaction *models.Transaction, details []*models.TransactionDetail, balances []*models.Balance) TransactionEntity {
	entity := TransactionEntity{
		ID:                  transaction.ID,
		ClientID:            transaction.ClientID,
		Date:                transaction.Date,
		State:               transaction.State,
		Notes:               transaction.Notes.String,
		ParentTransactionID: transaction.ParentTransactionID,
		Details:             make([]MovementEntity, 0, len(details)),
		CreatedAt:           transaction.CreatedAt,
	}

	for _, detail := range details {
		entity.Details = append(entity.Details, MovementEntity{
			ID:           detail.ID,
			AssetID:      detail.AssetID,
			MovementType: detail.MovementType,
			Amount:       detail.Amount,
			Notes:        detail.Notes.String,
		})
	}

	for _, balance := range balances {
		entity.Balances = append(entity.Balances, BalanceEntity{
			ClientID: balance.ClientID,
			AssetID:  balance.AssetID,
			Amount:   balance.Amount,
		})
	}

	return entity
}

func ResultToEntity(result *accounting.Result) TransactionEntity {
	return TransactionToEntity(result.Transaction, result.Details, result.Balances)
}
