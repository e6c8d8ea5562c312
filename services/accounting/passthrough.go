package accounting

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/ledger"
	"github.com/cambista/ledger/models"
	"github.com/cambista/ledger/types"
)

type ImmutableAssetEntry struct {
	ClientID     uint64             `json:"client_id"`
	AssetID      uint64             `json:"asset_id"`
	MovementType types.MovementType `json:"movement_type"`
	Amount       decimal.Decimal    `json:"amount"`
	Notes        string             `json:"notes"`
}

type ConciliateImmutableParams struct {
	Entries   []ImmutableAssetEntry `json:"entries"`
	CreatedBy string                `json:"created_by"`
}

// ConciliateImmutableAssets records a multi-party transfer of pass-through
// instruments, e.g. directional wire transfers. One completed transaction per
// entry; entries after the first are linked as children of the first purely
// for traceability. No balance row is ever touched for an immutable asset,
// and incoming and outgoing totals are logged but not required to match.
func ConciliateImmutableAssets(params ConciliateImmutableParams) ([]*Result, error) {
	if len(params.Entries) == 0 {
		return nil, ledger.NewValidation("ledger.passthrough.empty_entries")
	}

	for _, entry := range params.Entries {
		if entry.MovementType != types.MovementIncome && entry.MovementType != types.MovementExpense {
			return nil, ledger.NewValidation("ledger.movement.invalid_type")
		}
		if entry.Amount.IsNegative() {
			return nil, ledger.NewValidation("ledger.movement.negative_amount")
		}
	}

	var results []*Result

	income_total := decimal.Zero
	expense_total := decimal.Zero

	err := atomic(func(tx *gorm.DB) error {
		var root_id *uint64

		for _, entry := range params.Entries {
			if _, err := models.FindClient(tx, entry.ClientID); err != nil {
				return err
			}

			asset, err := models.FindAsset(tx, entry.AssetID)
			if err != nil {
				return err
			}

			if !asset.IsImmutable {
				return ledger.NewValidation("ledger.passthrough.asset_not_immutable")
			}

			transaction := &models.Transaction{
				ClientID:            entry.ClientID,
				Date:                time.Now(),
				State:               types.StateCompleted,
				Notes:               nullString(entry.Notes),
				ParentTransactionID: root_id,
				CreatedBy:           nullString(params.CreatedBy),
			}

			if err := tx.Create(transaction).Error; err != nil {
				return err
			}

			detail := &models.TransactionDetail{
				TransactionID: transaction.ID,
				AssetID:       entry.AssetID,
				MovementType:  entry.MovementType,
				Amount:        entry.Amount,
				Notes:         nullString(entry.Notes),
			}

			if err := tx.Create(detail).Error; err != nil {
				return err
			}

			if root_id == nil {
				root_id = &transaction.ID
			}

			if entry.MovementType == types.MovementIncome {
				income_total = income_total.Add(entry.Amount)
			} else {
				expense_total = expense_total.Add(entry.Amount)
			}

			results = append(results, &Result{
				Transaction: transaction,
				Details:     []*models.TransactionDetail{detail},
			})
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	config.Logger.Infof(
		"Immutable asset conciliation recorded: income total %s, expense total %s",
		income_total.String(), expense_total.String(),
	)

	for _, result := range results {
		models.RecordAudit("Transaction", result.Transaction.ID, "conciliate_immutable", map[string]interface{}{
			"income_total":  income_total,
			"expense_total": expense_total,
		}, params.CreatedBy)
		result.Transaction.WriteToInflux()
	}

	return results, nil
}

// FindOpenImmutableAssetTransactions lists non-terminal transactions holding
// movements of pass-through instruments.
func FindOpenImmutableAssetTransactions() ([]*models.Transaction, error) {
	var asset_ids []uint64

	if err := config.DataBase.Model(&models.Asset{}).Where("is_immutable = ?", true).Pluck("id", &asset_ids).Error; err != nil {
		return nil, classify(err)
	}

	if len(asset_ids) == 0 {
		return []*models.Transaction{}, nil
	}

	var transaction_ids []uint64

	if err := config.DataBase.Model(&models.TransactionDetail{}).Where("asset_id IN ?", asset_ids).Distinct().Pluck("transaction_id", &transaction_ids).Error; err != nil {
		return nil, classify(err)
	}

	if len(transaction_ids) == 0 {
		return []*models.Transaction{}, nil
	}

	var transactions []*models.Transaction

	err := config.DataBase.
		Where("id IN ?", transaction_ids).
		Where("state IN ?", []types.TransactionState{types.StatePending, types.StateCurrentAccount}).
		Order("id asc").
		Find(&transactions).Error
	if err != nil {
		return nil, classify(err)
	}

	return transactions, nil
}
