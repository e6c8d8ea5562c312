package accounting

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/ledger"
	"github.com/cambista/ledger/models"
	"github.com/cambista/ledger/types"
)

type ReconciliationTarget struct {
	ClientID uint64          `json:"client_id"`
	AssetID  uint64          `json:"asset_id"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes"`
}

type ReconcileParams struct {
	SourceTransactionID uint64                 `json:"source_transaction_id"`
	SourceAssetID       uint64                 `json:"source_asset_id"`
	Targets             []ReconciliationTarget `json:"targets"`
	CreatedBy           string                 `json:"created_by"`
}

type ReconcileResult struct {
	Reconciliations []*models.Reconciliation `json:"reconciliations"`
	SourceBalance   *models.Balance          `json:"source_balance"`
	TargetBalances  []*models.Balance        `json:"target_balances"`
}

// Reconcile nets a client's debt to the house directly against other
// clients' credits in the same asset, without moving physical assets. Every
// target gets a completed expense transaction plus a reconciliation link; the
// house legs cancel out for same-asset targets, keeping the global sum zero.
func Reconcile(params ReconcileParams) (*ReconcileResult, error) {
	if len(params.Targets) == 0 {
		return nil, ledger.NewValidation("ledger.reconciliation.empty_targets")
	}

	total := decimal.Zero
	for _, target := range params.Targets {
		if !target.Amount.IsPositive() {
			return nil, ledger.NewValidation("ledger.reconciliation.non_positive_amount")
		}
		if target.AssetID != params.SourceAssetID {
			return nil, ledger.NewValidation("ledger.reconciliation.asset_mismatch")
		}

		total = total.Add(target.Amount)
	}

	result := &ReconcileResult{}

	err := atomic(func(tx *gorm.DB) error {
		source_transaction, err := models.FindTransaction(tx, params.SourceTransactionID)
		if err != nil {
			return err
		}

		if _, err := models.FindAsset(tx, params.SourceAssetID); err != nil {
			return err
		}

		source_balance, err := models.FindBalanceForUpdate(tx, source_transaction.ClientID, params.SourceAssetID)
		if err != nil || !source_balance.Amount.IsPositive() {
			return ledger.NewValidation("ledger.reconciliation.source_balance_not_positive")
		}

		if total.GreaterThan(source_balance.Amount) {
			return ledger.NewValidation("ledger.reconciliation.amount_exceeds_source_balance")
		}

		house, err := models.HouseAccount(tx)
		if err != nil {
			return err
		}

		for _, target := range params.Targets {
			if _, err := models.FindClient(tx, target.ClientID); err != nil {
				return err
			}

			target_balance, err := models.FindBalanceForUpdate(tx, target.ClientID, target.AssetID)
			if err != nil || !target_balance.Amount.IsNegative() {
				return ledger.NewValidation("ledger.reconciliation.target_balance_not_negative")
			}

			if target.Amount.GreaterThan(target_balance.Amount.Abs()) {
				return ledger.NewValidation("ledger.reconciliation.amount_exceeds_target_balance")
			}

			// The settlement transaction is created completed but the
			// balances are adjusted explicitly here, not through the
			// propagation path.
			settlement := &models.Transaction{
				ClientID:  target.ClientID,
				Date:      time.Now(),
				State:     types.StateCompleted,
				Notes:     nullString(target.Notes),
				CreatedBy: nullString(params.CreatedBy),
			}

			if err := tx.Create(settlement).Error; err != nil {
				return err
			}

			detail := &models.TransactionDetail{
				TransactionID: settlement.ID,
				AssetID:       target.AssetID,
				MovementType:  types.MovementExpense,
				Amount:        target.Amount,
				Notes:         nullString(target.Notes),
			}

			if err := tx.Create(detail).Error; err != nil {
				return err
			}

			if err := target_balance.Plus(tx, target.Amount, settlement.ID); err != nil {
				return err
			}

			if _, err := models.ApplyBalanceDelta(tx, house.ID, target.AssetID, target.Amount, settlement.ID); err != nil {
				return err
			}

			reconciliation := &models.Reconciliation{
				SourceTransactionID: params.SourceTransactionID,
				TargetTransactionID: settlement.ID,
				Amount:              target.Amount,
				Notes:               nullString(target.Notes),
			}

			if err := tx.Create(reconciliation).Error; err != nil {
				return err
			}

			result.Reconciliations = append(result.Reconciliations, reconciliation)
			result.TargetBalances = append(result.TargetBalances, target_balance)
		}

		if err := source_balance.Plus(tx, total.Neg(), params.SourceTransactionID); err != nil {
			return err
		}

		if _, err := models.ApplyBalanceDelta(tx, house.ID, params.SourceAssetID, total.Neg(), params.SourceTransactionID); err != nil {
			return err
		}

		result.SourceBalance = source_balance

		return nil
	})

	if err != nil {
		return nil, err
	}

	for _, reconciliation := range result.Reconciliations {
		models.RecordAudit("Reconciliation", reconciliation.ID, "create", reconciliation, params.CreatedBy)
	}

	return result, nil
}

type ReconciliationCandidate struct {
	ClientID uint64          `json:"client_id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

type ReconciliationCandidates struct {
	OwedByHouse []ReconciliationCandidate `json:"owed_by_house"`
	OweHouse    []ReconciliationCandidate `json:"owe_house"`
}

// FindClientsForReconciliation lists, for one asset, the clients the house
// owes (negative balances) and the clients owing the house (positive
// balances), so a caller can build a valid reconciliation request. Read-only
// snapshot, briefly cached.
func FindClientsForReconciliation(asset_id uint64) (*ReconciliationCandidates, error) {
	cache_key := "ledger:reconciliation_candidates:" + strconv.FormatUint(asset_id, 10)

	candidates := &ReconciliationCandidates{}

	if config.Redis != nil {
		if err := config.Redis.GetKey(cache_key, candidates); err == nil && (len(candidates.OweHouse) > 0 || len(candidates.OwedByHouse) > 0) {
			return candidates, nil
		}
	}

	candidates = &ReconciliationCandidates{
		OwedByHouse: make([]ReconciliationCandidate, 0),
		OweHouse:    make([]ReconciliationCandidate, 0),
	}

	house, err := models.HouseAccount(config.DataBase)
	if err != nil {
		return nil, classify(err)
	}

	balances, err := models.BalancesForAsset(config.DataBase, asset_id)
	if err != nil {
		return nil, classify(err)
	}

	for _, balance := range balances {
		if balance.ClientID == house.ID || balance.Amount.IsZero() {
			continue
		}

		client, err := models.FindClient(config.DataBase, balance.ClientID)
		if err != nil {
			return nil, classify(err)
		}

		candidate := ReconciliationCandidate{
			ClientID: balance.ClientID,
			Name:     client.Name,
			Amount:   balance.Amount,
		}

		if balance.Amount.IsNegative() {
			candidates.OwedByHouse = append(candidates.OwedByHouse, candidate)
		} else {
			candidates.OweHouse = append(candidates.OweHouse, candidate)
		}
	}

	if config.Redis != nil {
		if err := config.Redis.SetKey(cache_key, candidates, 30*time.Second); err != nil {
			config.Logger.Errorf("Failed to cache reconciliation candidates %v", err.Error())
		}
	}

	return candidates, nil
}
