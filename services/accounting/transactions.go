package accounting

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/ledger"
	"github.com/cambista/ledger/models"
	"github.com/cambista/ledger/types"
)

type DenominationCount struct {
	DenominationID uint64 `json:"denomination_id"`
	Count          int64  `json:"count"`
}

type MovementParams struct {
	AssetID              uint64              `json:"asset_id"`
	MovementType         types.MovementType  `json:"movement_type"`
	Amount               decimal.Decimal     `json:"amount"`
	PercentageDifference decimal.NullDecimal `json:"percentage_difference"`
	Notes                string              `json:"notes"`
	Denominations        []DenominationCount `json:"denominations"`
}

type CreateTransactionParams struct {
	ClientID  uint64                 `json:"client_id"`
	Date      time.Time              `json:"date"`
	State     types.TransactionState `json:"state"`
	Notes     string                 `json:"notes"`
	Details   []MovementParams       `json:"details"`
	CreatedBy string                 `json:"created_by"`
}

// Result is what every mutating operation hands back: the transaction, its
// movements and whichever balance rows the operation touched.
type Result struct {
	Transaction *models.Transaction         `json:"transaction"`
	Details     []*models.TransactionDetail `json:"details"`
	Balances    []*models.Balance           `json:"balances"`
}

func validateMovements(details []MovementParams) error {
	if len(details) == 0 {
		return ledger.NewValidation("ledger.transaction.empty_details")
	}

	for _, detail := range details {
		if len(detail.MovementType) == 0 {
			return ledger.NewValidation("ledger.movement.missing_type")
		}
		if detail.MovementType != types.MovementIncome && detail.MovementType != types.MovementExpense {
			return ledger.NewValidation("ledger.movement.invalid_type")
		}
		if detail.Amount.IsNegative() {
			return ledger.NewValidation("ledger.movement.negative_amount")
		}
	}

	return nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: len(value) > 0}
}

// insertTransaction writes the transaction and its movements inside the
// caller's atomic unit, with the denomination breakdown check applied per
// movement. Balance propagation is the caller's decision.
func insertTransaction(tx *gorm.DB, params CreateTransactionParams, parent_id *uint64) (*models.Transaction, []*models.TransactionDetail, error) {
	if err := validateMovements(params.Details); err != nil {
		return nil, nil, err
	}

	if _, err := models.FindClient(tx, params.ClientID); err != nil {
		return nil, nil, err
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		ClientID:            params.ClientID,
		Date:                date,
		State:               params.State,
		Notes:               nullString(params.Notes),
		ParentTransactionID: parent_id,
		CreatedBy:           nullString(params.CreatedBy),
	}

	if err := tx.Create(transaction).Error; err != nil {
		return nil, nil, err
	}

	details := make([]*models.TransactionDetail, 0, len(params.Details))

	for _, movement := range params.Details {
		if _, err := models.FindAsset(tx, movement.AssetID); err != nil {
			return nil, nil, err
		}

		detail := &models.TransactionDetail{
			TransactionID:        transaction.ID,
			AssetID:              movement.AssetID,
			MovementType:         movement.MovementType,
			Amount:               movement.Amount,
			PercentageDifference: movement.PercentageDifference,
			Notes:                nullString(movement.Notes),
		}

		if err := tx.Create(detail).Error; err != nil {
			return nil, nil, err
		}

		if len(movement.Denominations) > 0 {
			if err := recordBreakdown(tx, detail, movement.Denominations); err != nil {
				return nil, nil, err
			}
		}

		details = append(details, detail)
	}

	return transaction, details, nil
}

func recordBreakdown(tx *gorm.DB, detail *models.TransactionDetail, counts []DenominationCount) error {
	denominations, err := models.ListDenominations(tx, detail.AssetID)
	if err != nil {
		return err
	}

	by_id := make(map[uint64]*models.Denomination, len(denominations))
	for _, denomination := range denominations {
		by_id[denomination.ID] = denomination
	}

	breakdown := make([]*models.DetailDenomination, 0, len(counts))
	for _, count := range counts {
		row := &models.DetailDenomination{
			TransactionDetailID: detail.ID,
			DenominationID:      count.DenominationID,
			Count:               count.Count,
		}

		if err := tx.Create(row).Error; err != nil {
			return err
		}

		breakdown = append(breakdown, row)
	}

	// Discrepancies are recorded, not rejected: physical counting happens
	// at the till and the ledger keeps the trace.
	if note, mismatch := models.BreakdownNote(detail.Amount, by_id, breakdown); mismatch {
		detail.AppendNote(note)

		if err := tx.Save(detail).Error; err != nil {
			return err
		}
	}

	return nil
}

func CreateTransaction(params CreateTransactionParams) (*Result, error) {
	if len(params.State) == 0 {
		params.State = types.StatePending
	}

	if params.State == types.StateCancelled || !ledger.ValidState(params.State) {
		return nil, ledger.NewValidation("ledger.transaction.invalid_initial_state")
	}

	result := &Result{}

	err := atomic(func(tx *gorm.DB) error {
		transaction, details, err := insertTransaction(tx, params, nil)
		if err != nil {
			return err
		}

		result.Transaction = transaction
		result.Details = details

		if transaction.State != types.StatePending {
			balances, err := propagateBalances(tx, transaction)
			if err != nil {
				return err
			}

			result.Balances = balances
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	models.RecordAudit("Transaction", result.Transaction.ID, "create", result.Transaction, params.CreatedBy)
	result.Transaction.WriteToInflux()

	return result, nil
}

func GetTransaction(id uint64) (*Result, error) {
	transaction, err := models.FindTransaction(config.DataBase, id)
	if err != nil {
		return nil, classify(err)
	}

	details, err := transaction.Details(config.DataBase)
	if err != nil {
		return nil, classify(err)
	}

	return &Result{Transaction: transaction, Details: details}, nil
}

type TransactionFilters struct {
	ClientID uint64                 `json:"client_id"`
	AssetID  uint64                 `json:"asset_id"`
	State    types.TransactionState `json:"state"`
	ParentID uint64                 `json:"parent_id"`
	TimeFrom int64                  `json:"time_from"`
	TimeTo   int64                  `json:"time_to"`
	Page     int                    `json:"page"`
	Limit    int                    `json:"limit"`
	OrderBy  types.OrderBy          `json:"order_by"`
}

// ListTransactions is a read outside any write transaction; it may observe a
// stale but consistent snapshot.
func ListTransactions(filters TransactionFilters) ([]*models.Transaction, error) {
	if len(filters.OrderBy) == 0 {
		filters.OrderBy = types.OrderByDesc
	}
	if filters.Limit == 0 {
		filters.Limit = 100
	}
	if filters.Page == 0 {
		filters.Page = 1
	}

	tx := config.DataBase.Order("created_at " + filters.OrderBy)

	if filters.ClientID > 0 {
		tx = tx.Where("client_id = ?", filters.ClientID)
	}
	if filters.AssetID > 0 {
		details := config.DataBase.Model(&models.TransactionDetail{}).Select("transaction_id").Where("asset_id = ?", filters.AssetID)
		tx = tx.Where("id IN (?)", details)
	}
	if len(filters.State) > 0 {
		if !ledger.ValidState(filters.State) {
			return nil, ledger.NewValidation("ledger.transaction.invalid_state")
		}

		tx = tx.Where("state = ?", filters.State)
	}
	if filters.ParentID > 0 {
		tx = tx.Where("parent_transaction_id = ?", filters.ParentID)
	}
	if filters.TimeFrom > 0 {
		tx = tx.Where("created_at >= ?", time.Unix(filters.TimeFrom, 0))
	}
	if filters.TimeTo > 0 {
		tx = tx.Where("created_at < ?", time.Unix(filters.TimeTo, 0))
	}

	tx = tx.Offset(filters.Page*filters.Limit - filters.Limit).Limit(filters.Limit)

	var transactions []*models.Transaction
	if err := tx.Find(&transactions).Error; err != nil {
		return nil, classify(err)
	}

	return transactions, nil
}

type UpdateTransactionParams struct {
	Notes     *string          `json:"notes"`
	Date      *time.Time       `json:"date"`
	Details   []MovementParams `json:"details"`
	UpdatedBy string           `json:"updated_by"`
}

// UpdateTransaction edits a transaction that has not affected any balance
// yet. Replacing the movement set is only possible while pending.
func UpdateTransaction(id uint64, params UpdateTransactionParams) (*Result, error) {
	result := &Result{}

	err := atomic(func(tx *gorm.DB) error {
		transaction, err := models.FindTransactionForUpdate(tx, id)
		if err != nil {
			return err
		}

		if transaction.State != types.StatePending {
			return ledger.NewConflict("ledger.transaction.not_pending")
		}

		if params.Notes != nil {
			transaction.Notes = nullString(*params.Notes)
		}
		if params.Date != nil {
			transaction.Date = *params.Date
		}

		if len(params.Details) > 0 {
			if err := validateMovements(params.Details); err != nil {
				return err
			}

			if err := deleteDetails(tx, transaction.ID); err != nil {
				return err
			}

			for _, movement := range params.Details {
				if _, err := models.FindAsset(tx, movement.AssetID); err != nil {
					return err
				}

				detail := &models.TransactionDetail{
					TransactionID:        transaction.ID,
					AssetID:              movement.AssetID,
					MovementType:         movement.MovementType,
					Amount:               movement.Amount,
					PercentageDifference: movement.PercentageDifference,
					Notes:                nullString(movement.Notes),
				}

				if err := tx.Create(detail).Error; err != nil {
					return err
				}

				if len(movement.Denominations) > 0 {
					if err := recordBreakdown(tx, detail, movement.Denominations); err != nil {
						return err
					}
				}
			}
		}

		if err := tx.Save(transaction).Error; err != nil {
			return err
		}

		details, err := transaction.Details(tx)
		if err != nil {
			return err
		}

		result.Transaction = transaction
		result.Details = details

		return nil
	})

	if err != nil {
		return nil, err
	}

	models.RecordAudit("Transaction", id, "update", result.Transaction, params.UpdatedBy)

	return result, nil
}

func UpdateState(id uint64, new_state types.TransactionState, actor string) (*Result, error) {
	result := &Result{}

	err := atomic(func(tx *gorm.DB) error {
		transaction, err := models.FindTransactionForUpdate(tx, id)
		if err != nil {
			return err
		}

		if err := ledger.CanTransition(transaction.State, new_state); err != nil {
			return err
		}

		previous_state := transaction.State
		transaction.State = new_state

		if err := tx.Save(transaction).Error; err != nil {
			return err
		}

		if ledger.AppliesBalance(previous_state, new_state) {
			balances, err := propagateBalances(tx, transaction)
			if err != nil {
				return err
			}

			result.Balances = balances
		}

		// The state-change audit row must commit together with the state
		// write, unlike the fire-and-forget sink.
		if err := models.RecordAuditTx(tx, "Transaction", transaction.ID, "state_change", map[string]interface{}{
			"previous_state": previous_state,
			"new_state":      new_state,
		}, actor); err != nil {
			return err
		}

		result.Transaction = transaction

		return nil
	})

	if err != nil {
		return nil, err
	}

	result.Transaction.WriteToInflux()

	return result, nil
}

func deleteDetails(tx *gorm.DB, transaction_id uint64) error {
	var detail_ids []uint64

	if err := tx.Model(&models.TransactionDetail{}).Where("transaction_id = ?", transaction_id).Pluck("id", &detail_ids).Error; err != nil {
		return err
	}

	if len(detail_ids) > 0 {
		if err := tx.Where("transaction_detail_id IN ?", detail_ids).Delete(&models.DetailDenomination{}).Error; err != nil {
			return err
		}
	}

	return tx.Where("transaction_id = ?", transaction_id).Delete(&models.TransactionDetail{}).Error
}

// RemoveTransaction hard-deletes a transaction that never completed and has
// no children, cascading to movements, denomination rows, reconciliation
// links and balances keyed to it, in one unit.
func RemoveTransaction(id uint64, actor string) error {
	err := atomic(func(tx *gorm.DB) error {
		transaction, err := models.FindTransactionForUpdate(tx, id)
		if err != nil {
			return err
		}

		if transaction.State == types.StateCompleted {
			return ledger.NewConflict("ledger.transaction.completed")
		}

		has_children, err := transaction.HasChildren(tx)
		if err != nil {
			return err
		}
		if has_children {
			return ledger.NewConflict("ledger.transaction.has_children")
		}

		if err := deleteDetails(tx, transaction.ID); err != nil {
			return err
		}

		if err := tx.Where("source_transaction_id = ? OR target_transaction_id = ?", id, id).Delete(&models.Reconciliation{}).Error; err != nil {
			return err
		}

		if err := tx.Where("last_transaction_id = ?", id).Delete(&models.Balance{}).Error; err != nil {
			return err
		}

		return tx.Delete(transaction).Error
	})

	if err != nil {
		return err
	}

	models.RecordAudit("Transaction", id, "remove", map[string]interface{}{"id": id}, actor)

	return nil
}

// CancelTransaction is the pending-only terminal edge; no balance was ever
// applied, so none is reverted.
func CancelTransaction(id uint64, actor string) (*Result, error) {
	result := &Result{}

	err := atomic(func(tx *gorm.DB) error {
		transaction, err := models.FindTransactionForUpdate(tx, id)
		if err != nil {
			return err
		}

		if transaction.State != types.StatePending {
			return ledger.NewConflict("ledger.transaction.not_pending")
		}

		previous_state := transaction.State
		transaction.State = types.StateCancelled

		if err := tx.Save(transaction).Error; err != nil {
			return err
		}

		if err := models.RecordAuditTx(tx, "Transaction", transaction.ID, "state_change", map[string]interface{}{
			"previous_state": previous_state,
			"new_state":      types.StateCancelled,
		}, actor); err != nil {
			return err
		}

		result.Transaction = transaction

		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
