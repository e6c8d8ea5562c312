package accounting

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cambista/ledger/ledger"
	"github.com/cambista/ledger/models"
	"github.com/cambista/ledger/types"
)

var one_hundred = decimal.NewFromInt(100)

type PartialTransactionParams struct {
	Percentage  decimal.Decimal        `json:"percentage"`
	TargetState types.TransactionState `json:"target_state"`
	CreatedBy   string                 `json:"created_by"`
}

// CreatePartialTransaction settles p percent of a transaction now and defers
// the rest: the existing movements are scaled down to p percent and the
// transaction moves to the target state (propagating if it leaves pending),
// while a new pending child carries the remaining 100-p percent of every
// movement.
func CreatePartialTransaction(id uint64, params PartialTransactionParams) (*Result, error) {
	if !params.Percentage.IsPositive() || params.Percentage.GreaterThanOrEqual(one_hundred) {
		return nil, ledger.NewValidation("ledger.splitter.invalid_percentage")
	}

	if len(params.TargetState) == 0 {
		params.TargetState = types.StateCompleted
	}
	if params.TargetState != types.StateCompleted && params.TargetState != types.StateCurrentAccount {
		return nil, ledger.NewValidation("ledger.splitter.invalid_target_state")
	}

	result := &Result{}
	var child *models.Transaction

	err := atomic(func(tx *gorm.DB) error {
		parent, err := models.FindTransactionForUpdate(tx, id)
		if err != nil {
			return err
		}

		if parent.IsTerminal() {
			return ledger.NewConflict("ledger.transaction.state_terminal")
		}
		if parent.State != types.StatePending && parent.State != types.StateCurrentAccount {
			return ledger.NewValidation("ledger.splitter.parent_not_open")
		}

		details, err := parent.Details(tx)
		if err != nil {
			return err
		}
		if len(details) == 0 {
			return ledger.NewValidation("ledger.transaction.empty_details")
		}

		factor := params.Percentage.Div(one_hundred)
		remainder := make([]MovementParams, 0, len(details))

		for _, detail := range details {
			scaled := detail.Amount.Mul(factor)

			remainder = append(remainder, MovementParams{
				AssetID:              detail.AssetID,
				MovementType:         detail.MovementType,
				Amount:               detail.Amount.Sub(scaled),
				PercentageDifference: detail.PercentageDifference,
			})

			detail.Amount = scaled
			if err := tx.Save(detail).Error; err != nil {
				return err
			}
		}

		previous_state := parent.State
		parent.State = params.TargetState

		if err := tx.Save(parent).Error; err != nil {
			return err
		}

		if ledger.AppliesBalance(previous_state, params.TargetState) {
			balances, err := propagateBalances(tx, parent)
			if err != nil {
				return err
			}

			result.Balances = balances
		}

		if err := models.RecordAuditTx(tx, "Transaction", parent.ID, "partial_split", map[string]interface{}{
			"previous_state": previous_state,
			"new_state":      params.TargetState,
			"percentage":     params.Percentage,
		}, params.CreatedBy); err != nil {
			return err
		}

		child, _, err = insertTransaction(tx, CreateTransactionParams{
			ClientID:  parent.ClientID,
			State:     types.StatePending,
			Details:   remainder,
			CreatedBy: params.CreatedBy,
		}, &parent.ID)
		if err != nil {
			return err
		}

		details, err = parent.Details(tx)
		if err != nil {
			return err
		}

		result.Transaction = parent
		result.Details = details

		return nil
	})

	if err != nil {
		return nil, err
	}

	models.RecordAudit("Transaction", child.ID, "create", child, params.CreatedBy)
	result.Transaction.WriteToInflux()

	return result, nil
}

type ChildTransactionParams struct {
	ClientID  uint64           `json:"client_id"`
	Details   []MovementParams `json:"details"`
	Notes     string           `json:"notes"`
	CreatedBy string           `json:"created_by"`
}

// insertChild creates a settlement child against an open parent. The child is
// forced into current_account and propagated immediately.
func insertChild(tx *gorm.DB, parent_id uint64, params ChildTransactionParams) (*models.Transaction, []*models.TransactionDetail, []*models.Balance, error) {
	parent, err := models.FindTransactionForUpdate(tx, parent_id)
	if err != nil {
		return nil, nil, nil, err
	}

	if parent.State != types.StatePending && parent.State != types.StateCurrentAccount {
		return nil, nil, nil, ledger.NewValidation("ledger.splitter.parent_not_open")
	}

	if params.ClientID != 0 && params.ClientID != parent.ClientID {
		return nil, nil, nil, ledger.NewValidation("ledger.splitter.client_mismatch")
	}

	child, details, err := insertTransaction(tx, CreateTransactionParams{
		ClientID:  parent.ClientID,
		State:     types.StateCurrentAccount,
		Notes:     params.Notes,
		Details:   params.Details,
		CreatedBy: params.CreatedBy,
	}, &parent.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	balances, err := propagateBalances(tx, child)
	if err != nil {
		return nil, nil, nil, err
	}

	return child, details, balances, nil
}

func CreateChildTransaction(parent_id uint64, params ChildTransactionParams) (*Result, error) {
	result := &Result{}

	err := atomic(func(tx *gorm.DB) error {
		child, details, balances, err := insertChild(tx, parent_id, params)
		if err != nil {
			return err
		}

		result.Transaction = child
		result.Details = details
		result.Balances = balances

		return nil
	})

	if err != nil {
		return nil, err
	}

	models.RecordAudit("Transaction", result.Transaction.ID, "create_child", result.Transaction, params.CreatedBy)
	result.Transaction.WriteToInflux()

	return result, nil
}

// CompletePendingTransaction creates a settlement child and, once the
// children cover every aggregated (asset, movement type) bucket of the parent
// within the rounding tolerance, pins the client balance to the residual
// parent-minus-children difference, mirrors the house side, and completes the
// parent together with every current_account child.
func CompletePendingTransaction(parent_id uint64, params ChildTransactionParams) (*Result, error) {
	result := &Result{}
	var completed []*models.Transaction

	err := atomic(func(tx *gorm.DB) error {
		child, details, balances, err := insertChild(tx, parent_id, params)
		if err != nil {
			return err
		}

		result.Transaction = child
		result.Details = details
		result.Balances = balances

		parent, err := models.FindTransactionForUpdate(tx, parent_id)
		if err != nil {
			return err
		}

		parent_movements, err := parent.Movements(tx)
		if err != nil {
			return err
		}

		children, err := parent.Children(tx)
		if err != nil {
			return err
		}

		var child_movements []ledger.Movement
		var open_children []*models.Transaction

		for _, sibling := range children {
			if sibling.IsTerminal() {
				continue
			}

			movements, err := sibling.Movements(tx)
			if err != nil {
				return err
			}

			child_movements = append(child_movements, movements...)
			open_children = append(open_children, sibling)
		}

		coverage := ledger.AggregateCoverage(parent_movements, child_movements)
		if !coverage.Covered() {
			return nil
		}

		if err := settleResiduals(tx, parent, coverage); err != nil {
			return err
		}

		completed = append(completed, parent)
		for _, sibling := range open_children {
			if sibling.State == types.StateCurrentAccount {
				completed = append(completed, sibling)
			}
		}

		for _, transaction := range completed {
			previous_state := transaction.State
			transaction.State = types.StateCompleted

			if err := tx.Save(transaction).Error; err != nil {
				return err
			}

			if err := models.RecordAuditTx(tx, "Transaction", transaction.ID, "state_change", map[string]interface{}{
				"previous_state": previous_state,
				"new_state":      types.StateCompleted,
			}, params.CreatedBy); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	models.RecordAudit("Transaction", result.Transaction.ID, "complete_pending", result.Transaction, params.CreatedBy)
	for _, transaction := range completed {
		transaction.WriteToInflux()
	}

	return result, nil
}

// settleResiduals pins the client's balance per settled asset to the signed
// residual instead of accumulating, and adjusts the house side by the
// observed client change negated so the pair stays zero-sum.
func settleResiduals(tx *gorm.DB, parent *models.Transaction, coverage *ledger.Coverage) error {
	house, err := models.HouseAccount(tx)
	if err != nil {
		return err
	}

	parent_movements, err := parent.Movements(tx)
	if err != nil {
		return err
	}

	immutable, err := immutableAssetSet(tx, parent_movements)
	if err != nil {
		return err
	}

	residuals := ledger.NewDeltas()
	coverage.Each(func(key ledger.CoverageKey, parent_total, children_total, residual decimal.Decimal) {
		residuals.Add(key.AssetID, ledger.SignedAmount(key.Type, residual))
	})

	var settle_err error

	residuals.Each(func(asset_id uint64, residual decimal.Decimal) {
		if settle_err != nil {
			return
		}

		if _, skip := immutable[asset_id]; skip {
			return
		}

		previous := decimal.Zero
		if balance, err := models.FindBalance(tx, parent.ClientID, asset_id); err == nil {
			previous = balance.Amount
		}

		if _, err := models.ForceBalance(tx, parent.ClientID, asset_id, residual, parent.ID); err != nil {
			settle_err = err
			return
		}

		if _, err := models.ApplyBalanceDelta(tx, house.ID, asset_id, previous.Sub(residual), parent.ID); err != nil {
			settle_err = err
			return
		}
	})

	return settle_err
}
