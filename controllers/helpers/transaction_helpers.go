package helpers

import (
	"github.com/gookit/validate"
	"github.com/shopspring/decimal"

	"github.com/cambista/ledger/services/accounting"
	"github.com/cambista/ledger/types"
)

type CreateTransactionParams struct {
	ClientID uint64                      `json:"client_id" form:"client_id" validate:"required"`
	State    types.TransactionState      `json:"state" form:"state" validate:"ValidateState"`
	Notes    string                      `json:"notes" form:"notes"`
	Details  []accounting.MovementParams `json:"details" form:"details" validate:"required"`
}

func (p CreateTransactionParams) Messages() map[string]string {
	invalid_message := "ledger.transaction.invalid_{field}"

	return validate.MS{
		"required":      invalid_message,
		"ValidateState": "ledger.transaction.invalid_initial_state",
	}
}

func (p CreateTransactionParams) ValidateState(State types.TransactionState) bool {
	if len(State) == 0 {
		return true
	}

	return State == types.StatePending || State == types.StateCurrentAccount || State == types.StateCompleted
}

type UpdateStateParams struct {
	State types.TransactionState `json:"state" form:"state" validate:"required"`
}

func (p UpdateStateParams) Messages() map[string]string {
	return validate.MS{
		"required": "ledger.transaction.invalid_{field}",
	}
}

type PartialTransactionParams struct {
	Percentage  decimal.Decimal        `json:"percentage" form:"percentage" validate:"ValidatePercentage"`
	TargetState types.TransactionState `json:"target_state" form:"target_state"`
}

func (p PartialTransactionParams) Messages() map[string]string {
	return validate.MS{
		"ValidatePercentage": "ledger.splitter.invalid_percentage",
	}
}

func (p PartialTransactionParams) ValidatePercentage(Percentage decimal.Decimal) bool {
	return Percentage.IsPositive() && Percentage.LessThan(decimal.NewFromInt(100))
}

type ChildTransactionParams struct {
	ClientID uint64                      `json:"client_id" form:"client_id"`
	Notes    string                      `json:"notes" form:"notes"`
	Details  []accounting.MovementParams `json:"details" form:"details" validate:"required"`
}

func (p ChildTransactionParams) Messages() map[string]string {
	return validate.MS{
		"required": "ledger.transaction.invalid_{field}",
	}
}

type ReconcileParams struct {
	SourceTransactionID uint64                            `json:"source_transaction_id" form:"source_transaction_id" validate:"required"`
	SourceAssetID       uint64                            `json:"source_asset_id" form:"source_asset_id" validate:"required"`
	Targets             []accounting.ReconciliationTarget `json:"targets" form:"targets" validate:"required"`
}

func (p ReconcileParams) Messages() map[string]string {
	return validate.MS{
		"required": "ledger.reconciliation.invalid_{field}",
	}
}

type ConciliateImmutableParams struct {
	Entries []accounting.ImmutableAssetEntry `json:"entries" form:"entries" validate:"required"`
}

func (p ConciliateImmutableParams) Messages() map[string]string {
	return validate.MS{
		"required": "ledger.passthrough.invalid_{field}",
	}
}
