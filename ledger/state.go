package ledger

import (
	"github.com/cambista/ledger/types"
)

var transitions = map[types.TransactionState][]types.TransactionState{
	types.StatePending:        {types.StateCurrentAccount, types.StateCompleted, types.StateCancelled},
	types.StateCurrentAccount: {types.StateCompleted},
	types.StateCompleted:      {},
	types.StateCancelled:      {},
}

func IsTerminal(state types.TransactionState) bool {
	return state == types.StateCompleted || state == types.StateCancelled
}

func ValidState(state types.TransactionState) bool {
	_, found := transitions[state]

	return found
}

// CanTransition enforces the lifecycle: pending -> current_account -> completed,
// with pending -> cancelled as the only other edge. Terminal states reject any
// transition with a conflict, re-entering the current state is a client error.
func CanTransition(from, to types.TransactionState) error {
	if IsTerminal(from) {
		return NewConflict("ledger.transaction.state_terminal")
	}

	if from == to {
		return NewValidation("ledger.transaction.state_unchanged")
	}

	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}

	return NewValidation("ledger.transaction.invalid_transition")
}

// AppliesBalance reports whether the transition crosses the single edge on
// which balance propagation runs: leaving pending for a settled state.
func AppliesBalance(from, to types.TransactionState) bool {
	if from != types.StatePending {
		return false
	}

	return to == types.StateCurrentAccount || to == types.StateCompleted
}
