package ledger

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/shopspring/decimal"

	"github.com/cambista/ledger/types"
)

// Tolerance is the absolute rounding slack applied everywhere amounts are
// compared: settlement coverage, denomination breakdowns.
var Tolerance = decimal.NewFromFloat(0.01)

// Movement is the engine's view of a transaction detail: one signed amount of
// one asset, from the client's perspective.
type Movement struct {
	AssetID uint64
	Type    types.MovementType
	Amount  decimal.Decimal
}

// SignedAmount converts a movement amount into the client's balance delta.
// A client delivering funds (income) reduces what the client owes the house,
// a client receiving funds (expense) increases it.
func SignedAmount(movement_type types.MovementType, amount decimal.Decimal) decimal.Decimal {
	if movement_type == types.MovementIncome {
		return amount.Neg()
	}

	return amount
}

// Deltas accumulates per-asset client balance changes in a deterministic
// (asset id ascending) iteration order. The house side of every asset is the
// exact negation of the client side.
type Deltas struct {
	tree *treemap.Map
}

func NewDeltas() *Deltas {
	return &Deltas{tree: treemap.NewWith(utils.UInt64Comparator)}
}

func (d *Deltas) Add(asset_id uint64, amount decimal.Decimal) {
	current := d.Client(asset_id)

	d.tree.Put(asset_id, current.Add(amount))
}

func (d *Deltas) Client(asset_id uint64) decimal.Decimal {
	value, found := d.tree.Get(asset_id)
	if !found {
		return decimal.Zero
	}

	return value.(decimal.Decimal)
}

func (d *Deltas) House(asset_id uint64) decimal.Decimal {
	return d.Client(asset_id).Neg()
}

func (d *Deltas) Size() int {
	return d.tree.Size()
}

func (d *Deltas) Each(fn func(asset_id uint64, client_delta decimal.Decimal)) {
	d.tree.Each(func(key interface{}, value interface{}) {
		fn(key.(uint64), value.(decimal.Decimal))
	})
}

// Propagate computes the net client delta per asset for a transaction's full
// movement set. Every call site that touches balances goes through this one
// function so the sign logic cannot drift between create, state change,
// splitter and settlement paths.
func Propagate(movements []Movement) *Deltas {
	deltas := NewDeltas()

	for _, movement := range movements {
		deltas.Add(movement.AssetID, SignedAmount(movement.Type, movement.Amount))
	}

	return deltas
}
