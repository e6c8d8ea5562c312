package ledger

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/shopspring/decimal"

	"github.com/cambista/ledger/types"
)

// CoverageKey identifies one aggregated movement bucket of a parent
// transaction during child settlement.
type CoverageKey struct {
	AssetID uint64
	Type    types.MovementType
}

func coverageComparator(a, b interface{}) int {
	ka := a.(CoverageKey)
	kb := b.(CoverageKey)

	if c := utils.UInt64Comparator(ka.AssetID, kb.AssetID); c != 0 {
		return c
	}

	return utils.StringComparator(string(ka.Type), string(kb.Type))
}

type coverageEntry struct {
	Parent   decimal.Decimal
	Children decimal.Decimal
}

// Coverage holds, per (asset, movement type), the parent transaction's total
// amount against the sum across its non-terminal children.
type Coverage struct {
	tree *treemap.Map
}

func AggregateCoverage(parent []Movement, children []Movement) *Coverage {
	coverage := &Coverage{tree: treemap.NewWith(coverageComparator)}

	for _, movement := range parent {
		entry := coverage.entry(CoverageKey{AssetID: movement.AssetID, Type: movement.Type})
		entry.Parent = entry.Parent.Add(movement.Amount)
	}

	for _, movement := range children {
		entry := coverage.entry(CoverageKey{AssetID: movement.AssetID, Type: movement.Type})
		entry.Children = entry.Children.Add(movement.Amount)
	}

	return coverage
}

func (c *Coverage) entry(key CoverageKey) *coverageEntry {
	if value, found := c.tree.Get(key); found {
		return value.(*coverageEntry)
	}

	entry := &coverageEntry{Parent: decimal.Zero, Children: decimal.Zero}
	c.tree.Put(key, entry)

	return entry
}

// Covered reports whether every aggregated parent amount is matched by the
// children within the rounding tolerance.
func (c *Coverage) Covered() bool {
	covered := true

	c.tree.Each(func(key interface{}, value interface{}) {
		entry := value.(*coverageEntry)

		if entry.Children.LessThan(entry.Parent.Sub(Tolerance)) {
			covered = false
		}
	})

	return covered
}

// Each yields every bucket with the residual parent-minus-children amount,
// in deterministic key order.
func (c *Coverage) Each(fn func(key CoverageKey, parent, children, residual decimal.Decimal)) {
	c.tree.Each(func(key interface{}, value interface{}) {
		entry := value.(*coverageEntry)

		fn(key.(CoverageKey), entry.Parent, entry.Children, entry.Parent.Sub(entry.Children))
	})
}
