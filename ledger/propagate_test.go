package ledger

import (
	"io/ioutil"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	yaml "gopkg.in/yaml.v2"

	"github.com/cambista/ledger/types"
)

type suitePropagateTester struct {
	suite.Suite
}

type PropagationEntry struct {
	Name      string   `yaml:"name"`
	Movements []string `yaml:"movements"`
	Deltas    []string `yaml:"deltas"`
}

func parseMovement(raw string) Movement {
	fields := strings.Split(raw, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	asset_id, _ := strconv.ParseUint(fields[0], 10, 64)
	amount, _ := decimal.NewFromString(fields[2])

	var movement_type types.MovementType
	switch fields[1] {
	case "INCOME":
		movement_type = types.MovementIncome
	case "EXPENSE":
		movement_type = types.MovementExpense
	}

	return Movement{AssetID: asset_id, Type: movement_type, Amount: amount}
}

func (pe *PropagationEntry) Test(s *suitePropagateTester) {
	s.T().Run(pe.Name, func(t *testing.T) {
		movements := make([]Movement, 0, len(pe.Movements))
		for _, raw := range pe.Movements {
			movements = append(movements, parseMovement(raw))
		}

		deltas := Propagate(movements)

		got := make(map[uint64]decimal.Decimal)
		deltas.Each(func(asset_id uint64, client_delta decimal.Decimal) {
			if !client_delta.IsZero() {
				got[asset_id] = client_delta
			}
		})

		s.Len(got, len(pe.Deltas))

		for _, raw := range pe.Deltas {
			fields := strings.Split(raw, ",")
			asset_id, _ := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
			expected, _ := decimal.NewFromString(strings.TrimSpace(fields[1]))

			s.True(got[asset_id].Equal(expected), "asset %d: expected %s, got %s", asset_id, expected, got[asset_id])
		}
	})
}

func (s *suitePropagateTester) TestPropagationScenarios() {
	propagationFile, err := ioutil.ReadFile("./fixtures/propagation.yaml")
	s.NoError(err)

	var entries []PropagationEntry
	err = yaml.Unmarshal(propagationFile, &entries)
	if err != nil {
		panic(err)
	}

	for _, entry := range entries {
		entry.Test(s)
	}
}

func (s *suitePropagateTester) TestHouseMirrorsClient() {
	deltas := Propagate([]Movement{
		{AssetID: 1, Type: types.MovementIncome, Amount: decimal.NewFromInt(5000)},
		{AssetID: 2, Type: types.MovementExpense, Amount: decimal.NewFromFloat(37.25)},
	})

	deltas.Each(func(asset_id uint64, client_delta decimal.Decimal) {
		s.True(deltas.House(asset_id).Equal(client_delta.Neg()))
		s.True(client_delta.Add(deltas.House(asset_id)).IsZero())
	})
}

func (s *suitePropagateTester) TestDeterministicIterationOrder() {
	deltas := Propagate([]Movement{
		{AssetID: 9, Type: types.MovementExpense, Amount: decimal.NewFromInt(1)},
		{AssetID: 3, Type: types.MovementExpense, Amount: decimal.NewFromInt(1)},
		{AssetID: 7, Type: types.MovementExpense, Amount: decimal.NewFromInt(1)},
	})

	var order []uint64
	deltas.Each(func(asset_id uint64, client_delta decimal.Decimal) {
		order = append(order, asset_id)
	})

	s.EqualValues([]uint64{3, 7, 9}, order)
}

func (s *suitePropagateTester) TestSignedAmount() {
	amount := decimal.NewFromInt(42)

	s.True(SignedAmount(types.MovementIncome, amount).Equal(amount.Neg()))
	s.True(SignedAmount(types.MovementExpense, amount).Equal(amount))
}

func TestPropagate(t *testing.T) {
	suite.Run(t, new(suitePropagateTester))
}
