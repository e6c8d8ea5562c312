package accounting

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/ledger"
	"github.com/cambista/ledger/models"
	"github.com/cambista/ledger/types"
)

type suiteAccountingTester struct {
	suite.Suite

	house *models.Client
	ana   *models.Client
	bruno *models.Client

	usd  *models.Asset
	eur  *models.Asset
	wire *models.Asset
}

func (s *suiteAccountingTester) SetupSuite() {
	config.NewLoggerService()
	config.HouseAccountUID = "IDHOUSE0000001"

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(models.AutoMigrate(db))

	config.DataBase = db

	// sqlite serializes writers on its own.
	TxOptions = &sql.TxOptions{}
}

func (s *suiteAccountingTester) SetupTest() {
	for _, model := range []interface{}{
		&models.AuditLog{},
		&models.Reconciliation{},
		&models.DetailDenomination{},
		&models.TransactionDetail{},
		&models.Transaction{},
		&models.Balance{},
		&models.Denomination{},
		&models.Asset{},
		&models.Client{},
	} {
		err := config.DataBase.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
		s.Require().NoError(err)
	}

	models.ResetHouseAccountCache()

	s.house = &models.Client{UID: config.HouseAccountUID, Name: "Casa de Cambio"}
	s.ana = &models.Client{UID: "IDCLI000000001", Name: "Ana"}
	s.bruno = &models.Client{UID: "IDCLI000000002", Name: "Bruno"}

	for _, client := range []*models.Client{s.house, s.ana, s.bruno} {
		s.Require().NoError(config.DataBase.Create(client).Error)
	}

	s.usd = &models.Asset{Name: "US Dollar", Symbol: "USD"}
	s.eur = &models.Asset{Name: "Euro", Symbol: "EUR"}
	s.wire = &models.Asset{Name: "Wire Transfer", Symbol: "WIRE", IsImmutable: true}

	for _, asset := range []*models.Asset{s.usd, s.eur, s.wire} {
		s.Require().NoError(config.DataBase.Create(asset).Error)
	}
}

func income(asset_id uint64, amount string) MovementParams {
	return MovementParams{AssetID: asset_id, MovementType: types.MovementIncome, Amount: decimal.RequireFromString(amount)}
}

func expense(asset_id uint64, amount string) MovementParams {
	return MovementParams{AssetID: asset_id, MovementType: types.MovementExpense, Amount: decimal.RequireFromString(amount)}
}

func (s *suiteAccountingTester) createTransaction(client_id uint64, state types.TransactionState, details ...MovementParams) *Result {
	result, err := CreateTransaction(CreateTransactionParams{
		ClientID:  client_id,
		State:     state,
		Details:   details,
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)

	return result
}

func (s *suiteAccountingTester) balance(client_id, asset_id uint64) decimal.Decimal {
	balance, err := models.FindBalance(config.DataBase, client_id, asset_id)
	if err != nil {
		return decimal.Zero
	}

	return balance.Amount
}

func (s *suiteAccountingTester) assertBalance(client_id, asset_id uint64, expected string) {
	amount := s.balance(client_id, asset_id)
	s.True(amount.Equal(decimal.RequireFromString(expected)), "client %d asset %d: expected %s, got %s", client_id, asset_id, expected, amount)
}

func (s *suiteAccountingTester) assertZeroSum(asset_id uint64) {
	balances, err := models.BalancesForAsset(config.DataBase, asset_id)
	s.Require().NoError(err)

	total := decimal.Zero
	for _, balance := range balances {
		total = total.Add(balance.Amount)
	}

	s.True(total.IsZero(), "asset %d balances sum to %s", asset_id, total)
}

func (s *suiteAccountingTester) balanceRowCount() int64 {
	var count int64
	s.Require().NoError(config.DataBase.Model(&models.Balance{}).Count(&count).Error)

	return count
}

func (s *suiteAccountingTester) TestCreatePendingTouchesNoBalances() {
	result := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"), expense(s.eur.ID, "850"))

	s.Equal(types.StatePending, result.Transaction.State)
	s.Len(result.Details, 2)
	s.Empty(result.Balances)
	s.EqualValues(0, s.balanceRowCount())
}

func (s *suiteAccountingTester) TestCreateCompletedPropagates() {
	result := s.createTransaction(s.ana.ID, types.StateCompleted, income(s.usd.ID, "1000"), expense(s.eur.ID, "850"))

	s.Equal(types.StateCompleted, result.Transaction.State)
	s.Len(result.Balances, 4)

	s.assertBalance(s.ana.ID, s.usd.ID, "-1000")
	s.assertBalance(s.house.ID, s.usd.ID, "1000")
	s.assertBalance(s.ana.ID, s.eur.ID, "850")
	s.assertBalance(s.house.ID, s.eur.ID, "-850")

	s.assertZeroSum(s.usd.ID)
	s.assertZeroSum(s.eur.ID)
}

func (s *suiteAccountingTester) TestCreateValidations() {
	_, err := CreateTransaction(CreateTransactionParams{ClientID: s.ana.ID, State: types.StateCancelled, Details: []MovementParams{income(s.usd.ID, "1")}})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = CreateTransaction(CreateTransactionParams{ClientID: s.ana.ID, State: "settled", Details: []MovementParams{income(s.usd.ID, "1")}})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = CreateTransaction(CreateTransactionParams{ClientID: s.ana.ID})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = CreateTransaction(CreateTransactionParams{ClientID: s.ana.ID, Details: []MovementParams{
		{AssetID: s.usd.ID, MovementType: types.MovementIncome, Amount: decimal.RequireFromString("-5")},
	}})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = CreateTransaction(CreateTransactionParams{ClientID: 9999, Details: []MovementParams{income(s.usd.ID, "1")}})
	s.Equal(ledger.KindNotFound, ledger.KindOf(err))

	_, err = CreateTransaction(CreateTransactionParams{ClientID: s.ana.ID, Details: []MovementParams{income(9999, "1")}})
	s.Equal(ledger.KindNotFound, ledger.KindOf(err))

	s.EqualValues(0, s.balanceRowCount())
}

func (s *suiteAccountingTester) TestUpdateStatePropagatesExactlyOnce() {
	created := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))

	result, err := UpdateState(created.Transaction.ID, types.StateCurrentAccount, "teller.test")
	s.Require().NoError(err)
	s.Equal(types.StateCurrentAccount, result.Transaction.State)
	s.Len(result.Balances, 2)

	s.assertBalance(s.ana.ID, s.usd.ID, "-1000")
	s.assertBalance(s.house.ID, s.usd.ID, "1000")

	result, err = UpdateState(created.Transaction.ID, types.StateCompleted, "teller.test")
	s.Require().NoError(err)
	s.Equal(types.StateCompleted, result.Transaction.State)
	s.Empty(result.Balances)

	s.assertBalance(s.ana.ID, s.usd.ID, "-1000")
	s.assertZeroSum(s.usd.ID)

	var audit_count int64
	err = config.DataBase.Model(&models.AuditLog{}).Where("action = ?", "state_change").Count(&audit_count).Error
	s.Require().NoError(err)
	s.EqualValues(2, audit_count)
}

func (s *suiteAccountingTester) TestUpdateStateRejectsInvalidEdges() {
	created := s.createTransaction(s.ana.ID, types.StateCompleted, income(s.usd.ID, "100"))

	_, err := UpdateState(created.Transaction.ID, types.StatePending, "teller.test")
	s.Equal(ledger.KindConflict, ledger.KindOf(err))

	open := s.createTransaction(s.ana.ID, types.StateCurrentAccount, income(s.usd.ID, "100"))

	_, err = UpdateState(open.Transaction.ID, types.StateCancelled, "teller.test")
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = UpdateState(9999, types.StateCompleted, "teller.test")
	s.Equal(ledger.KindNotFound, ledger.KindOf(err))
}

func (s *suiteAccountingTester) TestCancelTransaction() {
	created := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))

	result, err := CancelTransaction(created.Transaction.ID, "teller.test")
	s.Require().NoError(err)
	s.Equal(types.StateCancelled, result.Transaction.State)
	s.EqualValues(0, s.balanceRowCount())

	_, err = CancelTransaction(created.Transaction.ID, "teller.test")
	s.Equal(ledger.KindConflict, ledger.KindOf(err))

	_, err = UpdateState(created.Transaction.ID, types.StateCompleted, "teller.test")
	s.Equal(ledger.KindConflict, ledger.KindOf(err))
}

func (s *suiteAccountingTester) TestUpdatePendingReplacesDetails() {
	created := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))

	notes := "renegotiated rate"
	result, err := UpdateTransaction(created.Transaction.ID, UpdateTransactionParams{
		Notes:     &notes,
		Details:   []MovementParams{income(s.usd.ID, "900"), expense(s.eur.ID, "765")},
		UpdatedBy: "teller.test",
	})
	s.Require().NoError(err)
	s.Equal(notes, result.Transaction.Notes.String)
	s.Len(result.Details, 2)
	s.True(result.Details[0].Amount.Equal(decimal.RequireFromString("900")))

	_, err = UpdateState(created.Transaction.ID, types.StateCurrentAccount, "teller.test")
	s.Require().NoError(err)

	_, err = UpdateTransaction(created.Transaction.ID, UpdateTransactionParams{Notes: &notes})
	s.Equal(ledger.KindConflict, ledger.KindOf(err))
}

func (s *suiteAccountingTester) TestRemoveTransaction() {
	created := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))

	s.Require().NoError(RemoveTransaction(created.Transaction.ID, "teller.test"))

	_, err := GetTransaction(created.Transaction.ID)
	s.Equal(ledger.KindNotFound, ledger.KindOf(err))

	var detail_count int64
	s.Require().NoError(config.DataBase.Model(&models.TransactionDetail{}).Where("transaction_id = ?", created.Transaction.ID).Count(&detail_count).Error)
	s.EqualValues(0, detail_count)

	completed := s.createTransaction(s.ana.ID, types.StateCompleted, income(s.usd.ID, "100"))
	s.Equal(ledger.KindConflict, ledger.KindOf(RemoveTransaction(completed.Transaction.ID, "teller.test")))

	parent := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))
	_, err = CreateChildTransaction(parent.Transaction.ID, ChildTransactionParams{
		Details:   []MovementParams{income(s.usd.ID, "400")},
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)
	s.Equal(ledger.KindConflict, ledger.KindOf(RemoveTransaction(parent.Transaction.ID, "teller.test")))
}

func (s *suiteAccountingTester) TestImmutableAssetsNeverTouchBalances() {
	s.createTransaction(s.ana.ID, types.StateCompleted, income(s.wire.ID, "5000"), expense(s.usd.ID, "100"))

	s.assertBalance(s.ana.ID, s.usd.ID, "100")
	s.assertBalance(s.house.ID, s.usd.ID, "-100")

	var wire_rows int64
	s.Require().NoError(config.DataBase.Model(&models.Balance{}).Where("asset_id = ?", s.wire.ID).Count(&wire_rows).Error)
	s.EqualValues(0, wire_rows)
}

func (s *suiteAccountingTester) TestPartialSplit() {
	parent := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"), expense(s.eur.ID, "850"))

	result, err := CreatePartialTransaction(parent.Transaction.ID, PartialTransactionParams{
		Percentage:  decimal.RequireFromString("40"),
		TargetState: types.StateCompleted,
		CreatedBy:   "teller.test",
	})
	s.Require().NoError(err)

	s.Equal(types.StateCompleted, result.Transaction.State)
	s.Require().Len(result.Details, 2)
	s.True(result.Details[0].Amount.Equal(decimal.RequireFromString("400")))
	s.True(result.Details[1].Amount.Equal(decimal.RequireFromString("340")))

	s.assertBalance(s.ana.ID, s.usd.ID, "-400")
	s.assertBalance(s.ana.ID, s.eur.ID, "340")
	s.assertZeroSum(s.usd.ID)
	s.assertZeroSum(s.eur.ID)

	children, err := result.Transaction.Children(config.DataBase)
	s.Require().NoError(err)
	s.Require().Len(children, 1)

	child := children[0]
	s.Equal(types.StatePending, child.State)

	child_details, err := child.Details(config.DataBase)
	s.Require().NoError(err)
	s.Require().Len(child_details, 2)
	s.True(child_details[0].Amount.Equal(decimal.RequireFromString("600")))
	s.True(child_details[1].Amount.Equal(decimal.RequireFromString("510")))
}

func (s *suiteAccountingTester) TestPartialSplitValidations() {
	parent := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))

	for _, percentage := range []string{"0", "-10", "100", "150"} {
		_, err := CreatePartialTransaction(parent.Transaction.ID, PartialTransactionParams{Percentage: decimal.RequireFromString(percentage)})
		s.Equal(ledger.KindValidation, ledger.KindOf(err))
	}

	_, err := CreatePartialTransaction(parent.Transaction.ID, PartialTransactionParams{
		Percentage:  decimal.RequireFromString("50"),
		TargetState: types.StatePending,
	})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	completed := s.createTransaction(s.ana.ID, types.StateCompleted, income(s.usd.ID, "100"))
	_, err = CreatePartialTransaction(completed.Transaction.ID, PartialTransactionParams{Percentage: decimal.RequireFromString("50")})
	s.Equal(ledger.KindConflict, ledger.KindOf(err))
}

func (s *suiteAccountingTester) TestCreateChildPropagatesImmediately() {
	parent := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))

	result, err := CreateChildTransaction(parent.Transaction.ID, ChildTransactionParams{
		Details:   []MovementParams{income(s.usd.ID, "400")},
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)

	s.Equal(types.StateCurrentAccount, result.Transaction.State)
	s.Require().NotNil(result.Transaction.ParentTransactionID)
	s.Equal(parent.Transaction.ID, *result.Transaction.ParentTransactionID)

	s.assertBalance(s.ana.ID, s.usd.ID, "-400")
	s.assertBalance(s.house.ID, s.usd.ID, "400")

	refreshed, err := GetTransaction(parent.Transaction.ID)
	s.Require().NoError(err)
	s.Equal(types.StatePending, refreshed.Transaction.State)

	_, err = CreateChildTransaction(parent.Transaction.ID, ChildTransactionParams{
		ClientID: s.bruno.ID,
		Details:  []MovementParams{income(s.usd.ID, "100")},
	})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))
}

func (s *suiteAccountingTester) TestCompletePendingFullCoverage() {
	parent := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))

	_, err := CompletePendingTransaction(parent.Transaction.ID, ChildTransactionParams{
		Details:   []MovementParams{income(s.usd.ID, "1000")},
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)

	refreshed, err := GetTransaction(parent.Transaction.ID)
	s.Require().NoError(err)
	s.Equal(types.StateCompleted, refreshed.Transaction.State)

	children, err := refreshed.Transaction.Children(config.DataBase)
	s.Require().NoError(err)
	s.Require().Len(children, 1)
	s.Equal(types.StateCompleted, children[0].State)

	s.assertBalance(s.ana.ID, s.usd.ID, "0")
	s.assertBalance(s.house.ID, s.usd.ID, "0")
	s.assertZeroSum(s.usd.ID)
}

func (s *suiteAccountingTester) TestCompletePendingPartialCoverageStaysOpen() {
	parent := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))

	result, err := CompletePendingTransaction(parent.Transaction.ID, ChildTransactionParams{
		Details:   []MovementParams{income(s.usd.ID, "400")},
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)
	s.Equal(types.StateCurrentAccount, result.Transaction.State)

	refreshed, err := GetTransaction(parent.Transaction.ID)
	s.Require().NoError(err)
	s.Equal(types.StatePending, refreshed.Transaction.State)

	s.assertBalance(s.ana.ID, s.usd.ID, "-400")
	s.assertZeroSum(s.usd.ID)
}

func (s *suiteAccountingTester) TestCompletePendingCoverageWithinTolerance() {
	parent := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "1000"))

	_, err := CreateChildTransaction(parent.Transaction.ID, ChildTransactionParams{
		Details:   []MovementParams{income(s.usd.ID, "600")},
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)

	_, err = CompletePendingTransaction(parent.Transaction.ID, ChildTransactionParams{
		Details:   []MovementParams{income(s.usd.ID, "399.99")},
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)

	refreshed, err := GetTransaction(parent.Transaction.ID)
	s.Require().NoError(err)
	s.Equal(types.StateCompleted, refreshed.Transaction.State)

	children, err := refreshed.Transaction.Children(config.DataBase)
	s.Require().NoError(err)
	s.Require().Len(children, 2)
	for _, child := range children {
		s.Equal(types.StateCompleted, child.State)
	}

	// The 0.01 shortfall stays on the books as the client's residual debt.
	s.assertBalance(s.ana.ID, s.usd.ID, "-0.01")
	s.assertBalance(s.house.ID, s.usd.ID, "0.01")
	s.assertZeroSum(s.usd.ID)
}

func (s *suiteAccountingTester) reconciliationFixture() (*Result, *Result) {
	source := s.createTransaction(s.ana.ID, types.StateCompleted, expense(s.usd.ID, "500"))
	target := s.createTransaction(s.bruno.ID, types.StateCompleted, income(s.usd.ID, "300"))

	s.assertBalance(s.ana.ID, s.usd.ID, "500")
	s.assertBalance(s.bruno.ID, s.usd.ID, "-300")
	s.assertBalance(s.house.ID, s.usd.ID, "-200")

	return source, target
}

func (s *suiteAccountingTester) TestReconcile() {
	source, _ := s.reconciliationFixture()

	result, err := Reconcile(ReconcileParams{
		SourceTransactionID: source.Transaction.ID,
		SourceAssetID:       s.usd.ID,
		Targets: []ReconciliationTarget{
			{ClientID: s.bruno.ID, AssetID: s.usd.ID, Amount: decimal.RequireFromString("300")},
		},
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)
	s.Require().Len(result.Reconciliations, 1)
	s.True(result.Reconciliations[0].Amount.Equal(decimal.RequireFromString("300")))

	s.assertBalance(s.ana.ID, s.usd.ID, "200")
	s.assertBalance(s.bruno.ID, s.usd.ID, "0")
	s.assertBalance(s.house.ID, s.usd.ID, "-200")
	s.assertZeroSum(s.usd.ID)

	settlement, err := models.FindTransaction(config.DataBase, result.Reconciliations[0].TargetTransactionID)
	s.Require().NoError(err)
	s.Equal(types.StateCompleted, settlement.State)
	s.Equal(s.bruno.ID, settlement.ClientID)
}

func (s *suiteAccountingTester) TestReconcileValidations() {
	source, _ := s.reconciliationFixture()

	_, err := Reconcile(ReconcileParams{SourceTransactionID: source.Transaction.ID, SourceAssetID: s.usd.ID})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = Reconcile(ReconcileParams{
		SourceTransactionID: source.Transaction.ID,
		SourceAssetID:       s.usd.ID,
		Targets:             []ReconciliationTarget{{ClientID: s.bruno.ID, AssetID: s.usd.ID, Amount: decimal.Zero}},
	})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = Reconcile(ReconcileParams{
		SourceTransactionID: source.Transaction.ID,
		SourceAssetID:       s.usd.ID,
		Targets:             []ReconciliationTarget{{ClientID: s.bruno.ID, AssetID: s.eur.ID, Amount: decimal.RequireFromString("100")}},
	})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = Reconcile(ReconcileParams{
		SourceTransactionID: source.Transaction.ID,
		SourceAssetID:       s.usd.ID,
		Targets:             []ReconciliationTarget{{ClientID: s.bruno.ID, AssetID: s.usd.ID, Amount: decimal.RequireFromString("600")}},
	})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = Reconcile(ReconcileParams{
		SourceTransactionID: source.Transaction.ID,
		SourceAssetID:       s.usd.ID,
		Targets:             []ReconciliationTarget{{ClientID: s.bruno.ID, AssetID: s.usd.ID, Amount: decimal.RequireFromString("400")}},
	})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	// Failed attempts leave the books untouched.
	s.assertBalance(s.ana.ID, s.usd.ID, "500")
	s.assertBalance(s.bruno.ID, s.usd.ID, "-300")
	s.assertZeroSum(s.usd.ID)
}

func (s *suiteAccountingTester) TestFindClientsForReconciliation() {
	s.reconciliationFixture()

	candidates, err := FindClientsForReconciliation(s.usd.ID)
	s.Require().NoError(err)

	s.Require().Len(candidates.OweHouse, 1)
	s.Equal(s.ana.ID, candidates.OweHouse[0].ClientID)
	s.True(candidates.OweHouse[0].Amount.Equal(decimal.RequireFromString("500")))

	s.Require().Len(candidates.OwedByHouse, 1)
	s.Equal(s.bruno.ID, candidates.OwedByHouse[0].ClientID)
	s.True(candidates.OwedByHouse[0].Amount.Equal(decimal.RequireFromString("-300")))
}

func (s *suiteAccountingTester) TestConciliateImmutableAssets() {
	results, err := ConciliateImmutableAssets(ConciliateImmutableParams{
		Entries: []ImmutableAssetEntry{
			{ClientID: s.ana.ID, AssetID: s.wire.ID, MovementType: types.MovementIncome, Amount: decimal.RequireFromString("5000")},
			{ClientID: s.bruno.ID, AssetID: s.wire.ID, MovementType: types.MovementExpense, Amount: decimal.RequireFromString("5000")},
		},
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)
	s.Require().Len(results, 2)

	s.Equal(types.StateCompleted, results[0].Transaction.State)
	s.Equal(types.StateCompleted, results[1].Transaction.State)
	s.Nil(results[0].Transaction.ParentTransactionID)
	s.Require().NotNil(results[1].Transaction.ParentTransactionID)
	s.Equal(results[0].Transaction.ID, *results[1].Transaction.ParentTransactionID)

	s.EqualValues(0, s.balanceRowCount())

	_, err = ConciliateImmutableAssets(ConciliateImmutableParams{
		Entries: []ImmutableAssetEntry{
			{ClientID: s.ana.ID, AssetID: s.usd.ID, MovementType: types.MovementIncome, Amount: decimal.RequireFromString("100")},
		},
	})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))
}

func (s *suiteAccountingTester) TestFindOpenImmutableAssetTransactions() {
	open := s.createTransaction(s.ana.ID, types.StatePending, income(s.wire.ID, "5000"))
	s.createTransaction(s.bruno.ID, types.StateCompleted, income(s.wire.ID, "1000"))
	s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "100"))

	transactions, err := FindOpenImmutableAssetTransactions()
	s.Require().NoError(err)
	s.Require().Len(transactions, 1)
	s.Equal(open.Transaction.ID, transactions[0].ID)
}

func (s *suiteAccountingTester) TestDenominationBreakdownNote() {
	hundred := &models.Denomination{AssetID: s.usd.ID, Value: decimal.RequireFromString("100")}
	fifty := &models.Denomination{AssetID: s.usd.ID, Value: decimal.RequireFromString("50")}
	s.Require().NoError(config.DataBase.Create(hundred).Error)
	s.Require().NoError(config.DataBase.Create(fifty).Error)

	matching := income(s.usd.ID, "250")
	matching.Denominations = []DenominationCount{
		{DenominationID: hundred.ID, Count: 2},
		{DenominationID: fifty.ID, Count: 1},
	}

	result, err := CreateTransaction(CreateTransactionParams{ClientID: s.ana.ID, Details: []MovementParams{matching}})
	s.Require().NoError(err)
	s.False(result.Details[0].Notes.Valid)

	short := income(s.usd.ID, "250")
	short.Denominations = []DenominationCount{{DenominationID: hundred.ID, Count: 2}}

	result, err = CreateTransaction(CreateTransactionParams{ClientID: s.ana.ID, Details: []MovementParams{short}})
	s.Require().NoError(err)
	s.True(result.Details[0].Notes.Valid)
	s.Contains(result.Details[0].Notes.String, "denomination breakdown differs")
}

func (s *suiteAccountingTester) TestListTransactions() {
	first := s.createTransaction(s.ana.ID, types.StatePending, income(s.usd.ID, "100"))
	s.createTransaction(s.ana.ID, types.StateCompleted, income(s.usd.ID, "200"))
	s.createTransaction(s.bruno.ID, types.StatePending, income(s.usd.ID, "300"))

	transactions, err := ListTransactions(TransactionFilters{ClientID: s.ana.ID})
	s.Require().NoError(err)
	s.Len(transactions, 2)

	transactions, err = ListTransactions(TransactionFilters{State: types.StatePending})
	s.Require().NoError(err)
	s.Len(transactions, 2)

	_, err = ListTransactions(TransactionFilters{State: "settled"})
	s.Equal(ledger.KindValidation, ledger.KindOf(err))

	_, err = CreateChildTransaction(first.Transaction.ID, ChildTransactionParams{
		Details:   []MovementParams{income(s.usd.ID, "40")},
		CreatedBy: "teller.test",
	})
	s.Require().NoError(err)

	transactions, err = ListTransactions(TransactionFilters{ParentID: first.Transaction.ID})
	s.Require().NoError(err)
	s.Len(transactions, 1)

	s.createTransaction(s.bruno.ID, types.StatePending, income(s.eur.ID, "50"))

	transactions, err = ListTransactions(TransactionFilters{AssetID: s.eur.ID})
	s.Require().NoError(err)
	s.Len(transactions, 1)
}

func (s *suiteAccountingTester) TestGetTransactionNotFound() {
	_, err := GetTransaction(9999)
	s.Equal(ledger.KindNotFound, ledger.KindOf(err))
}

func TestAccounting(t *testing.T) {
	suite.Run(t, new(suiteAccountingTester))
}
