package accounting

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/ledger"
	"github.com/cambista/ledger/models"
)

// TxOptions is applied to every mutating atomic unit. Concurrent balance
// propagations against the same (client, asset) must serialize, so the
// strictest level the store offers is the default. Tests running on sqlite
// override this with the driver default.
var TxOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}

func atomic(fn func(tx *gorm.DB) error) error {
	return classify(config.DataBase.Transaction(fn, TxOptions))
}

// classify maps store-level failures onto the ledger error taxonomy. A
// serialization or deadlock abort is retryable by the caller; anything not
// already typed rolls up as unexpected after the unit has rolled back.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var ledger_err *ledger.Error
	if errors.As(err, &ledger_err) {
		return ledger_err
	}

	var pg_err *pgconn.PgError
	if errors.As(err, &pg_err) {
		if pg_err.Code == "40001" || pg_err.Code == "40P01" {
			return ledger.NewConsistencyFailure("ledger.operation.serialization_failure")
		}
	}

	config.Logger.Errorf("Ledger operation failed %v", err.Error())

	return ledger.NewUnexpected("ledger.operation.failed")
}

// propagateBalances applies a transaction's net movement deltas to the
// client's balances and mirrors the negation onto the house account. Runs at
// most once per transaction lifetime, on the edge out of pending. Immutable
// assets are pass-through instruments and never touch the balance store.
func propagateBalances(tx *gorm.DB, transaction *models.Transaction) ([]*models.Balance, error) {
	movements, err := transaction.Movements(tx)
	if err != nil {
		return nil, err
	}

	immutable, err := immutableAssetSet(tx, movements)
	if err != nil {
		return nil, err
	}

	house, err := models.HouseAccount(tx)
	if err != nil {
		return nil, err
	}

	deltas := ledger.Propagate(movements)

	var balances []*models.Balance
	var apply_err error

	deltas.Each(func(asset_id uint64, client_delta decimal.Decimal) {
		if apply_err != nil {
			return
		}

		if _, skip := immutable[asset_id]; skip {
			return
		}

		client_balance, err := models.ApplyBalanceDelta(tx, transaction.ClientID, asset_id, client_delta, transaction.ID)
		if err != nil {
			apply_err = err
			return
		}

		house_balance, err := models.ApplyBalanceDelta(tx, house.ID, asset_id, client_delta.Neg(), transaction.ID)
		if err != nil {
			apply_err = err
			return
		}

		if client_balance != nil {
			balances = append(balances, client_balance)
		}
		if house_balance != nil {
			balances = append(balances, house_balance)
		}
	})

	if apply_err != nil {
		return nil, apply_err
	}

	return balances, nil
}

func immutableAssetSet(tx *gorm.DB, movements []ledger.Movement) (map[uint64]struct{}, error) {
	if len(movements) == 0 {
		return map[uint64]struct{}{}, nil
	}

	asset_ids := make([]uint64, 0, len(movements))
	for _, movement := range movements {
		asset_ids = append(asset_ids, movement.AssetID)
	}

	var assets []*models.Asset
	if err := tx.Where("id IN ?", asset_ids).Find(&assets).Error; err != nil {
		return nil, err
	}

	immutable := make(map[uint64]struct{})
	for _, asset := range assets {
		if asset.IsImmutable {
			immutable[asset.ID] = struct{}{}
		}
	}

	return immutable, nil
}
