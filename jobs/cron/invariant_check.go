package cron

import (
	"github.com/jasonlvhit/gocron"
	"github.com/shopspring/decimal"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/models"
)

type InvariantCheckJob struct {
}

func (j *InvariantCheckJob) Process() {
	s := gocron.NewScheduler()
	s.Every(1).Day().At("00:05:00").Do(checkZeroSum)
	<-s.Start()
}

// checkZeroSum audits the binding invariant of the balance store: for every
// asset the balances of all clients plus the house account sum to zero, and
// immutable assets carry no balance rows at all. Drift is reported, never
// repaired automatically.
func checkZeroSum() {
	var assets []*models.Asset

	if err := config.DataBase.Find(&assets).Error; err != nil {
		config.Logger.Errorf("Invariant check failed to list assets %v", err.Error())
		return
	}

	for _, asset := range assets {
		balances, err := models.BalancesForAsset(config.DataBase, asset.ID)
		if err != nil {
			config.Logger.Errorf("Invariant check failed to list balances %v", err.Error())
			continue
		}

		if asset.IsImmutable {
			if len(balances) > 0 {
				config.Logger.Errorf("Invariant check: immutable asset %d holds %d balance rows", asset.ID, len(balances))
			}
			continue
		}

		sum := decimal.Zero
		for _, balance := range balances {
			sum = sum.Add(balance.Amount)
		}

		drift, _ := sum.Float64()

		if config.InfluxDB != nil {
			config.InfluxDB.NewPoint("ledger_invariant", map[string]string{
				"asset": asset.Name,
			}, map[string]interface{}{
				"drift":    drift,
				"balances": len(balances),
			})
		}

		if !sum.IsZero() {
			config.Logger.Errorf("Invariant check: asset %d balances sum to %s, expected zero", asset.ID, sum.String())
		}
	}
}
