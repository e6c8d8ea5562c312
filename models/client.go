package models

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/ledger"
)

type Client struct {
	ID        uint64         `json:"id" gorm:"primaryKey"`
	UID       string         `json:"uid" gorm:"uniqueIndex"`
	Name      string         `json:"name" validate:"required"`
	Email     sql.NullString `json:"email"`
	Phone     sql.NullString `json:"phone"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func FindClient(tx *gorm.DB, id uint64) (*Client, error) {
	client := &Client{}

	if err := tx.First(client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.NewNotFound("ledger.client.doesnt_exist")
		}

		return nil, err
	}

	return client, nil
}

var (
	house_account    *Client
	house_account_mu sync.Mutex
)

// HouseAccount resolves the client row acting as the exchange's own account.
// Exactly one row carries config.HouseAccountUID; it is resolved once per
// process and cached (redis plus package var) instead of being looked up by
// name inside every propagation.
func HouseAccount(tx *gorm.DB) (*Client, error) {
	house_account_mu.Lock()
	defer house_account_mu.Unlock()

	if house_account != nil {
		return house_account, nil
	}

	client := &Client{}

	if config.Redis != nil {
		if err := config.Redis.GetKey("ledger:house_account", client); err == nil && client.ID != 0 {
			house_account = client

			return house_account, nil
		}
	}

	if err := tx.First(client, "uid = ?", config.HouseAccountUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.NewNotFound("ledger.house_account.doesnt_exist")
		}

		return nil, err
	}

	if config.Redis != nil {
		if err := config.Redis.SetKey("ledger:house_account", client, 24*time.Hour); err != nil {
			config.Logger.Errorf("Failed to cache house account %v", err.Error())
		}
	}

	house_account = client

	return house_account, nil
}

// ResetHouseAccountCache drops the cached house account row. Needed when the
// backing database changes underneath the process, e.g. between test suites.
func ResetHouseAccountCache() {
	house_account_mu.Lock()
	defer house_account_mu.Unlock()

	house_account = nil

	if config.Redis != nil {
		config.Redis.DeleteKey("ledger:house_account")
	}
}
