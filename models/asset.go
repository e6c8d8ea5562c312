package models

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cambista/ledger/ledger"
)

type Asset struct {
	ID           uint64    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" validate:"required"`
	Symbol       string    `json:"symbol"`
	IsPercentage bool      `json:"is_percentage" gorm:"default:false"`
	IsImmutable  bool      `json:"is_immutable" gorm:"default:false"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	Precision    int16     `json:"precision" gorm:"default:2"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FindAsset(tx *gorm.DB, id uint64) (*Asset, error) {
	asset := &Asset{}

	if err := tx.First(asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.NewNotFound("ledger.asset.doesnt_exist")
		}

		return nil, err
	}

	return asset, nil
}
