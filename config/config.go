package config

import "os"

// HouseAccountUID identifies the client row acting as the exchange house
// account. It is resolved once at startup and every balance propagation
// mirrors against it.
var HouseAccountUID string

func InitializeConfig() error {
	NewLoggerService()

	HouseAccountUID = os.Getenv("HOUSE_ACCOUNT_UID")
	if len(HouseAccountUID) == 0 {
		HouseAccountUID = "IDHOUSE0000001"
	}

	if err := ConnectDatabase(); err != nil {
		return err
	}
	if err := NewCacheService(); err != nil {
		return err
	}
	if err := NewInfluxDB(); err != nil {
		return err
	}

	return nil
}
