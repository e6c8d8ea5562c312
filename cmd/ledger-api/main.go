package main

import (
	"fmt"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/mq_client"
	"github.com/cambista/ledger/routes"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}

	if err := mq_client.Connect(); err != nil {
		config.Logger.Errorf("Failed to connect event queue %v", err.Error())
	}

	r := routes.SetupRouter()
	r.Listen(":3000")
}
