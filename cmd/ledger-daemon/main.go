package main

import (
	"fmt"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/workers/daemons"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}

	worker := daemons.NewCronJob()
	worker.Start()
}
