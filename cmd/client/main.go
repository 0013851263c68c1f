package main

import (
	"context"
	"log"

	"github.com/sealvault/sealvault/internal/client/cli"
	"github.com/sealvault/sealvault/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := cli.NewApp(cfg)
	app.Run(ctx)

}
