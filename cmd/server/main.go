package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/expenseshare/server/internal/app"
	"github.com/expenseshare/server/internal/config"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	migrateOnly := flag.Bool("migrate", false, "apply the schema and exit")
	flag.Parse()

	cfg, errLoad := config.Load(*configPath)
	if errLoad != nil {
		log.WithError(errLoad).Fatal("load configuration")
	}

	if *migrateOnly {
		if errMigrate := app.Migrate(cfg); errMigrate != nil {
			log.WithError(errMigrate).Fatal("migrate")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if errRun := app.RunServer(ctx, cfg); errRun != nil {
		log.WithError(errRun).Fatal("server exited")
	}
}
