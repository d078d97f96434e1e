// Package app assembles the server from its parts and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/expenseshare/server/internal/cache"
	"github.com/expenseshare/server/internal/config"
	"github.com/expenseshare/server/internal/db"
	"github.com/expenseshare/server/internal/http/api"
	"github.com/expenseshare/server/internal/logging"
	"github.com/expenseshare/server/internal/metrics"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop
// signal.
const shutdownTimeout = 10 * time.Second

// RunServer starts the HTTP server and blocks until ctx is canceled or the
// listener fails.
func RunServer(ctx context.Context, cfg config.Config) error {
	logging.Setup(cfg.Log)

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return fmt.Errorf("app: open database: %w", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("app: migrate: %w", errMigrate)
	}
	if cfg.SeedDemoData {
		if errSeed := db.SeedDemoUsers(conn); errSeed != nil {
			return fmt.Errorf("app: seed demo users: %w", errSeed)
		}
	}

	var details cache.GroupDetails
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		details = cache.NewRedisGroupDetails(cfg.Redis)
		log.WithField("addr", cfg.Redis.Addr).Info("group detail cache on redis")
	} else {
		details = cache.NewInMemoryGroupDetails()
		log.Info("group detail cache in memory")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), api.RequestLogger(), metrics.Middleware())
	api.RegisterRoutes(engine, conn, cfg.JWT, details)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return fmt.Errorf("app: shutdown: %w", errShutdown)
		}
		return nil
	case errServe := <-errCh:
		if errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			return fmt.Errorf("app: serve: %w", errServe)
		}
		return nil
	}
}

// Migrate applies the schema and exits, for one-shot deployment steps.
func Migrate(cfg config.Config) error {
	logging.Setup(cfg.Log)

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return fmt.Errorf("app: open database: %w", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("app: migrate: %w", errMigrate)
	}
	if cfg.SeedDemoData {
		if errSeed := db.SeedDemoUsers(conn); errSeed != nil {
			return fmt.Errorf("app: seed demo users: %w", errSeed)
		}
	}
	log.Info("migration complete")
	return nil
}
