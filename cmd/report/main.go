// The report binary runs the inactivity sweep on an interval: it asks
// the user service for inactive accounts, which publishes the
// users.inactive event consumed by the notifications listener.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"conectar-users/internal/core/cache"
	"conectar-users/internal/core/config"
	"conectar-users/internal/core/database"
	"conectar-users/internal/core/logger"
	"conectar-users/internal/event"
	"conectar-users/internal/notify"
	"conectar-users/internal/repo"
	"conectar-users/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	rdb := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	bus := event.NewBus(log)
	userSvc := service.NewUserService(repo.NewUserRepo(db), rdb, bus, log, time.Duration(cfg.Redis.TTLSec)*time.Second)

	listener := notify.NewListener(cfg.Notify.File, log)
	listener.Start(bus)

	interval := time.Duration(cfg.Report.IntervalMin) * time.Minute
	log.Info("inactivity report worker started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sweep(userSvc, log)
	for {
		select {
		case <-ticker.C:
			sweep(userSvc, log)
		case <-quit:
			bus.Close()
			listener.Wait()
			log.Info("inactivity report worker stopped")
			return
		}
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File != "" {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Filename:   cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		})
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func sweep(users *service.UserService, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	batch, err := users.ListInactive(ctx)
	if err != nil {
		log.Error("inactivity sweep failed", zap.Error(err))
		return
	}
	log.Info("inactivity sweep done", zap.Int("inactive", len(batch)))
}
