package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rafflehq/raffle-api/internal/api"
	"github.com/rafflehq/raffle-api/internal/config"
	"github.com/rafflehq/raffle-api/internal/db"
	"github.com/rafflehq/raffle-api/internal/logger"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	s := api.NewServer(conf, postgresDB)

	jobs, err := startJobs(s, conf)
	if err != nil {
		return fmt.Errorf("failed to start background jobs -> %w", err)
	}
	defer jobs.Stop()

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

// startJobs schedules the reservation sweeper and the winner expiry
// job. Both are safe to run on overlapping schedules since every
// underlying update is conditional on current row state.
func startJobs(s *api.Server, conf *config.AppConfig) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(conf.Sweeper.Schedule, func() {
		released, err := s.Finalizer.SweepExpired(context.Background(), time.Now().UTC())
		if err != nil {
			zap.L().Error("reservation sweep failed", zap.Error(err))
			return
		}
		if released > 0 {
			zap.L().Info("reservation sweep released entries", zap.Int("count", released))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("c.AddFunc(sweeper) -> %w", err)
	}

	if conf.Winners != nil && conf.Winners.ExpirySchedule != "" {
		_, err = c.AddFunc(conf.Winners.ExpirySchedule, func() {
			expired, err := s.Winners.ExpireUnclaimed(context.Background(), time.Now().UTC())
			if err != nil {
				zap.L().Error("winner expiry failed", zap.Error(err))
				return
			}
			if expired > 0 {
				zap.L().Info("expired unclaimed winners", zap.Int("count", expired))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("c.AddFunc(winners) -> %w", err)
		}
	}

	c.Start()

	return c, nil
}
