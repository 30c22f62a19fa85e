package cron

import (
	"context"
	"time"

	"harvestmap/config"
	"harvestmap/services/popularity"
	"harvestmap/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt is the asynq connection shared by the worker and the enqueuer.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitPopularityWorker starts the background worker that recomputes the
// most-sold ranking. The caller owns shutdown of the returned server.
func InitPopularityWorker(svc popularity.PopularityService, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePopularityRefresh, handlePopularityRefresh(svc, logger))

	go func() {
		logger.Info("Starting popularity worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Warn("Failed to start popularity worker",
				zap.Int("attempt", attempts), zap.Int("max_attempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				// Ingestion only logs enqueue failures, so the API keeps serving.
				logger.Error("Popularity worker disabled after max retry attempts")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

func handlePopularityRefresh(svc popularity.PopularityService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		ranking, err := svc.Refresh(ctx)
		if err != nil {
			logger.Error("Popularity refresh failed", zap.Error(err))
			return err
		}
		logger.Debug("Popularity ranking refreshed", zap.Int("products", len(ranking)))
		return nil
	}
}
