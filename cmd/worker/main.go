package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/zvrva/slotbooker/config"
	"github.com/zvrva/slotbooker/internal/cache"
	"github.com/zvrva/slotbooker/internal/domain"
	"github.com/zvrva/slotbooker/internal/fanout"
	"github.com/zvrva/slotbooker/internal/kafka"
	"github.com/zvrva/slotbooker/internal/repository"
	"github.com/zvrva/slotbooker/internal/service/booking"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SlotsCacheTTLSecond)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	directoryRepo := repository.NewDirectoryRepository(pool)
	bookingService := booking.NewBookingService(
		bookingRepo,
		directoryRepo,
		redisCache,
		producer,
		cfg.Kafka.EventsTopic,
		time.Duration(cfg.Booking.PendingTTLMinutes)*time.Minute,
		logger,
	)

	// The hub is the delivery end of the pipeline: committed events come in
	// over kafka and fan out to whatever listener connections the transport
	// has registered.
	hub := fanout.NewHub(cfg.Worker.FanoutBuffer, logger)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EventsTopic, logger)
	defer consumer.Close()

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, event domain.Event) error {
			hub.Publish(event)
			logger.Info("event dispatched",
				zap.String("kind", string(event.Kind)),
				zap.Bool("broadcast", event.Broadcast()))
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	sweep := time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute
	if sweep <= 0 {
		sweep = time.Minute
	}
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired, err := bookingService.ExpirePendingBookings(ctx)
			if err != nil {
				logger.Error("expire bookings", zap.Error(err))
				continue
			}
			if len(expired) > 0 {
				logger.Info("expired pending bookings", zap.Int("count", len(expired)))
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		}
	}
}
