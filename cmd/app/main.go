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
	"github.com/zvrva/slotbooker/internal/bootstrap"
	"github.com/zvrva/slotbooker/internal/cache"
	"github.com/zvrva/slotbooker/internal/kafka"
	"github.com/zvrva/slotbooker/internal/repository"
	"github.com/zvrva/slotbooker/internal/service/booking"
	"github.com/zvrva/slotbooker/internal/service/slots"
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

	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	directoryRepo := repository.NewDirectoryRepository(pool)

	slotService := slots.NewSlotService(slotRepo, directoryRepo, redisCache, producer, cfg.Kafka.EventsTopic, logger)
	bookingService := booking.NewBookingService(
		bookingRepo,
		directoryRepo,
		redisCache,
		producer,
		cfg.Kafka.EventsTopic,
		time.Duration(cfg.Booking.PendingTTLMinutes)*time.Minute,
		logger,
	)

	if err := bootstrap.Run(ctx, cfg, slotService, bookingService, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
