package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront-bff/internal/config"
	"storefront-bff/internal/db"
	"storefront-bff/internal/mirror"
	orderrepo "storefront-bff/internal/repository/order"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[mirror] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	orders := orderrepo.NewPostgres(pool)
	consumer := mirror.NewConsumer(orders, logger, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	logger.Printf("consuming %s as group %s", cfg.KafkaTopic, cfg.KafkaGroupID)
	consumer.Run(ctx)
	logger.Println("consumer stopped")
}
