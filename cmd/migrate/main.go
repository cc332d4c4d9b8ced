package main

import (
	"context"
	"log"
	"os"

	"storefront-bff/internal/config"
	"storefront-bff/internal/migrate"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if err := migrate.Apply(context.Background(), cfg.DBConnString); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Println("migrations applied")
}
