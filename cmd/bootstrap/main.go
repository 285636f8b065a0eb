// Package main 数据库结构初始化入口
package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"book-social-ai-api/internal/config"
	"book-social-ai-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer func() { _ = client.Close() }()

	fmt.Println("Running schema migration...")
	if err := client.AutoMigrate(); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	fmt.Println("Bootstrap completed successfully.")
}
