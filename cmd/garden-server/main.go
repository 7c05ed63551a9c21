package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garden-guide/internal/api"
	"garden-guide/internal/app"
	"garden-guide/internal/config"
	"garden-guide/internal/database"
	"garden-guide/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize the database
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 3. Initialize Services
	application := app.NewApp(db, nil, os.Stdout)
	server := api.NewServer(application.Guides(), application.Metrics(), cfg.JWTSecret)

	// 4. Initialize Telegram Bot
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, application.Guides(), application.Metrics())
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		server.Handle("POST /webhook", bot.WebhookHandler())
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, Telegram bot disabled")
	}

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Handler(),
	}

	go func() {
		log.Printf("Garden Guide Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
