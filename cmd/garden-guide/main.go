package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"garden-guide/internal/app"
	"garden-guide/internal/config"
	"garden-guide/internal/database"
	"garden-guide/internal/storage"
	"garden-guide/internal/telegram"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if os.Args[1] == "migrate" {
		if err := database.RunMigrations(cfg.DatabasePath); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Database schema is up to date.")
		return
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	archive, err := storage.NewGuideArchive(cfg.GuideArchivePath)
	if err != nil {
		log.Fatalf("Failed to initialize guide archive: %v", err)
	}

	application := app.NewApp(db, archive, os.Stdout)

	switch os.Args[1] {
	case "seed":
		seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
		file := seedCmd.String("file", "", "Catalogue YAML file (built-in catalogue when empty)")
		seedCmd.Parse(os.Args[2:])

		if err := application.Seed(ctx, *file); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
	case "guide":
		guideCmd := flag.NewFlagSet("guide", flag.ExitOnError)
		user := guideCmd.String("user", "", "User id")
		week := guideCmd.Int("week", 0, "Week ordinal 1-52 (current week when omitted)")
		archiveGuide := guideCmd.Bool("archive", false, "Also write the guide to the archive")
		guideCmd.Parse(os.Args[2:])

		if *user == "" {
			log.Fatal("guide: -user is required")
		}
		var target *int
		guideCmd.Visit(func(f *flag.Flag) {
			if f.Name == "week" {
				target = week
			}
		})
		if err := application.PrintGuide(ctx, *user, target, *archiveGuide); err != nil {
			log.Fatalf("Guide failed: %v", err)
		}
	case "activate":
		activateCmd := flag.NewFlagSet("activate", flag.ExitOnError)
		user := activateCmd.String("user", "", "User id")
		varietyID := activateCmd.Int64("variety", 0, "Variety id")
		activateCmd.Parse(os.Args[2:])

		if *user == "" || *varietyID == 0 {
			log.Fatal("activate: -user and -variety are required")
		}
		if err := application.Activate(ctx, *user, *varietyID); err != nil {
			log.Fatalf("Activate failed: %v", err)
		}
	case "digest":
		digestCmd := flag.NewFlagSet("digest", flag.ExitOnError)
		user := digestCmd.String("user", "", "User id")
		chatID := digestCmd.Int64("chat", 0, "Telegram chat id")
		digestCmd.Parse(os.Args[2:])

		if *user == "" || *chatID == 0 {
			log.Fatal("digest: -user and -chat are required")
		}
		if cfg.TelegramBotToken == "" {
			log.Fatal("digest: TELEGRAM_BOT_TOKEN environment variable not set")
		}
		digestCfg := *cfg
		digestCfg.TelegramWebhookURL = ""
		bot, err := telegram.NewBot(&digestCfg, application.Guides(), application.Metrics())
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		if err := bot.SendDigest(ctx, *chatID, *user); err != nil {
			log.Fatalf("Digest failed: %v", err)
		}
		fmt.Printf("Sent digest for %s to chat %d.\n", *user, *chatID)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		if err := application.CleanupMetrics(ctx, *days); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: garden-guide <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  migrate            Apply database migrations")
	fmt.Println("  seed               Load the reference catalogue (-file to use your own)")
	fmt.Println("  guide              Print the guide for a user (-user, -week, -archive)")
	fmt.Println("  activate           Add a variety to a user's garden (-user, -variety)")
	fmt.Println("  digest             Send this week's guide over Telegram (-user, -chat)")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
