package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/avdeeva/spendbot/internal/api"
	"github.com/avdeeva/spendbot/internal/bot"
	"github.com/avdeeva/spendbot/internal/config"
	"github.com/avdeeva/spendbot/internal/db"
	"github.com/avdeeva/spendbot/internal/i18n"
	"github.com/avdeeva/spendbot/internal/ledger"
	"github.com/avdeeva/spendbot/internal/logger"
	"github.com/avdeeva/spendbot/internal/sessions"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(cfg.LogLevel)

	// Connect to database
	database, err := db.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ledgerSvc := ledger.NewService(database)
	bundle := i18n.NewBundle(cfg.DefaultLocale)
	store := sessions.NewStore()

	// Initialize Discord bot with the transaction-entry flow
	discordBot, err := bot.New(cfg.DiscordToken, database, ledgerSvc, store, bundle, cfg.DefaultLocale, zlog)
	if err != nil {
		log.Fatalf("Failed to create discord bot: %v", err)
	}

	// Initialize API server
	apiServer := api.New(cfg, database, ledgerSvc, zlog)

	// Start Discord bot
	if err := discordBot.Start(); err != nil {
		log.Fatalf("Failed to start discord bot: %v", err)
	}
	defer discordBot.Stop()

	// Start API server
	go func() {
		if err := apiServer.Start(); err != nil {
			zlog.Error().Err(err).Msg("API server error")
		}
	}()

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zlog.Info().Msg("shutting down")
}
