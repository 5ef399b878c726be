package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"earnquick-bot/internal/bot"
	"earnquick-bot/internal/config"
	"earnquick-bot/internal/database"
	"earnquick-bot/internal/ledger"
	"earnquick-bot/internal/logger"
	"earnquick-bot/internal/server"
	"earnquick-bot/internal/token"
)

func main() {
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.LoadConfig()

	db, err := database.ConnectPostgres(cfg, log)
	if err != nil {
		log.Fatal("could not connect to database", zap.Error(err))
	}

	rdb, err := database.ConnectRedis(cfg, log)
	if err != nil {
		log.Fatal("could not connect to redis", zap.Error(err))
	}

	tgBot, err := bot.New(cfg.BotToken, cfg.WebAppURL)
	if err != nil {
		log.Fatal("could not create telegram bot", zap.Error(err))
	}

	store := ledger.NewStore(db)
	svc := ledger.NewService(store, tgBot, cfg.Rewards, log)
	issuer := token.NewIssuer(rdb, cfg.Rewards.AdTokenTTL)
	dispatcher := bot.NewDispatcher(svc, issuer, tgBot, log)

	webhookSet := false
	if cfg.PublicURL != "" {
		url := fmt.Sprintf("%s/webhook/%s", cfg.PublicURL, cfg.BotToken)
		if err := tgBot.RegisterWebhook(context.Background(), url); err != nil {
			log.Fatal("could not register webhook", zap.Error(err))
		}
		webhookSet = true
		log.Info("telegram webhook registered", zap.String("url", url))
	} else {
		log.Warn("PUBLIC_URL not set, webhook not registered")
	}

	handler := server.NewHandler(cfg, svc, issuer, dispatcher, log, webhookSet)
	router := server.NewRouter(handler, log)

	log.Info("service started", zap.String("addr", cfg.ListenAddr))
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
