package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camuig/gold-ledger/internal/ai"
	"github.com/camuig/gold-ledger/internal/app"
	"github.com/camuig/gold-ledger/internal/auth"
	"github.com/camuig/gold-ledger/internal/config"
	"github.com/camuig/gold-ledger/internal/feeds"
	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/position"
	"github.com/camuig/gold-ledger/internal/records"
	"github.com/camuig/gold-ledger/internal/scheduler"
	"github.com/camuig/gold-ledger/internal/storage"
	"github.com/camuig/gold-ledger/internal/telegram"
	"github.com/camuig/gold-ledger/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "", "path to SQLite database (overrides storage.path)")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("starting gold-ledger", "sources", cfg.Sources.Order)

	db, err := storage.NewDatabase(cfg.Storage.Path, log)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := feeds.NewClient(cfg, log.With("component", "feeds"))
	resolver, err := app.NewResolver(ctx, cfg, client, repo, log)
	if err != nil {
		log.Error("price resolver init failed", "error", err)
		os.Exit(1)
	}

	notifier := telegram.NewNotifier(cfg, log)
	recordsSvc := records.NewService(repo, log.With("component", "records"))
	sched := scheduler.NewScheduler(resolver, repo, notifier, cfg.RefreshInterval(), log.With("component", "scheduler"))
	webServer := web.NewServer(web.Deps{
		Resolver:  resolver,
		Records:   recordsSvc,
		Positions: position.NewService(recordsSvc, resolver),
		Auth:      auth.NewService(repo, cfg.TokenTTL(), log.With("component", "auth")),
		Directory: repo,
		News:      feeds.NewNewsFeed(client, cfg.News.URL, cfg.News.APIKey, cfg.News.PageSize),
		Brief:     ai.NewDeepSeekClient(cfg, log.With("component", "ai")),
	}, cfg, log)

	go sched.Run(ctx)

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	p := resolver.Resolve(ctx)
	notifier.NotifyStatus(fmt.Sprintf("🟡 gold-ledger 已启动\n参考金价: %s/g (%s)",
		ledger.FormatCNY(p.AmountPerGram), p.SourceLabel()))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	cancel() // stop refresher

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	notifier.NotifyStatus("🛑 gold-ledger 已停止")
	log.Info("gold-ledger stopped")
}
