package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gxscan/gxscan/internal/config"
	"github.com/gxscan/gxscan/internal/feed"
	"github.com/gxscan/gxscan/internal/history"
	"github.com/gxscan/gxscan/internal/logger"
	"github.com/gxscan/gxscan/internal/storage"
	"github.com/gxscan/gxscan/internal/store"
	"github.com/gxscan/gxscan/internal/ui/screen"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The TUI owns the terminal, so logs go to file only.
	appLogger, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
		FileOnly:    true,
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	appLogger.Info("starting gxscan",
		zap.String("feed_url", cfg.FeedURL),
		zap.String("data_dir", cfg.DataDir))

	kv, err := storage.Open(filepath.Join(cfg.DataDir, "gxscan.db"), appLogger.WithComponent("storage"))
	if err != nil {
		appLogger.Warn("persistence unavailable, running without it", zap.Error(err))
		kv = nil
	} else {
		defer func() {
			_ = kv.Close()
		}()
	}

	tokenStore := store.New(appLogger.WithComponent("store"))

	var blobStore history.BlobStore
	if kv != nil {
		blobStore = kv
	}
	historyCache := history.NewCache(
		time.Duration(cfg.HistoryTTLSec)*time.Second,
		blobStore,
		appLogger.WithComponent("history"),
	)

	var fetcher *history.Fetcher
	if cfg.HistoryAPIURL != "" {
		fetcher = history.NewFetcher(cfg.HistoryAPIURL, appLogger.WithComponent("fetcher"))
	}

	feedCfg := feed.DefaultConfig()
	feedCfg.BatchWindow = time.Duration(cfg.BatchWindowMS) * time.Millisecond
	feedCfg.BatchSize = cfg.BatchSize
	feedCfg.MaxReconnectDelay = time.Duration(cfg.ReconnectMaxMS) * time.Millisecond
	feedActor := feed.New(feedCfg, appLogger.WithComponent("feed"))
	defer feedActor.Close()

	if err := feedActor.Init(cfg.FeedURL); err != nil {
		appLogger.Fatal("failed to start feed", zap.Error(err))
	}

	var prefs screen.Prefs
	if kv != nil {
		prefs = kv
	}
	watchlist := screen.New(screen.Deps{
		Store:      tokenStore,
		History:    historyCache,
		Fetcher:    fetcher,
		Feed:       feedActor,
		Prefs:      prefs,
		Logger:     appLogger.WithComponent("ui"),
		MaxRecords: cfg.MaxRecords,
	})

	program := tea.NewProgram(
		watchlist,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		_, err := program.Run()
		stop()
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		program.Quit()
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		appLogger.LogError("application failed", err)
	}

	appLogger.Info("shutdown complete")
}
