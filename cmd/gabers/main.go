package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gabers-bot/internal/analytics"
	"gabers-bot/internal/bot"
	"gabers-bot/internal/config"
	"gabers-bot/internal/confirm"
	"gabers-bot/internal/hack"
	"gabers-bot/internal/modules/audit"
	"gabers-bot/internal/permissions"
	"gabers-bot/internal/storage"
	"gabers-bot/internal/web"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatal("data dir init failed", zap.String("path", cfg.DataDir), zap.Error(err))
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0o755); err != nil {
		logger.Fatal("history dir init failed", zap.String("path", cfg.HistoryPath), zap.Error(err))
	}
	warnings := storage.LoadWarnings(filepath.Join(cfg.DataDir, "warnings.json"), logger)
	logChannels := storage.LoadLogChannels(filepath.Join(cfg.DataDir, "logChannels.json"), logger)

	history, err := storage.NewHistory(cfg.HistoryPath)
	if err != nil {
		logger.Fatal("history init failed", zap.Error(err))
	}
	defer history.Close()
	if err := history.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	auditLogger := audit.NewLogger(logChannels, history, logger)
	analyticsSvc := analytics.New(history)
	gate := permissions.NewGate(cfg.AllowList)
	confirmEngine := confirm.NewEngine()
	hackManager := hack.NewManager(hack.Config{
		Interval:    cfg.Hack.Interval(),
		Window:      cfg.Hack.Window(),
		ReplyPhrase: cfg.Hack.ReplyPhrase,
	}, logger)

	botSvc, err := bot.New(cfg, logger, warnings, logChannels, auditLogger, analyticsSvc, gate, confirmEngine, hackManager)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}
	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started", zap.String("prefix", cfg.Prefix))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(cfg.HTTP.Addr, botSvc, logger)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(server.ListenAndServe)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if path := cfg.Path(); path != "" {
		if _, err := os.Stat(path); err == nil {
			group.Go(func() error {
				return config.WatchAllowList(groupCtx, path, logger, gate.SetAllowList)
			})
		}
	}
	group.Go(func() error {
		runHistoryCleanup(groupCtx, history, cfg.HistoryRetentionDays, logger)
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("service stopped with error", zap.Error(err))
	}
	logger.Info("shutdown requested")

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	botSvc.Close(closeCtx)
}

// runHistoryCleanup trims old audit history once at start and then daily.
func runHistoryCleanup(ctx context.Context, history *storage.History, retentionDays int, logger *zap.Logger) {
	if retentionDays <= 0 {
		return
	}
	cleanup := func() {
		removed, err := history.Cleanup(ctx, retentionDays)
		if err != nil {
			logger.Warn("history cleanup failed", zap.Error(err))
			return
		}
		if removed > 0 {
			logger.Info("history cleanup", zap.Int64("removed", removed))
		}
	}
	cleanup()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanup()
		}
	}
}
