package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/ws"
	_ "github.com/joho/godotenv/autoload"

	"github.com/coldbell/ginko/sdk/internal/config"
	"github.com/coldbell/ginko/sdk/internal/logging"
)

func main() {
	bootstrapLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	feedAddress := flag.String("feed", "", "pull feed account to watch")
	flag.Parse()

	cfg, err := config.Load("watch-feed")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("watch-feed", cfg.Log)
	if err != nil {
		bootstrapLogger.Error("failed to initialize logger", "err", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := closeLogger(); closeErr != nil {
			bootstrapLogger.Error("failed to close logger", "err", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *feedAddress); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watch feed failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, feedAddress string) error {
	if feedAddress == "" {
		return fmt.Errorf("-feed is required")
	}
	feed, err := solana.PublicKeyFromBase58(feedAddress)
	if err != nil {
		return fmt.Errorf("invalid -feed: %w", err)
	}

	wsClient, err := ws.Connect(ctx, cfg.WSURL)
	if err != nil {
		return fmt.Errorf("connect websocket %s: %w", cfg.WSURL, err)
	}
	defer wsClient.Close()

	sub, err := wsClient.AccountSubscribe(feed, cfg.Commitment)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", feed, err)
	}
	defer sub.Unsubscribe()

	logger.Info("watching feed", "feed", feed, "ws", cfg.WSURL, "commitment", cfg.Commitment)

	for {
		result, err := sub.Recv(ctx)
		if err != nil {
			return fmt.Errorf("subscription closed: %w", err)
		}
		if result == nil {
			continue
		}
		dataLen := 0
		if result.Value.Data != nil {
			dataLen = len(result.Value.Data.GetBinary())
		}
		logger.Info("feed updated",
			"feed", feed,
			"slot", result.Context.Slot,
			"lamports", result.Value.Lamports,
			"data_len", dataLen,
		)
	}
}
