package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go/rpc"
	_ "github.com/joho/godotenv/autoload"

	"github.com/coldbell/ginko/sdk/internal/config"
	"github.com/coldbell/ginko/sdk/internal/ginko"
	"github.com/coldbell/ginko/sdk/internal/logging"
)

func main() {
	bootstrapLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pausedFlag := flag.String("paused", "", "filter by paused state: true or false (default: all)")
	flag.Parse()

	cfg, err := config.Load("get-assets")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("get-assets", cfg.Log)
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

	if err := run(ctx, cfg, logger, *pausedFlag); err != nil {
		logger.Error("get assets failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, pausedFlag string) error {
	var paused *bool
	switch pausedFlag {
	case "":
	case "true":
		v := true
		paused = &v
	case "false":
		v := false
		paused = &v
	default:
		return fmt.Errorf("-paused must be true or false")
	}

	rpcClient := rpc.New(cfg.RPCURL)
	reader := ginko.NewAccountData(rpcClient, cfg.ProgramID)

	assets, err := reader.Assets(ctx, paused)
	if err != nil {
		return err
	}
	logger.Info("assets fetched", "count", len(assets))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(assets)
}
