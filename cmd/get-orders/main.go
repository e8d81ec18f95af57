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

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	_ "github.com/joho/godotenv/autoload"

	"github.com/coldbell/ginko/sdk/internal/config"
	"github.com/coldbell/ginko/sdk/internal/ginko"
	"github.com/coldbell/ginko/sdk/internal/logging"
)

func main() {
	bootstrapLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var (
		owner       = flag.String("owner", "", "filter by order owner")
		asset       = flag.String("asset", "", "filter by asset account")
		paymentMint = flag.String("payment-mint", "", "filter by payment mint")
	)
	flag.Parse()

	cfg, err := config.Load("get-orders")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("get-orders", cfg.Log)
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

	if err := run(ctx, cfg, logger, *owner, *asset, *paymentMint); err != nil {
		logger.Error("get orders failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, owner, asset, paymentMint string) error {
	var filter ginko.OrdersFilter

	if owner != "" {
		pk, err := solana.PublicKeyFromBase58(owner)
		if err != nil {
			return fmt.Errorf("invalid -owner: %w", err)
		}
		filter.Owner = &pk
	}
	if asset != "" {
		pk, err := solana.PublicKeyFromBase58(asset)
		if err != nil {
			return fmt.Errorf("invalid -asset: %w", err)
		}
		filter.Asset = &pk
	}
	if paymentMint != "" {
		pk, err := solana.PublicKeyFromBase58(paymentMint)
		if err != nil {
			return fmt.Errorf("invalid -payment-mint: %w", err)
		}
		filter.PaymentMint = &pk
	}

	rpcClient := rpc.New(cfg.RPCURL)
	reader := ginko.NewAccountData(rpcClient, cfg.ProgramID)

	orders, err := reader.Orders(ctx, filter)
	if err != nil {
		return err
	}
	logger.Info("orders fetched", "count", len(orders))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(orders)
}
