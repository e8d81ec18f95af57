package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	_ "github.com/joho/godotenv/autoload"

	"github.com/coldbell/ginko/sdk/internal/chain"
	"github.com/coldbell/ginko/sdk/internal/config"
	"github.com/coldbell/ginko/sdk/internal/ginko"
	"github.com/coldbell/ginko/sdk/internal/logging"
)

func main() {
	bootstrapLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	orderAddress := flag.String("order", "", "order account to cancel")
	flag.Parse()

	cfg, err := config.Load("cancel-order")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("cancel-order", cfg.Log)
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

	if err := run(ctx, cfg, logger, *orderAddress); err != nil {
		logger.Error("cancel order failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, orderAddress string) error {
	if orderAddress == "" {
		return fmt.Errorf("-order is required")
	}
	orderKey, err := solana.PublicKeyFromBase58(orderAddress)
	if err != nil {
		return fmt.Errorf("invalid -order: %w", err)
	}

	signer, err := cfg.LoadKeypair()
	if err != nil {
		return err
	}

	rpcClient := rpc.New(cfg.RPCURL)
	reader := ginko.NewAccountData(rpcClient, cfg.ProgramID)

	order, err := reader.Order(ctx, orderKey)
	if err != nil {
		return err
	}
	if order.CanceledAt != nil {
		return fmt.Errorf("order %s already canceled at %s", orderKey, order.CanceledAt)
	}
	if !order.Owner.Equals(signer.PublicKey()) {
		return fmt.Errorf("order %s is owned by %s, not the configured signer", orderKey, order.Owner)
	}

	builder := ginko.NewPublicBuilder(rpcClient, cfg.ProgramID)
	instructions, err := builder.CancelOrder(ctx, order)
	if err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, cfg.TxTimeout)
	defer cancel()

	submitter := chain.New(rpcClient, signer, logger, chain.Config{
		Commitment:                    cfg.Commitment,
		SkipPreflight:                 cfg.SkipPreflight,
		MaxRetries:                    cfg.MaxRetries,
		ComputeUnitLimit:              cfg.ComputeUnitLimit,
		ComputeUnitPriceMicroLamports: cfg.ComputeUnitPriceMicroLamports,
	})

	sig, err := submitter.Submit(txCtx, instructions, chain.SubmitOptions{})
	if err != nil {
		return err
	}

	logger.Info("order canceled", "order", orderKey, "signature", sig)
	fmt.Println(sig)
	return nil
}
