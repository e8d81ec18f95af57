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
	"github.com/coldbell/ginko/sdk/internal/switchboard"
)

func main() {
	bootstrapLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	feedAddress := flag.String("feed", "", "pull feed account to crank")
	flag.Parse()

	cfg, err := config.Load("update-feed")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("update-feed", cfg.Log)
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

	if err := run(ctx, cfg, logger, *feedAddress); err != nil {
		logger.Error("update feed failed", "err", err)
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

	signer, err := cfg.LoadKeypair()
	if err != nil {
		return err
	}

	queue := cfg.Switchboard.Queue
	if queue.IsZero() {
		queue = switchboard.DefaultQueue(cfg.Devnet)
	}

	network := "mainnet"
	if cfg.Devnet {
		network = "devnet"
	}
	updater := switchboard.NewUpdater(switchboard.UpdaterConfig{
		CrossbarURL: cfg.Switchboard.CrossbarURL,
		Network:     network,
	})

	rpcClient := rpc.New(cfg.RPCURL)
	builder := ginko.NewSwitchboardBuilder(rpcClient, updater, cfg.ProgramID, switchboard.ProgramID, queue)

	instructions, lutAddresses, err := builder.Update(ctx, feed, signer.PublicKey())
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

	tables, err := submitter.FetchLookupTables(txCtx, lutAddresses)
	if err != nil {
		return err
	}

	sig, err := submitter.Submit(txCtx, instructions, chain.SubmitOptions{Tables: tables})
	if err != nil {
		return err
	}

	logger.Info("feed updated", "feed", feed, "signature", sig)
	fmt.Println(sig)
	return nil
}
