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

	var (
		assetAddress = flag.String("asset", "", "asset account")
		operation    = flag.String("op", "mint", "mint or burn")
		amount       = flag.Uint64("amount", 0, "amount in raw token units")
	)
	flag.Parse()

	cfg, err := config.Load("mint-asset")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("mint-asset", cfg.Log)
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

	if err := run(ctx, cfg, logger, *assetAddress, *operation, *amount); err != nil {
		logger.Error("mint or burn failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, assetAddress, operation string, amount uint64) error {
	if assetAddress == "" {
		return fmt.Errorf("-asset is required")
	}
	assetKey, err := solana.PublicKeyFromBase58(assetAddress)
	if err != nil {
		return fmt.Errorf("invalid -asset: %w", err)
	}

	var op ginko.AssetOperation
	switch operation {
	case "mint":
		op = ginko.OperationMint
	case "burn":
		op = ginko.OperationBurn
	default:
		return fmt.Errorf("-op must be mint or burn")
	}

	signer, err := cfg.LoadKeypair()
	if err != nil {
		return err
	}

	rpcClient := rpc.New(cfg.RPCURL)
	reader := ginko.NewAccountData(rpcClient, cfg.ProgramID)

	asset, err := reader.Asset(ctx, assetKey)
	if err != nil {
		return err
	}

	builder := ginko.NewAdminBuilder(cfg.ProgramID)
	instructions, err := builder.MintOrBurnAsset(ginko.MintOrBurnAssetParams{
		Signer:    signer.PublicKey(),
		Asset:     asset,
		Operation: op,
		Amount:    amount,
	})
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

	logger.Info("supply adjusted", "asset", assetKey, "op", operation, "amount", amount, "signature", sig)
	fmt.Println(sig)
	return nil
}
