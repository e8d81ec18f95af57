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
		assetAddress     = flag.String("asset", "", "asset account to update")
		minOrderSize     = flag.Uint64("min-order-size", 0, "new minimum order size")
		ceiling          = flag.Uint64("ceiling", 0, "new supply ceiling")
		paused           = flag.Bool("paused", false, "pause or resume trading")
		quotaPriceOracle = flag.String("quota-price-oracle", "", "new quota price oracle account")
	)
	flag.Parse()

	// Only flags the operator actually passed become updates; everything
	// else stays untouched on chain.
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	cfg, err := config.Load("update-asset")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("update-asset", cfg.Log)
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

	params := ginko.UpdateAssetParams{}
	if setFlags["min-order-size"] {
		params.MinOrderSize = minOrderSize
	}
	if setFlags["ceiling"] {
		params.Ceiling = ceiling
	}
	if setFlags["paused"] {
		params.Paused = paused
	}

	if err := run(ctx, cfg, logger, *assetAddress, *quotaPriceOracle, params); err != nil {
		logger.Error("update asset failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, assetAddress, quotaPriceOracle string, params ginko.UpdateAssetParams) error {
	if assetAddress == "" {
		return fmt.Errorf("-asset is required")
	}
	assetKey, err := solana.PublicKeyFromBase58(assetAddress)
	if err != nil {
		return fmt.Errorf("invalid -asset: %w", err)
	}
	if quotaPriceOracle != "" {
		oracle, err := solana.PublicKeyFromBase58(quotaPriceOracle)
		if err != nil {
			return fmt.Errorf("invalid -quota-price-oracle: %w", err)
		}
		params.QuotaPriceOracle = &oracle
	}
	if params.MinOrderSize == nil && params.Ceiling == nil && params.Paused == nil && params.QuotaPriceOracle == nil {
		return fmt.Errorf("nothing to update: pass at least one of -min-order-size, -ceiling, -paused, -quota-price-oracle")
	}

	signer, err := cfg.LoadKeypair()
	if err != nil {
		return err
	}
	params.Signer = signer.PublicKey()
	params.Asset = assetKey

	builder := ginko.NewAdminBuilder(cfg.ProgramID)
	instructions, err := builder.UpdateAsset(params)
	if err != nil {
		return err
	}

	rpcClient := rpc.New(cfg.RPCURL)
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

	logger.Info("asset updated", "asset", assetKey, "signature", sig)
	fmt.Println(sig)
	return nil
}
