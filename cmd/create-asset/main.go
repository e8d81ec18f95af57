package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go/rpc"
	_ "github.com/joho/godotenv/autoload"

	"github.com/coldbell/ginko/sdk/internal/chain"
	"github.com/coldbell/ginko/sdk/internal/config"
	"github.com/coldbell/ginko/sdk/internal/figi"
	"github.com/coldbell/ginko/sdk/internal/ginko"
	"github.com/coldbell/ginko/sdk/internal/logging"
)

func main() {
	bootstrapLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var (
		ticker       = flag.String("ticker", "", "exchange ticker of the asset (e.g. AAPL)")
		minOrderSize = flag.Uint64("min-order-size", 1, "minimum order size in raw token units")
		ceiling      = flag.Uint64("ceiling", 0, "maximum supply in raw token units")
		decimals     = flag.Uint("decimals", uint(ginko.DefaultAssetDecimals), "asset mint decimals")
	)
	flag.Parse()

	cfg, err := config.Load("create-asset")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("create-asset", cfg.Log)
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

	if err := run(ctx, cfg, logger, *ticker, *minOrderSize, *ceiling, uint8(*decimals)); err != nil {
		logger.Error("create asset failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, ticker string, minOrderSize, ceiling uint64, decimals uint8) error {
	if ticker == "" {
		return fmt.Errorf("-ticker is required")
	}
	if ceiling == 0 {
		return fmt.Errorf("-ceiling is required")
	}
	if cfg.PaymentMint.IsZero() {
		return fmt.Errorf("GINKO_PAYMENT_MINT is required")
	}

	signer, err := cfg.LoadKeypair()
	if err != nil {
		return err
	}

	resolver := figi.New(figi.Config{
		APIURL:   cfg.OpenFIGI.APIURL,
		APIKey:   cfg.OpenFIGI.APIKey,
		ExchCode: cfg.OpenFIGI.ExchCode,
		Timeout:  cfg.OpenFIGI.Timeout,
	})

	identity, err := ginko.ResolveAssetIdentity(ctx, resolver, cfg.ProgramID, cfg.NoncePrefix, ticker)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", ticker, err)
	}
	logger.Info("asset resolved", "ticker", identity.Ticker, "figi", identity.FIGI, "asset", identity.PublicKey, "mint", identity.Mint)

	// The quota oracle is the protocol's own pull feed for this asset priced
	// in the payment token.
	quotaPriceOracle, _, err := ginko.DerivePullFeedPDA(cfg.ProgramID, identity.Nonce, cfg.PaymentMint)
	if err != nil {
		return fmt.Errorf("derive quota price oracle: %w", err)
	}

	builder := ginko.NewAssetCreatorBuilder(cfg.ProgramID)
	instructions, err := builder.InitAsset(ginko.InitAssetParams{
		Signer:           signer.PublicKey(),
		Nonce:            identity.Nonce,
		MinOrderSize:     minOrderSize,
		Ceiling:          ceiling,
		QuotaPriceOracle: quotaPriceOracle,
		TokenDecimals:    decimals,
	})
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

	logger.Info("asset created", "ticker", identity.Ticker, "asset", identity.PublicKey, "mint", identity.Mint, "signature", sig)
	fmt.Println(identity.PublicKey)
	return nil
}
