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
	"github.com/coldbell/ginko/sdk/internal/switchboard"
)

func main() {
	bootstrapLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ticker := flag.String("ticker", "", "exchange ticker of the asset (e.g. AAPL)")
	flag.Parse()

	cfg, err := config.Load("create-feed")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("create-feed", cfg.Log)
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

	if err := run(ctx, cfg, logger, *ticker); err != nil {
		logger.Error("create feed failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, ticker string) error {
	if ticker == "" {
		return fmt.Errorf("-ticker is required")
	}
	if cfg.PaymentMint.IsZero() {
		return fmt.Errorf("GINKO_PAYMENT_MINT is required")
	}

	signer, err := cfg.LoadKeypair()
	if err != nil {
		return err
	}

	queue := cfg.Switchboard.Queue
	if queue.IsZero() {
		queue = switchboard.DefaultQueue(cfg.Devnet)
	}

	crossbar := switchboard.NewCrossbar(switchboard.CrossbarConfig{
		CrossbarURL:   cfg.Switchboard.CrossbarURL,
		SimulationURL: cfg.Switchboard.SimulationURL,
		Cluster:       switchboard.Cluster(cfg.Devnet),
	})

	// The job definition is simulated first so a broken price source fails
	// here instead of on chain.
	job := switchboard.PriceJob(cfg.Switchboard.PriceTaskURL, ticker, "")
	feedHash, err := crossbar.FeedHash(ctx, queue, []switchboard.OracleJob{job})
	if err != nil {
		return err
	}
	logger.Info("oracle job stored", "ticker", ticker, "feed_hash", feedHash)

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

	rpcClient := rpc.New(cfg.RPCURL)
	builder := ginko.NewSwitchboardBuilder(rpcClient, nil, cfg.ProgramID, switchboard.ProgramID, queue)

	feed, err := builder.PullFeedInit(ctx, ginko.PullFeedInitParams{
		Signer:      signer.PublicKey(),
		AssetNonce:  identity.Nonce,
		PaymentMint: cfg.PaymentMint,
		FeedHash:    feedHash,
		Name:        ticker + " / USD",
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

	sig, err := submitter.Submit(txCtx, feed.Instructions, chain.SubmitOptions{})
	if err != nil {
		return err
	}

	logger.Info("feed created",
		"ticker", identity.Ticker,
		"feed", feed.Feed,
		"lookup_table", feed.LookupTable,
		"recent_slot", feed.RecentSlot,
		"signature", sig,
	)
	fmt.Println(feed.Feed)
	return nil
}
