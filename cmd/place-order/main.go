package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

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
		ticker      = flag.String("ticker", "", "exchange ticker of the asset (e.g. AAPL)")
		direction   = flag.String("direction", "", "buy or sell")
		orderType   = flag.String("type", "market", "market or limit")
		quantity    = flag.Uint64("qty", 0, "input quantity in raw token units")
		limitPrice  = flag.String("limit-price", "", "limit price, decimal string (limit orders only)")
		slippageBps = flag.Uint("slippage-bps", 0, "max slippage in basis points (market orders only)")
		expireIn    = flag.Duration("expire-in", 0, "time until the order expires (default 3h)")
	)
	flag.Parse()

	cfg, err := config.Load("place-order")
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("place-order", cfg.Log)
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

	if err := run(ctx, cfg, logger, orderArgs{
		ticker:      *ticker,
		direction:   *direction,
		orderType:   *orderType,
		quantity:    *quantity,
		limitPrice:  *limitPrice,
		slippageBps: uint16(*slippageBps),
		expireIn:    *expireIn,
	}); err != nil {
		logger.Error("place order failed", "err", err)
		os.Exit(1)
	}
}

type orderArgs struct {
	ticker      string
	direction   string
	orderType   string
	quantity    uint64
	limitPrice  string
	slippageBps uint16
	expireIn    time.Duration
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, args orderArgs) error {
	if args.ticker == "" {
		return fmt.Errorf("-ticker is required")
	}
	if args.quantity == 0 {
		return fmt.Errorf("-qty is required")
	}
	if cfg.PaymentMint.IsZero() {
		return fmt.Errorf("GINKO_PAYMENT_MINT is required")
	}

	var direction ginko.OrderDirection
	switch args.direction {
	case "buy":
		direction = ginko.DirectionBuy
	case "sell":
		direction = ginko.DirectionSell
	default:
		return fmt.Errorf("-direction must be buy or sell")
	}

	var orderType ginko.OrderType
	var price *ginko.Price
	switch args.orderType {
	case "market":
		orderType = ginko.TypeMarket
	case "limit":
		orderType = ginko.TypeLimit
		parsed, err := ginko.ParsePrice(args.limitPrice, ginko.DefaultPriceDecimals)
		if err != nil {
			return err
		}
		price = &parsed
	default:
		return fmt.Errorf("-type must be market or limit")
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

	identity, err := ginko.ResolveAssetIdentity(ctx, resolver, cfg.ProgramID, cfg.NoncePrefix, args.ticker)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args.ticker, err)
	}
	logger.Info("asset resolved", "ticker", identity.Ticker, "figi", identity.FIGI, "asset", identity.PublicKey)

	priceOracle, _, err := ginko.DerivePullFeedPDA(cfg.ProgramID, identity.Nonce, cfg.PaymentMint)
	if err != nil {
		return fmt.Errorf("derive price oracle: %w", err)
	}

	rpcClient := rpc.New(cfg.RPCURL)
	builder := ginko.NewPublicBuilder(rpcClient, cfg.ProgramID)

	var expireAt time.Time
	if args.expireIn > 0 {
		expireAt = time.Now().Add(args.expireIn)
	}

	placed, err := builder.PlaceOrder(ctx, ginko.PlaceOrderParams{
		Owner:       signer.PublicKey(),
		Asset:       identity.Ref(),
		Direction:   direction,
		Type:        orderType,
		InputQty:    args.quantity,
		PriceOracle: priceOracle,
		TradeMint:   cfg.PaymentMint,
		LimitPrice:  price,
		SlippageBps: args.slippageBps,
		ExpireAt:    expireAt,
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

	sig, err := submitter.Submit(txCtx, placed.Instructions, chain.SubmitOptions{})
	if err != nil {
		return err
	}

	logger.Info("order placed",
		"order", placed.OrderAddress,
		"ticker", identity.Ticker,
		"direction", direction,
		"type", orderType,
		"qty", args.quantity,
		"signature", sig,
	)
	fmt.Println(placed.OrderAddress)
	return nil
}
