package ginko

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// DefaultOrderTTL is applied when the caller does not set an expiry.
const DefaultOrderTTL = 3 * time.Hour

// PublicBuilder assembles the permissionless trading instructions. It touches
// the chain only through the injected loader, and only after all local
// validation has passed.
type PublicBuilder struct {
	loader    AccountLoader
	programID solana.PublicKey
}

func NewPublicBuilder(loader AccountLoader, programID solana.PublicKey) *PublicBuilder {
	return &PublicBuilder{loader: loader, programID: programID}
}

// orderParams is the Borsh payload of place_order.
type orderParams struct {
	Nonce       [32]uint8
	Direction   uint8
	Typ         uint8
	LimitPrice  *priceState `bin:"optional"`
	InputQty    uint64
	SlippageBps uint16
	ExpireAt    int64
}

// PlaceOrderParams describes one order. TradeMint is the counter-token of the
// trade: the token spent on a buy, the token received on a sell. ExpireAt
// zero means now+DefaultOrderTTL.
type PlaceOrderParams struct {
	Owner       solana.PublicKey
	Asset       AssetRef
	Direction   OrderDirection
	Type        OrderType
	InputQty    uint64
	PriceOracle solana.PublicKey
	TradeMint   solana.PublicKey
	LimitPrice  *Price
	SlippageBps uint16
	ExpireAt    time.Time
}

// PlacedOrder is the built instruction sequence plus the derived order
// address the caller needs to track or cancel the order.
type PlacedOrder struct {
	Instructions []solana.Instruction
	OrderAddress solana.PublicKey
	OrderNonce   Nonce
}

// PlaceOrder builds the instruction sequence for a new order. Each call draws
// a fresh random order nonce, so repeated identical parameters yield distinct
// order accounts. Sell orders are prefixed with a create instruction for the
// owner's trade-token account when it does not exist yet, so the fill always
// has somewhere to deliver proceeds.
func (b *PublicBuilder) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*PlacedOrder, error) {
	if err := validateOrderParams(params); err != nil {
		return nil, err
	}

	var orderNonce Nonce
	if _, err := rand.Read(orderNonce[:]); err != nil {
		return nil, fmt.Errorf("%w: order nonce: %v", ErrBuild, err)
	}

	orderAddress, _, err := DeriveOrderPDA(b.programID, params.Owner, orderNonce)
	if err != nil {
		return nil, fmt.Errorf("%w: derive order address: %v", ErrBuild, err)
	}

	expireAt := params.ExpireAt
	if expireAt.IsZero() {
		expireAt = time.Now().Add(DefaultOrderTTL)
	}

	var instructions []solana.Instruction

	inputMint := params.TradeMint
	var outputMint solana.PublicKey
	switch params.Direction {
	case DirectionBuy:
		// The asset mint can only be referenced once the asset account
		// exists; before init the optional account stays empty.
		exists, err := accountExists(ctx, b.loader, params.Asset.PublicKey)
		if err != nil {
			return nil, err
		}
		if exists {
			outputMint = params.Asset.Mint
		} else {
			outputMint = b.programID
		}
	case DirectionSell:
		inputMint = params.Asset.Mint
		outputMint = params.TradeMint
		prefix, _, err := ensureAssociatedTokenAccount(ctx, b.loader, params.Owner, params.Owner, params.TradeMint)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, prefix...)
	}

	orderInputHolder := mustAssociatedTokenAddress(orderAddress, inputMint, solana.TokenProgramID)
	userInputHolder := mustAssociatedTokenAddress(params.Owner, inputMint, solana.TokenProgramID)

	var limitPrice *priceState
	if params.LimitPrice != nil {
		limitPrice = &priceState{Mantissa: params.LimitPrice.Mantissa, Scale: params.LimitPrice.Scale}
	}

	data, err := encodeInstructionData("place_order", orderParams{
		Nonce:       orderNonce,
		Direction:   uint8(params.Direction),
		Typ:         uint8(params.Type),
		LimitPrice:  limitPrice,
		InputQty:    params.InputQty,
		SlippageBps: params.SlippageBps,
		ExpireAt:    expireAt.Unix(),
	})
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(params.Owner, true, true),
		solana.NewAccountMeta(orderAddress, true, false),
		solana.NewAccountMeta(params.Asset.PublicKey, false, false),
		solana.NewAccountMeta(inputMint, false, false),
		solana.NewAccountMeta(orderInputHolder, true, false),
		solana.NewAccountMeta(userInputHolder, true, false),
		solana.NewAccountMeta(params.PriceOracle, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
		solana.NewAccountMeta(outputMint, false, false),
	}

	instructions = append(instructions, solana.NewInstruction(b.programID, accounts, data))

	return &PlacedOrder{
		Instructions: instructions,
		OrderAddress: orderAddress,
		OrderNonce:   orderNonce,
	}, nil
}

// CancelOrder builds the cancel sequence for an existing order. The escrow
// refunds in the order's input mint; for sells that is the asset mint, which
// requires one asset read to resolve. A create instruction for the refund
// account is prefixed when the owner no longer holds one.
func (b *PublicBuilder) CancelOrder(ctx context.Context, order *Order) ([]solana.Instruction, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: order is required", ErrValidation)
	}

	inputMint := order.PaymentMint
	if order.Direction == DirectionSell {
		asset, err := fetchAsset(ctx, b.loader, order.Asset)
		if err != nil {
			return nil, err
		}
		inputMint = asset.Mint
	}

	orderInputHolder := mustAssociatedTokenAddress(order.PublicKey, inputMint, solana.TokenProgramID)

	instructions, refundReceiver, err := ensureAssociatedTokenAccount(ctx, b.loader, order.Owner, order.Owner, inputMint)
	if err != nil {
		return nil, err
	}

	data, err := encodeInstructionData("cancel_order")
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(order.Owner, false, true),
		solana.NewAccountMeta(order.PublicKey, true, false),
		solana.NewAccountMeta(orderInputHolder, true, false),
		solana.NewAccountMeta(refundReceiver, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}

	return append(instructions, solana.NewInstruction(b.programID, accounts, data)), nil
}

func validateOrderParams(params PlaceOrderParams) error {
	if params.TradeMint.Equals(params.Asset.Mint) {
		return fmt.Errorf("%w: trade mint cannot equal the asset mint", ErrValidation)
	}
	switch params.Type {
	case TypeLimit:
		if params.LimitPrice == nil {
			return fmt.Errorf("%w: limit orders require a limit price", ErrValidation)
		}
		if params.SlippageBps != 0 {
			return fmt.Errorf("%w: limit orders must have zero slippage", ErrValidation)
		}
	case TypeMarket:
		if params.LimitPrice != nil {
			return fmt.Errorf("%w: market orders cannot carry a limit price", ErrValidation)
		}
		if params.SlippageBps == 0 {
			return fmt.Errorf("%w: market orders require non-zero slippage", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown order type %d", ErrValidation, params.Type)
	}
	if params.Direction != DirectionBuy && params.Direction != DirectionSell {
		return fmt.Errorf("%w: unknown order direction %d", ErrValidation, params.Direction)
	}
	return nil
}
