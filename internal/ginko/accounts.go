package ginko

import (
	"bytes"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	assetAccountDiscriminator = accountDiscriminator("Asset")
	orderAccountDiscriminator = accountDiscriminator("Order")
)

// Fixed byte offsets inside the account layouts, used for server-side memcmp
// filters. These mirror the on-chain struct field order exactly; the decoder
// below and the getProgramAccounts filters both depend on them.
const (
	// Asset: discriminator | nonce | bump | mint | min_order_size | ceiling |
	// quota_price_oracle | paused
	assetPausedOffset = 8 + 32 + 1 + 32 + 8 + 8 + 32

	// Order: discriminator | owner | asset | nonce | bump | input_holder |
	// payment_mint | ...
	orderOwnerOffset       = 8
	orderAssetOffset       = 8 + 32
	orderPaymentMintOffset = 8 + 32 + 32 + 32 + 1 + 32
)

// Wire structs decode with Borsh field-for-field; optional fields carry a
// one-byte presence flag.

type assetState struct {
	Nonce            [32]uint8
	Bump             uint8
	Mint             solana.PublicKey
	MinOrderSize     uint64
	Ceiling          uint64
	QuotaPriceOracle solana.PublicKey
	Paused           bool
}

type priceState struct {
	Mantissa uint64
	Scale    uint8
}

type orderState struct {
	Owner           solana.PublicKey
	Asset           solana.PublicKey
	Nonce           [32]uint8
	Bump            uint8
	InputHolder     solana.PublicKey
	PaymentMint     solana.PublicKey
	PriceOracle     solana.PublicKey
	Direction       uint8
	Typ             uint8
	LimitPrice      *priceState `bin:"optional"`
	InputQty        uint64
	SlippageBps     uint16
	CreatedAt       int64
	ExpireAt        int64
	CanceledAt      *int64 `bin:"optional"`
	FilledQty       uint64
	FilledOutputQty uint64
	LastFillSlot    uint64
}

// ParseAssetAccount decodes raw asset account data.
func ParseAssetAccount(pubkey solana.PublicKey, data []byte) (*Asset, error) {
	if err := checkDiscriminator(pubkey, data, assetAccountDiscriminator); err != nil {
		return nil, err
	}

	var state assetState
	if err := bin.NewBorshDecoder(data[8:]).Decode(&state); err != nil {
		return nil, fmt.Errorf("%w: decode asset %s: %v", ErrChainRead, pubkey, err)
	}

	return &Asset{
		PublicKey:        pubkey,
		Nonce:            Nonce(state.Nonce),
		Bump:             state.Bump,
		Mint:             state.Mint,
		MinOrderSize:     state.MinOrderSize,
		Ceiling:          state.Ceiling,
		QuotaPriceOracle: state.QuotaPriceOracle,
		Paused:           state.Paused,
	}, nil
}

// ParseOrderAccount decodes raw order account data.
func ParseOrderAccount(pubkey solana.PublicKey, data []byte) (*Order, error) {
	if err := checkDiscriminator(pubkey, data, orderAccountDiscriminator); err != nil {
		return nil, err
	}

	var state orderState
	if err := bin.NewBorshDecoder(data[8:]).Decode(&state); err != nil {
		return nil, fmt.Errorf("%w: decode order %s: %v", ErrChainRead, pubkey, err)
	}

	order := &Order{
		PublicKey:       pubkey,
		Owner:           state.Owner,
		Asset:           state.Asset,
		Nonce:           Nonce(state.Nonce),
		Bump:            state.Bump,
		InputHolder:     state.InputHolder,
		PaymentMint:     state.PaymentMint,
		PriceOracle:     state.PriceOracle,
		Direction:       OrderDirection(state.Direction),
		Type:            OrderType(state.Typ),
		InputQty:        state.InputQty,
		SlippageBps:     state.SlippageBps,
		CreatedAt:       time.Unix(state.CreatedAt, 0).UTC(),
		ExpireAt:        time.Unix(state.ExpireAt, 0).UTC(),
		FilledQty:       state.FilledQty,
		FilledOutputQty: state.FilledOutputQty,
		LastFillSlot:    state.LastFillSlot,
	}
	if state.LimitPrice != nil {
		order.LimitPrice = &Price{Mantissa: state.LimitPrice.Mantissa, Scale: state.LimitPrice.Scale}
	}
	if state.CanceledAt != nil {
		canceled := time.Unix(*state.CanceledAt, 0).UTC()
		order.CanceledAt = &canceled
	}
	return order, nil
}

func checkDiscriminator(pubkey solana.PublicKey, data []byte, want [8]byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: account %s data too short (%d bytes)", ErrChainRead, pubkey, len(data))
	}
	if !bytes.Equal(data[:8], want[:]) {
		return fmt.Errorf("%w: account %s discriminator mismatch", ErrChainRead, pubkey)
	}
	return nil
}
