package ginko

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// OrderDirection is the Borsh enum for buy/sell.
type OrderDirection uint8

const (
	DirectionBuy OrderDirection = iota
	DirectionSell
)

func (d OrderDirection) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "unknown"
	}
}

// OrderType is the Borsh enum for market/limit.
type OrderType uint8

const (
	TypeMarket OrderType = iota
	TypeLimit
)

func (t OrderType) String() string {
	switch t {
	case TypeMarket:
		return "market"
	case TypeLimit:
		return "limit"
	default:
		return "unknown"
	}
}

// AssetOperation is the Borsh enum for supply mint/burn.
type AssetOperation uint8

const (
	OperationMint AssetOperation = iota
	OperationBurn
)

// Asset is the decoded on-chain asset account plus its address.
type Asset struct {
	PublicKey        solana.PublicKey
	Nonce            Nonce
	Bump             uint8
	Mint             solana.PublicKey
	MinOrderSize     uint64
	Ceiling          uint64
	QuotaPriceOracle solana.PublicKey
	Paused           bool
}

// Order is the decoded on-chain order account plus its address.
type Order struct {
	PublicKey       solana.PublicKey
	Owner           solana.PublicKey
	Asset           solana.PublicKey
	Nonce           Nonce
	Bump            uint8
	InputHolder     solana.PublicKey
	PaymentMint     solana.PublicKey
	PriceOracle     solana.PublicKey
	Direction       OrderDirection
	Type            OrderType
	LimitPrice      *Price
	InputQty        uint64
	SlippageBps     uint16
	CreatedAt       time.Time
	ExpireAt        time.Time
	CanceledAt      *time.Time
	FilledQty       uint64
	FilledOutputQty uint64
	LastFillSlot    uint64
}

// AssetRef is the minimal asset identity the trading builder needs: callers
// that resolved an identity already hold both values without a chain read.
type AssetRef struct {
	PublicKey solana.PublicKey
	Mint      solana.PublicKey
}

// Ref returns the builder-facing reference for a decoded asset.
func (a *Asset) Ref() AssetRef {
	return AssetRef{PublicKey: a.PublicKey, Mint: a.Mint}
}
