package ginko

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ProgramAccountsLoader is the scan capability the reader needs beyond single
// account fetches. *rpc.Client satisfies it.
type ProgramAccountsLoader interface {
	GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
}

// ChainReader combines the read capabilities AccountData depends on.
type ChainReader interface {
	AccountLoader
	ProgramAccountsLoader
}

// AccountData reads and decodes the program's on-chain state. Scans filter
// server-side on the account discriminator plus fixed field offsets, so only
// matching accounts cross the wire.
type AccountData struct {
	reader    ChainReader
	programID solana.PublicKey
}

func NewAccountData(reader ChainReader, programID solana.PublicKey) *AccountData {
	return &AccountData{reader: reader, programID: programID}
}

// Asset fetches and decodes one asset account.
func (d *AccountData) Asset(ctx context.Context, pubkey solana.PublicKey) (*Asset, error) {
	return fetchAsset(ctx, d.reader, pubkey)
}

// Assets scans all asset accounts. paused nil returns everything; otherwise
// the scan filters on the paused flag server-side.
func (d *AccountData) Assets(ctx context.Context, paused *bool) ([]*Asset, error) {
	filters := []rpc.RPCFilter{discriminatorFilter(assetAccountDiscriminator)}
	if paused != nil {
		flag := []byte{0}
		if *paused {
			flag[0] = 1
		}
		filters = append(filters, memcmpFilter(assetPausedOffset, flag))
	}

	accounts, err := d.scan(ctx, filters)
	if err != nil {
		return nil, err
	}

	assets := make([]*Asset, 0, len(accounts))
	for _, acc := range accounts {
		asset, err := ParseAssetAccount(acc.Pubkey, acc.Account.Data.GetBinary())
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// Order fetches and decodes one order account.
func (d *AccountData) Order(ctx context.Context, pubkey solana.PublicKey) (*Order, error) {
	res, err := d.reader.GetAccountInfo(ctx, pubkey)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, pubkey)
		}
		return nil, fmt.Errorf("%w: fetch order %s: %v", ErrChainRead, pubkey, err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, pubkey)
	}
	return ParseOrderAccount(pubkey, res.Value.Data.GetBinary())
}

// OrdersFilter narrows an order scan; nil fields match everything.
type OrdersFilter struct {
	Owner       *solana.PublicKey
	Asset       *solana.PublicKey
	PaymentMint *solana.PublicKey
}

// Orders scans order accounts matching the filter.
func (d *AccountData) Orders(ctx context.Context, filter OrdersFilter) ([]*Order, error) {
	filters := []rpc.RPCFilter{discriminatorFilter(orderAccountDiscriminator)}
	if filter.Owner != nil {
		filters = append(filters, memcmpFilter(orderOwnerOffset, filter.Owner.Bytes()))
	}
	if filter.Asset != nil {
		filters = append(filters, memcmpFilter(orderAssetOffset, filter.Asset.Bytes()))
	}
	if filter.PaymentMint != nil {
		filters = append(filters, memcmpFilter(orderPaymentMintOffset, filter.PaymentMint.Bytes()))
	}

	accounts, err := d.scan(ctx, filters)
	if err != nil {
		return nil, err
	}

	orders := make([]*Order, 0, len(accounts))
	for _, acc := range accounts {
		order, err := ParseOrderAccount(acc.Pubkey, acc.Account.Data.GetBinary())
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (d *AccountData) scan(ctx context.Context, filters []rpc.RPCFilter) (rpc.GetProgramAccountsResult, error) {
	accounts, err := d.reader.GetProgramAccountsWithOpts(ctx, d.programID, &rpc.GetProgramAccountsOpts{
		Filters: filters,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan program accounts: %v", ErrChainRead, err)
	}
	return accounts, nil
}

func discriminatorFilter(disc [8]byte) rpc.RPCFilter {
	return memcmpFilter(0, disc[:])
}

func memcmpFilter(offset uint64, data []byte) rpc.RPCFilter {
	return rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: offset,
			Bytes:  solana.Base58(data),
		},
	}
}
