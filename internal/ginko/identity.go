package ginko

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Resolver maps exchange tickers to FIGI identifiers. Implemented by the
// OpenFIGI client; tests substitute fixtures.
type Resolver interface {
	Resolve(ctx context.Context, ticker string) (string, error)
	ResolveBatch(ctx context.Context, tickers []string) (map[string]string, error)
}

// AssetIdentity is the fully resolved identity of one listed asset: the
// external identifier, the protocol nonce built from it, and the two
// addresses derived from the nonce. Values are computed once at construction
// and never change.
type AssetIdentity struct {
	Ticker    string
	FIGI      string
	Nonce     Nonce
	PublicKey solana.PublicKey
	Mint      solana.PublicKey
}

// Ref returns the trading-builder view of the identity.
func (id AssetIdentity) Ref() AssetRef {
	return AssetRef{PublicKey: id.PublicKey, Mint: id.Mint}
}

// ResolveAssetIdentity resolves a ticker through the resolver and derives the
// nonce and addresses under programID. The prefix scopes the nonce namespace;
// empty uses DefaultNoncePrefix.
func ResolveAssetIdentity(ctx context.Context, resolver Resolver, programID solana.PublicKey, prefix, ticker string) (*AssetIdentity, error) {
	figi, err := resolver.Resolve(ctx, ticker)
	if err != nil {
		return nil, err
	}
	id, err := assetIdentityFromFIGI(programID, prefix, ticker, figi)
	if err != nil {
		return nil, err
	}
	return id, nil
}

// ResolveAssetIdentities resolves a batch of tickers in one upstream call.
// Tickers the resolver cannot match are absent from the result.
func ResolveAssetIdentities(ctx context.Context, resolver Resolver, programID solana.PublicKey, prefix string, tickers []string) (map[string]*AssetIdentity, error) {
	figis, err := resolver.ResolveBatch(ctx, tickers)
	if err != nil {
		return nil, err
	}

	identities := make(map[string]*AssetIdentity, len(figis))
	for ticker, figi := range figis {
		id, err := assetIdentityFromFIGI(programID, prefix, ticker, figi)
		if err != nil {
			return nil, err
		}
		identities[ticker] = id
	}
	return identities, nil
}

// AssetIdentityFromNonce reconstructs an identity from an existing nonce, as
// read back from chain. The ticker is unknown at this point; the FIGI is
// recovered from the nonce body.
func AssetIdentityFromNonce(programID solana.PublicKey, prefix string, nonce Nonce) (*AssetIdentity, error) {
	if prefix == "" {
		prefix = DefaultNoncePrefix
	}
	figi, err := DecodeNonce(nonce, prefix)
	if err != nil {
		return nil, err
	}
	return &AssetIdentity{
		FIGI:      figi,
		Nonce:     nonce,
		PublicKey: MustDeriveAssetPDA(programID, nonce),
		Mint:      MustDeriveAssetMintPDA(programID, nonce),
	}, nil
}

func assetIdentityFromFIGI(programID solana.PublicKey, prefix, ticker, figi string) (*AssetIdentity, error) {
	if prefix == "" {
		prefix = DefaultNoncePrefix
	}
	nonce, err := EncodeNonce(prefix, figi)
	if err != nil {
		return nil, fmt.Errorf("nonce for %s: %w", ticker, err)
	}
	return &AssetIdentity{
		Ticker:    ticker,
		FIGI:      figi,
		Nonce:     nonce,
		PublicKey: MustDeriveAssetPDA(programID, nonce),
		Mint:      MustDeriveAssetMintPDA(programID, nonce),
	}, nil
}
