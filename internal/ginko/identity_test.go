package ginko

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver serves a fixed ticker-to-FIGI table.
type stubResolver struct {
	figis map[string]string
}

func (s *stubResolver) Resolve(_ context.Context, ticker string) (string, error) {
	figi, ok := s.figis[ticker]
	if !ok {
		return "", fmt.Errorf("%w: ticker %s", ErrNotFound, ticker)
	}
	return figi, nil
}

func (s *stubResolver) ResolveBatch(_ context.Context, tickers []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, ticker := range tickers {
		if figi, ok := s.figis[ticker]; ok {
			out[ticker] = figi
		}
	}
	return out, nil
}

func TestResolveAssetIdentity(t *testing.T) {
	resolver := &stubResolver{figis: map[string]string{"AAPL": "BBG000B9XRY4"}}

	id, err := ResolveAssetIdentity(context.Background(), resolver, ProgramID, "", "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", id.Ticker)
	assert.Equal(t, "BBG000B9XRY4", id.FIGI)
	assert.Equal(t, "OpenFIGI:BBG000B9XRY4", id.Nonce.String())
	assert.Equal(t, MustDeriveAssetPDA(ProgramID, id.Nonce), id.PublicKey)
	assert.Equal(t, MustDeriveAssetMintPDA(ProgramID, id.Nonce), id.Mint)

	ref := id.Ref()
	assert.Equal(t, id.PublicKey, ref.PublicKey)
	assert.Equal(t, id.Mint, ref.Mint)
}

func TestResolveAssetIdentityUnknownTicker(t *testing.T) {
	resolver := &stubResolver{}
	_, err := ResolveAssetIdentity(context.Background(), resolver, ProgramID, "", "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveAssetIdentityCustomPrefix(t *testing.T) {
	resolver := &stubResolver{figis: map[string]string{"AAPL": "BBG000B9XRY4"}}

	id, err := ResolveAssetIdentity(context.Background(), resolver, ProgramID, "Test:", "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Test:BBG000B9XRY4", id.Nonce.String())
}

func TestResolveAssetIdentitiesDropsUnmatched(t *testing.T) {
	resolver := &stubResolver{figis: map[string]string{
		"AAPL": "BBG000B9XRY4",
		"NVDA": "BBG000BVPV84",
	}}

	identities, err := ResolveAssetIdentities(context.Background(), resolver, ProgramID, "", []string{"AAPL", "NVDA", "NOPE"})
	require.NoError(t, err)
	require.Len(t, identities, 2)

	assert.Equal(t, "BBG000B9XRY4", identities["AAPL"].FIGI)
	assert.Equal(t, "BBG000BVPV84", identities["NVDA"].FIGI)
	assert.NotContains(t, identities, "NOPE")
	assert.NotEqual(t, identities["AAPL"].PublicKey, identities["NVDA"].PublicKey)
}

func TestAssetIdentityFromNonce(t *testing.T) {
	resolver := &stubResolver{figis: map[string]string{"AAPL": "BBG000B9XRY4"}}
	resolved, err := ResolveAssetIdentity(context.Background(), resolver, ProgramID, "", "AAPL")
	require.NoError(t, err)

	recovered, err := AssetIdentityFromNonce(ProgramID, "", resolved.Nonce)
	require.NoError(t, err)

	assert.Empty(t, recovered.Ticker, "the chain does not store the ticker")
	assert.Equal(t, resolved.FIGI, recovered.FIGI)
	assert.Equal(t, resolved.PublicKey, recovered.PublicKey)
	assert.Equal(t, resolved.Mint, recovered.Mint)
}

func TestAssetIdentityFromNonceWrongPrefix(t *testing.T) {
	nonce := testNonce(t, "BBG000B9XRY4")
	_, err := AssetIdentityFromNonce(ProgramID, "Other:", nonce)
	assert.Error(t, err)
}
