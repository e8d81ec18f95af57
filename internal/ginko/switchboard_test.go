package ginko

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSlots struct {
	slot uint64
}

func (s *stubSlots) GetSlot(context.Context, rpc.CommitmentType) (uint64, error) {
	return s.slot, nil
}

type stubUpdater struct {
	ix   solana.Instruction
	luts []solana.PublicKey
	err  error
}

func (s *stubUpdater) FetchUpdateInstruction(context.Context, solana.PublicKey, solana.PublicKey) (solana.Instruction, []solana.PublicKey, error) {
	return s.ix, s.luts, s.err
}

const testFeedHash = "0x4142434445464748494a4b4c4d4e4f505152535455565758595a5b5c5d5e5f60"

func testSwitchboardBuilder(slot uint64, updater FeedUpdater) *SwitchboardBuilder {
	return NewSwitchboardBuilder(&stubSlots{slot: slot}, updater, ProgramID, SwitchboardOnDemandProgramID, solana.NewWallet().PublicKey())
}

func TestPullFeedInit(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	nonce := testNonce(t, "BBG000B9XRY4")
	builder := testSwitchboardBuilder(42_000, nil)

	feed, err := builder.PullFeedInit(context.Background(), PullFeedInitParams{
		Signer:      signer,
		AssetNonce:  nonce,
		PaymentMint: WrappedSolMint,
		FeedHash:    testFeedHash,
		Name:        "AAPL/SOL",
	})
	require.NoError(t, err)
	require.Len(t, feed.Instructions, 1)

	wantFeed, _, err := DerivePullFeedPDA(ProgramID, nonce, WrappedSolMint)
	require.NoError(t, err)
	assert.Equal(t, wantFeed, feed.Feed)
	assert.Equal(t, uint64(42_000), feed.RecentSlot)

	lutSigner, _, err := DeriveLutSignerPDA(SwitchboardOnDemandProgramID, wantFeed)
	require.NoError(t, err)
	wantLut, _, err := DeriveLookupTableAddress(lutSigner, 42_000)
	require.NoError(t, err)
	assert.Equal(t, wantLut, feed.LookupTable)

	accounts := feed.Instructions[0].Accounts()
	require.Len(t, accounts, 16)
	assert.Equal(t, wantFeed, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, signer, accounts[2].PublicKey, "feed authority defaults to the signer")
	assert.Equal(t, signer, accounts[3].PublicKey)
	assert.True(t, accounts[3].IsSigner)
	assert.Equal(t, wantLut, accounts[11].PublicKey)
	assert.Equal(t, AddressLookupTableProgramID, accounts[12].PublicKey)
	assert.Equal(t, SwitchboardOnDemandProgramID, accounts[14].PublicKey)
	assert.Equal(t, WrappedSolMint, accounts[15].PublicKey)

	data, err := feed.Instructions[0].Data()
	require.NoError(t, err)
	disc := instructionDiscriminator("switchboard_pull_feed_init")
	assert.Equal(t, disc[:], data[:8])
	assert.Equal(t, nonce[:], data[8:40], "asset nonce precedes the feed params")
}

func TestPullFeedInitLookupTableTracksSlot(t *testing.T) {
	nonce := testNonce(t, "BBG000B9XRY4")
	params := PullFeedInitParams{
		Signer:      solana.NewWallet().PublicKey(),
		AssetNonce:  nonce,
		PaymentMint: WrappedSolMint,
		FeedHash:    testFeedHash,
	}

	first, err := testSwitchboardBuilder(100, nil).PullFeedInit(context.Background(), params)
	require.NoError(t, err)
	second, err := testSwitchboardBuilder(101, nil).PullFeedInit(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, first.Feed, second.Feed)
	assert.NotEqual(t, first.LookupTable, second.LookupTable)
}

func TestPullFeedInitRejectsBadInput(t *testing.T) {
	builder := testSwitchboardBuilder(1, nil)
	params := PullFeedInitParams{
		Signer:      solana.NewWallet().PublicKey(),
		AssetNonce:  testNonce(t, "BBG000B9XRY4"),
		PaymentMint: WrappedSolMint,
		FeedHash:    "deadbeef",
	}

	_, err := builder.PullFeedInit(context.Background(), params)
	assert.ErrorIs(t, err, ErrValidation)

	params.FeedHash = testFeedHash
	params.Name = "this feed name is far longer than the fixed account field"
	_, err = builder.PullFeedInit(context.Background(), params)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseFeedHash(t *testing.T) {
	hash, err := ParseFeedHash(testFeedHash)
	require.NoError(t, err)
	assert.Equal(t, byte(0x41), hash[0])

	for name, input := range map[string]string{
		"missing prefix": "4142434445464748494a4b4c4d4e4f505152535455565758595a5b5c5d5e5f60",
		"not hex":        "0xzz42434445464748494a4b4c4d4e4f505152535455565758595a5b5c5d5e5f",
		"short":          "0x4142",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFeedHash(input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestFeedName(t *testing.T) {
	name, err := feedName("AAPL/SOL")
	require.NoError(t, err)
	assert.Equal(t, []byte("AAPL/SOL"), name[:8])
	assert.Equal(t, byte(0), name[8], "short names are null padded")
}

func TestUpdateWithoutUpdater(t *testing.T) {
	builder := testSwitchboardBuilder(1, nil)
	_, _, err := builder.Update(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrBuild)
}

func TestUpdate(t *testing.T) {
	lut := solana.NewWallet().PublicKey()
	crank := solana.NewInstruction(SwitchboardOnDemandProgramID, solana.AccountMetaSlice{}, []byte{1, 2, 3})
	builder := testSwitchboardBuilder(1, &stubUpdater{ix: crank, luts: []solana.PublicKey{lut}})

	instructions, luts, err := builder.Update(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	require.Len(t, instructions, 1)
	assert.Equal(t, SwitchboardOnDemandProgramID, instructions[0].ProgramID())
	assert.Equal(t, []solana.PublicKey{lut}, luts)
}

func TestUpdateUpdaterFailure(t *testing.T) {
	builder := testSwitchboardBuilder(1, &stubUpdater{err: errors.New("no eligible data sources")})
	_, _, err := builder.Update(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrBuild)
}

func TestUpdateNilInstruction(t *testing.T) {
	builder := testSwitchboardBuilder(1, &stubUpdater{})
	_, _, err := builder.Update(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrBuild)
}
