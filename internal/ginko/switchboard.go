package ginko

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Feed configuration defaults, denominated the way the oracle program expects
// them: variance in parts-per-billion of a percent, staleness in seconds.
const (
	DefaultFeedMaxVariance   uint64 = 10_000_000_000 // 10%
	DefaultFeedMinResponses  uint32 = 1
	DefaultFeedMinSampleSize uint8  = 3
	DefaultFeedMaxStaleness  uint32 = 3600
)

// FeedUpdater produces the oracle-side instruction that pushes a fresh price
// into a pull feed, plus the lookup-table addresses the transaction should
// load. Implemented by the crossbar-backed client; nil means updates are not
// configured.
type FeedUpdater interface {
	FetchUpdateInstruction(ctx context.Context, feed, signer solana.PublicKey) (solana.Instruction, []solana.PublicKey, error)
}

// SwitchboardBuilder assembles the oracle feed lifecycle instructions.
type SwitchboardBuilder struct {
	slots                SlotLoader
	updater              FeedUpdater
	programID            solana.PublicKey
	switchboardProgramID solana.PublicKey
	queue                solana.PublicKey
}

func NewSwitchboardBuilder(slots SlotLoader, updater FeedUpdater, programID, switchboardProgramID, queue solana.PublicKey) *SwitchboardBuilder {
	return &SwitchboardBuilder{
		slots:                slots,
		updater:              updater,
		programID:            programID,
		switchboardProgramID: switchboardProgramID,
		queue:                queue,
	}
}

// pullFeedInitParams is the Borsh payload of switchboard_pull_feed_init,
// passed after the asset nonce.
type pullFeedInitParams struct {
	FeedHash               [32]uint8
	MaxVariance            uint64
	MinResponses           uint32
	Name                   [32]uint8
	RecentSlot             uint64
	IpfsHash               [32]uint8 // deprecated upstream, always zero
	MinSampleSize          uint8
	MaxStaleness           uint32
	PermitWriteByAuthority *bool `bin:"optional"`
}

// PullFeedInitParams configures a new price feed for (asset nonce, payment
// mint). FeedHash is the 0x-prefixed hex digest returned by the crossbar
// store. Zero-valued tuning fields fall back to the defaults above;
// FeedAuthority defaults to the signer.
type PullFeedInitParams struct {
	Signer                 solana.PublicKey
	AssetNonce             Nonce
	PaymentMint            solana.PublicKey
	FeedHash               string
	Name                   string
	FeedAuthority          solana.PublicKey
	MaxVariance            uint64
	MinResponses           uint32
	MinSampleSize          uint8
	MaxStaleness           uint32
	PermitWriteByAuthority *bool
}

// InitializedFeed is the built instruction plus the derived feed and lookup
// table addresses.
type InitializedFeed struct {
	Instructions []solana.Instruction
	Feed         solana.PublicKey
	LookupTable  solana.PublicKey
	RecentSlot   uint64
}

// PullFeedInit builds the feed creation instruction. The feed's lookup table
// derives from the slot observed here, so the instruction must land while
// that slot is still recent; callers retry from scratch on expiry rather than
// reusing a stale build.
func (b *SwitchboardBuilder) PullFeedInit(ctx context.Context, params PullFeedInitParams) (*InitializedFeed, error) {
	feedHash, err := ParseFeedHash(params.FeedHash)
	if err != nil {
		return nil, err
	}
	name, err := feedName(params.Name)
	if err != nil {
		return nil, err
	}

	recentSlot, err := b.slots.GetSlot(ctx, rpc.CommitmentProcessed)
	if err != nil {
		return nil, fmt.Errorf("%w: current slot: %v", ErrChainRead, err)
	}

	pullFeed, _, err := DerivePullFeedPDA(b.programID, params.AssetNonce, params.PaymentMint)
	if err != nil {
		return nil, fmt.Errorf("%w: derive pull feed: %v", ErrBuild, err)
	}
	lutSigner, _, err := DeriveLutSignerPDA(b.switchboardProgramID, pullFeed)
	if err != nil {
		return nil, fmt.Errorf("%w: derive lut signer: %v", ErrBuild, err)
	}
	lut, _, err := DeriveLookupTableAddress(lutSigner, recentSlot)
	if err != nil {
		return nil, fmt.Errorf("%w: derive lookup table: %v", ErrBuild, err)
	}
	programState, _, err := DeriveSwitchboardStatePDA(b.switchboardProgramID)
	if err != nil {
		return nil, fmt.Errorf("%w: derive oracle program state: %v", ErrBuild, err)
	}

	feedAuthority := params.FeedAuthority
	if feedAuthority.IsZero() {
		feedAuthority = params.Signer
	}

	initParams := pullFeedInitParams{
		FeedHash:               feedHash,
		MaxVariance:            DefaultFeedMaxVariance,
		MinResponses:           DefaultFeedMinResponses,
		Name:                   name,
		RecentSlot:             recentSlot,
		MinSampleSize:          DefaultFeedMinSampleSize,
		MaxStaleness:           DefaultFeedMaxStaleness,
		PermitWriteByAuthority: params.PermitWriteByAuthority,
	}
	if params.MaxVariance != 0 {
		initParams.MaxVariance = params.MaxVariance
	}
	if params.MinResponses != 0 {
		initParams.MinResponses = params.MinResponses
	}
	if params.MinSampleSize != 0 {
		initParams.MinSampleSize = params.MinSampleSize
	}
	if params.MaxStaleness != 0 {
		initParams.MaxStaleness = params.MaxStaleness
	}

	data, err := encodeInstructionData("switchboard_pull_feed_init", params.AssetNonce, initParams)
	if err != nil {
		return nil, err
	}

	rewardEscrow := mustAssociatedTokenAddress(pullFeed, WrappedSolMint, solana.TokenProgramID)
	ginkoAuthority := mustAssociatedTokenAddress(params.Signer, AuthMint, Token2022ProgramID)

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(pullFeed, true, false),
		solana.NewAccountMeta(b.queue, false, false),
		solana.NewAccountMeta(feedAuthority, false, false),
		solana.NewAccountMeta(params.Signer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(programState, false, false),
		solana.NewAccountMeta(rewardEscrow, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(WrappedSolMint, false, false),
		solana.NewAccountMeta(lutSigner, false, false),
		solana.NewAccountMeta(lut, true, false),
		solana.NewAccountMeta(AddressLookupTableProgramID, false, false),
		solana.NewAccountMeta(ginkoAuthority, false, false),
		solana.NewAccountMeta(b.switchboardProgramID, false, false),
		solana.NewAccountMeta(params.PaymentMint, false, false),
	}

	return &InitializedFeed{
		Instructions: []solana.Instruction{solana.NewInstruction(b.programID, accounts, data)},
		Feed:         pullFeed,
		LookupTable:  lut,
		RecentSlot:   recentSlot,
	}, nil
}

// Update fetches the oracle-signed crank instruction for an existing feed.
func (b *SwitchboardBuilder) Update(ctx context.Context, feed, signer solana.PublicKey) ([]solana.Instruction, []solana.PublicKey, error) {
	if b.updater == nil {
		return nil, nil, fmt.Errorf("%w: no feed updater configured", ErrBuild)
	}
	ix, luts, err := b.updater.FetchUpdateInstruction(ctx, feed, signer)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: feed update instruction: %v", ErrBuild, err)
	}
	if ix == nil {
		return nil, nil, fmt.Errorf("%w: updater returned no instruction for feed %s", ErrBuild, feed)
	}
	return []solana.Instruction{ix}, luts, nil
}

// ParseFeedHash validates a 0x-prefixed 64-hex-digit feed hash and returns
// its bytes.
func ParseFeedHash(s string) ([32]byte, error) {
	var out [32]byte
	if !strings.HasPrefix(s, "0x") {
		return out, fmt.Errorf("%w: feed hash %q missing 0x prefix", ErrValidation, s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return out, fmt.Errorf("%w: feed hash %q is not hex", ErrValidation, s)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("%w: feed hash %q is %d bytes, want 32", ErrValidation, s, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// feedName null-pads a display name to the fixed on-chain width.
func feedName(name string) ([32]byte, error) {
	var out [32]byte
	if len(name) > len(out) {
		return out, fmt.Errorf("%w: feed name %q exceeds %d bytes", ErrValidation, name, len(out))
	}
	copy(out[:], name)
	return out, nil
}
