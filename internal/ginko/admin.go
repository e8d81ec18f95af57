package ginko

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AdminBuilder assembles the authority-gated maintenance instructions. The
// signer proves authority through its AUTH token account, which is a
// Token-2022 associated account and is derived locally, so no chain reads are
// needed here.
type AdminBuilder struct {
	programID solana.PublicKey
}

func NewAdminBuilder(programID solana.PublicKey) *AdminBuilder {
	return &AdminBuilder{programID: programID}
}

// assetUpdateParams is the Borsh payload of update_asset. Nil fields encode
// as Borsh None and leave the on-chain value untouched.
type assetUpdateParams struct {
	MinOrderSize     *uint64           `bin:"optional"`
	Ceiling          *uint64           `bin:"optional"`
	Paused           *bool             `bin:"optional"`
	QuotaPriceOracle *solana.PublicKey `bin:"optional"`
}

// UpdateAssetParams carries the fields to change; nil means "keep".
type UpdateAssetParams struct {
	Signer           solana.PublicKey
	Asset            solana.PublicKey
	MinOrderSize     *uint64
	Ceiling          *uint64
	Paused           *bool
	QuotaPriceOracle *solana.PublicKey
}

// UpdateAsset builds the partial-update instruction for an existing asset.
func (b *AdminBuilder) UpdateAsset(params UpdateAssetParams) ([]solana.Instruction, error) {
	data, err := encodeInstructionData("update_asset", assetUpdateParams{
		MinOrderSize:     params.MinOrderSize,
		Ceiling:          params.Ceiling,
		Paused:           params.Paused,
		QuotaPriceOracle: params.QuotaPriceOracle,
	})
	if err != nil {
		return nil, err
	}

	authority := mustAssociatedTokenAddress(params.Signer, AuthMint, Token2022ProgramID)

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(params.Signer, true, true),
		solana.NewAccountMeta(authority, false, false),
		solana.NewAccountMeta(params.Asset, true, false),
	}

	return []solana.Instruction{solana.NewInstruction(b.programID, accounts, data)}, nil
}

// MintOrBurnAssetParams identifies the asset, the supply operation, and the
// raw token amount. The asset is the decoded account: its mint and quota
// price oracle feed the account list.
type MintOrBurnAssetParams struct {
	Signer    solana.PublicKey
	Asset     *Asset
	Operation AssetOperation
	Amount    uint64
}

// MintOrBurnAsset builds the supply-adjustment instruction. Minting burns
// quota tokens from the signer's Token-2022 quota account at the oracle
// price; burning returns them.
func (b *AdminBuilder) MintOrBurnAsset(params MintOrBurnAssetParams) ([]solana.Instruction, error) {
	if params.Asset == nil {
		return nil, fmt.Errorf("%w: asset is required", ErrValidation)
	}
	if params.Amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if params.Operation != OperationMint && params.Operation != OperationBurn {
		return nil, fmt.Errorf("%w: unknown supply operation %d", ErrValidation, params.Operation)
	}

	data, err := encodeInstructionData("mint_or_burn_asset", uint8(params.Operation), params.Amount)
	if err != nil {
		return nil, err
	}

	authority := mustAssociatedTokenAddress(params.Signer, AuthMint, Token2022ProgramID)
	assetHolder := mustAssociatedTokenAddress(params.Signer, params.Asset.Mint, solana.TokenProgramID)
	quota := mustAssociatedTokenAddress(params.Signer, QuotaMint, Token2022ProgramID)

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(params.Signer, true, true),
		solana.NewAccountMeta(authority, false, false),
		solana.NewAccountMeta(params.Asset.PublicKey, false, false),
		solana.NewAccountMeta(params.Asset.Mint, true, false),
		solana.NewAccountMeta(assetHolder, true, false),
		solana.NewAccountMeta(QuotaMint, true, false),
		solana.NewAccountMeta(quota, true, false),
		solana.NewAccountMeta(params.Asset.QuotaPriceOracle, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(Token2022ProgramID, false, false),
	}

	return []solana.Instruction{solana.NewInstruction(b.programID, accounts, data)}, nil
}
