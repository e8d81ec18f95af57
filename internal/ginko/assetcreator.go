package ginko

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DefaultAssetDecimals is the mint precision used when the caller does not
// override it.
const DefaultAssetDecimals uint8 = 6

// AssetCreatorBuilder assembles the asset initialization instruction. Like
// the admin builder it proves authority through the signer's AUTH token
// account and needs no chain reads.
type AssetCreatorBuilder struct {
	programID solana.PublicKey
}

func NewAssetCreatorBuilder(programID solana.PublicKey) *AssetCreatorBuilder {
	return &AssetCreatorBuilder{programID: programID}
}

// assetParams is the Borsh payload of init_asset.
type assetParams struct {
	Nonce            [32]uint8
	TokenDecimals    uint8
	MinOrderSize     uint64
	Ceiling          uint64
	QuotaPriceOracle solana.PublicKey
}

// InitAssetParams describes a new asset. TokenDecimals zero falls back to
// DefaultAssetDecimals.
type InitAssetParams struct {
	Signer           solana.PublicKey
	Nonce            Nonce
	MinOrderSize     uint64
	Ceiling          uint64
	QuotaPriceOracle solana.PublicKey
	TokenDecimals    uint8
}

// InitAsset builds the instruction that creates the asset account and its
// mint. Both addresses derive from the asset nonce, so the caller only names
// the identity.
func (b *AssetCreatorBuilder) InitAsset(params InitAssetParams) ([]solana.Instruction, error) {
	if params.QuotaPriceOracle.IsZero() {
		return nil, fmt.Errorf("%w: quota price oracle is required", ErrValidation)
	}

	decimals := params.TokenDecimals
	if decimals == 0 {
		decimals = DefaultAssetDecimals
	}

	data, err := encodeInstructionData("init_asset", assetParams{
		Nonce:            params.Nonce,
		TokenDecimals:    decimals,
		MinOrderSize:     params.MinOrderSize,
		Ceiling:          params.Ceiling,
		QuotaPriceOracle: params.QuotaPriceOracle,
	})
	if err != nil {
		return nil, err
	}

	asset := MustDeriveAssetPDA(b.programID, params.Nonce)
	mint := MustDeriveAssetMintPDA(b.programID, params.Nonce)
	authority := mustAssociatedTokenAddress(params.Signer, AuthMint, Token2022ProgramID)

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(params.Signer, true, true),
		solana.NewAccountMeta(authority, false, false),
		solana.NewAccountMeta(asset, true, false),
		solana.NewAccountMeta(mint, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}

	return []solana.Instruction{solana.NewInstruction(b.programID, accounts, data)}, nil
}
