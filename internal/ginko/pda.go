package ginko

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// All protocol addresses are program-derived: a one-way function of the
// program ID and an ordered seed list. Derivations are pure and deterministic;
// the only failure mode is a seed-length violation, which cannot occur with
// the fixed-width inputs below.

func DeriveAssetPDA(programID solana.PublicKey, nonce Nonce) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{assetSeed, nonce[:]}, programID)
}

func DeriveAssetMintPDA(programID solana.PublicKey, nonce Nonce) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{assetMintSeed, nonce[:]}, programID)
}

// DeriveOrderPDA maps (owner, order nonce) to an order account. The order
// nonce is random per order, not an external identifier.
func DeriveOrderPDA(programID solana.PublicKey, owner solana.PublicKey, orderNonce Nonce) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{orderSeed, owner.Bytes(), orderNonce[:]}, programID)
}

// DerivePullFeedPDA maps (asset nonce, payment mint) to the Switchboard pull
// feed account owned by the Ginko program.
func DerivePullFeedPDA(programID solana.PublicKey, assetNonce Nonce, paymentMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{pullFeedSeed, assetNonce[:], paymentMint.Bytes()}, programID)
}

// DeriveAssociatedTokenAddress is the standard per-owner-per-mint custody
// derivation, parameterized by token program so Token-2022 mints (the AUTH and
// quota mints) resolve correctly.
func DeriveAssociatedTokenAddress(owner, mint, tokenProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{owner.Bytes(), tokenProgramID.Bytes(), mint.Bytes()},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}

// DeriveLutSignerPDA is the Switchboard signer for a feed's address lookup
// table.
func DeriveLutSignerPDA(switchboardProgramID, pullFeed solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{lutSignerSeed, pullFeed.Bytes()}, switchboardProgramID)
}

// DeriveSwitchboardStatePDA is the Switchboard on-demand program state
// account.
func DeriveSwitchboardStatePDA(switchboardProgramID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{sbStateSeed}, switchboardProgramID)
}

// DeriveLookupTableAddress computes the address-lookup-table account created
// by (authority, recentSlot). Slot-dependent: the same authority at a
// different slot yields a different table.
func DeriveLookupTableAddress(authority solana.PublicKey, recentSlot uint64) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{authority.Bytes(), u64LE(recentSlot)},
		AddressLookupTableProgramID,
	)
}

func MustDeriveAssetPDA(programID solana.PublicKey, nonce Nonce) solana.PublicKey {
	pk, _, err := DeriveAssetPDA(programID, nonce)
	if err != nil {
		panic(fmt.Errorf("derive asset PDA: %w", err))
	}
	return pk
}

func MustDeriveAssetMintPDA(programID solana.PublicKey, nonce Nonce) solana.PublicKey {
	pk, _, err := DeriveAssetMintPDA(programID, nonce)
	if err != nil {
		panic(fmt.Errorf("derive asset mint PDA: %w", err))
	}
	return pk
}

func u64LE(value uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)
	return buf
}
