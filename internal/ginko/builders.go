package ginko

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/rpc"
)

// AccountLoader is the single chain-read capability the builders need.
// *rpc.Client satisfies it; tests substitute counting stubs.
type AccountLoader interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// SlotLoader provides the current slot height for slot-derived addresses.
// *rpc.Client satisfies it.
type SlotLoader interface {
	GetSlot(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
}

func accountExists(ctx context.Context, loader AccountLoader, account solana.PublicKey) (bool, error) {
	res, err := loader.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: fetch %s: %v", ErrChainRead, account, err)
	}
	return res != nil && res.Value != nil, nil
}

// ensureAssociatedTokenAccount resolves owner's associated token account for
// mint and, when it does not exist yet, returns the create instruction that
// must run before any instruction referencing the account.
func ensureAssociatedTokenAccount(
	ctx context.Context,
	loader AccountLoader,
	payer solana.PublicKey,
	owner solana.PublicKey,
	mint solana.PublicKey,
) ([]solana.Instruction, solana.PublicKey, error) {
	ata, _, err := DeriveAssociatedTokenAddress(owner, mint, solana.TokenProgramID)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("derive associated token account for %s/%s: %w", owner, mint, err)
	}

	exists, err := accountExists(ctx, loader, ata)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if exists {
		return nil, ata, nil
	}

	createIx, err := associatedtokenaccount.NewCreateInstruction(payer, owner, mint).ValidateAndBuild()
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("%w: create associated token account for %s/%s: %v", ErrBuild, owner, mint, err)
	}
	return []solana.Instruction{createIx}, ata, nil
}

func fetchAsset(ctx context.Context, loader AccountLoader, pubkey solana.PublicKey) (*Asset, error) {
	res, err := loader.GetAccountInfo(ctx, pubkey)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: asset %s", ErrNotFound, pubkey)
		}
		return nil, fmt.Errorf("%w: fetch asset %s: %v", ErrChainRead, pubkey, err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("%w: asset %s", ErrNotFound, pubkey)
	}
	return ParseAssetAccount(pubkey, res.Value.Data.GetBinary())
}

// mustAssociatedTokenAddress is for derivations whose inputs are fixed-width
// by construction.
func mustAssociatedTokenAddress(owner, mint, tokenProgramID solana.PublicKey) solana.PublicKey {
	ata, _, err := DeriveAssociatedTokenAddress(owner, mint, tokenProgramID)
	if err != nil {
		panic(fmt.Errorf("derive associated token address: %w", err))
	}
	return ata
}
