package ginko

import "github.com/gagliardetto/solana-go"

// ProgramID is the deployed Ginko protocol program. Commands may override it
// from config for local validators.
var ProgramID = solana.MustPublicKeyFromBase58("GinKo7e13rZF9PmvNnejkexYE37kggTcdpkFMTyNVjke")

var (
	// AuthMint is the Token-2022 mint whose holders carry asset-creation and
	// admin authority. The authority proof account for admin instructions is
	// the signer's associated token account for this mint.
	AuthMint = solana.MustPublicKeyFromBase58("AUTHFNLJwJgscANs8Un8fPKm6ccZUxysQs94kQY1UutR")

	// QuotaMint is the Token-2022 mint burned during asset minting.
	QuotaMint = solana.MustPublicKeyFromBase58("quotRVKVgQHPwgeEMyqrYMH6ytb1RaazxDsiRTL6Xn5")
)

// PDA seed constants, matching the on-chain program.
var (
	assetSeed     = []byte("asset")
	assetMintSeed = []byte("asset_mint")
	orderSeed     = []byte("order")
	pullFeedSeed  = []byte("switchboard_pull_feed")
	lutSignerSeed = []byte("LutSigner")
	sbStateSeed   = []byte("STATE")
)

// Well-known program addresses not exported by the solana-go core package.
var (
	Token2022ProgramID           = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AddressLookupTableProgramID  = solana.MustPublicKeyFromBase58("AddressLookupTab1e1111111111111111111111111")
	SwitchboardOnDemandProgramID = solana.MustPublicKeyFromBase58("SBondMDrcV3K4kxZR1HNVT7osZxAHVHgYXL5Ze1oMUv")
	WrappedSolMint               = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// DefaultNoncePrefix namespaces OpenFIGI-derived identifiers inside asset
// nonces.
const DefaultNoncePrefix = "OpenFIGI:"
