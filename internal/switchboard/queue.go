package switchboard

import "github.com/gagliardetto/solana-go"

// Well-known deployment addresses and endpoints for the on-demand oracle.
var (
	// ProgramID is the Switchboard on-demand program.
	ProgramID = solana.MustPublicKeyFromBase58("SBondMDrcV3K4kxZR1HNVT7osZxAHVHgYXL5Ze1oMUv")

	// MainnetQueue and DevnetQueue are the default oracle queues per cluster.
	MainnetQueue = solana.MustPublicKeyFromBase58("A43DyUGA7s8eXPxqEjJY6EBu1KKbNgfxF8h17VAHn13w")
	DevnetQueue  = solana.MustPublicKeyFromBase58("EYiAmGSdsQTuCw413V5BzaruWuCCSDgTPtBGvLkXHbe7")
)

const (
	// DefaultCrossbarURL is the public crossbar gateway.
	DefaultCrossbarURL = "https://crossbar.switchboard.xyz"

	// DefaultSimulationURL is the job simulation endpoint.
	DefaultSimulationURL = "https://api.switchboard.xyz/api/simulate"
)

// DefaultQueue picks the queue for a cluster.
func DefaultQueue(devnet bool) solana.PublicKey {
	if devnet {
		return DevnetQueue
	}
	return MainnetQueue
}

// Cluster names the simulation cluster for a deployment.
func Cluster(devnet bool) string {
	if devnet {
		return "Devnet"
	}
	return "Mainnet"
}
