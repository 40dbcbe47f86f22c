// Package params holds the genesis configuration pinned on every node:
// grid dimensions, tournament window lengths, bond/trust thresholds,
// decay factors, and the verifying-key hashes for the two ZK circuits.
package params

// Protocol-wide constants that are never retuned per deployment.
const (
	// GridSize is the edge length of the toroidal CA grid.
	GridSize = 1024

	// BattleSteps is the number of evolution steps executed per match.
	BattleSteps = 1000

	// TestGridSize and TestBattleSteps are the reduced configuration
	// permitted only in non-production builds (an open question:
	// the 64x64/10-step configuration is test-only, never consensus-valid).
	TestGridSize   = 64
	TestBattleSteps = 10

	// MinRing, DefaultRing, MaxRing bound CLSAG ring size.
	MinRing     = 11
	DefaultRing = 16
	MaxRing     = 64

	// BondMin is the minimum active bond amount required for tournament
	// eligibility, in native units.
	BondMin uint64 = 1000

	// EpochBlocks is the number of blocks in one epoch.
	EpochBlocks uint64 = 100

	// UnbondPeriod is the cooldown, in blocks, before an unbonding bond
	// may be finalized. Fixed at 14 epochs.
	UnbondPeriod = 14 * EpochBlocks

	// EBSL constants ().
	EBSLK = 2.0
	EBSLAlpha = 0.4
	TrustMin = 0.75
	TrustKill = 0.2

	// Decay factors applied once per epoch (). Positive
	// evidence decays roughly 10x faster than negative evidence.
	PositiveDecayNum, PositiveDecayDen = 99, 100
	NegativeDecayNum, NegativeDecayDen = 999, 1000

	// Slash fractions for the classifier's Partial actions.
	SlashInvalidProofFraction = 0.10
	SlashMissedRevealFraction = 0.05

	// FinalityThresholdNum/Den express the >= 2/3 bonded-stake quorum.
	FinalityThresholdNum, FinalityThresholdDen = 2, 3

	// RoundTimeoutSeconds bounds a finality round ().
	RoundTimeoutSeconds = 60

	// ClockSkewSeconds is the maximum tolerated future timestamp skew.
	ClockSkewSeconds = 10

	// GridCost is the unit cost Work(h) multiplies by steps, grid edge
	// length, and the number of fought (non-bye) pairings.
	GridCost = 1
)

// Genesis holds the handful of parameters a deployment pins at genesis:
// commit/reveal window lengths and the two circuits' verifying-key
// hashes. Everything else above is a protocol-wide constant.
type Genesis struct {
	// CommitBlocks is the number of blocks the commit phase stays open.
	CommitBlocks uint64

	// RevealBlocks is the number of blocks the reveal phase stays open.
	RevealBlocks uint64

	// BattleCircuitVKHash pins the verifying key for the battle circuit.
	BattleCircuitVKHash [32]byte

	// StateTransitionCircuitVKHash pins the verifying key for the
	// state-transition circuit.
	StateTransitionCircuitVKHash [32]byte

	// AllowTestGridConfig permits the reduced 64x64/10-step battle
	// configuration. Must be false on any chain that intends to be
	// consensus-compatible with production nodes.
	AllowTestGridConfig bool
}

// DefaultGenesis returns the canonical mainnet-shaped genesis: 10-block
// commit window, 10-block reveal window, production grid only.
func DefaultGenesis() *Genesis {
	return &Genesis{
		CommitBlocks:        10,
		RevealBlocks:        10,
		AllowTestGridConfig: false,
	}
}

// DevGenesis returns a genesis suitable for local development and
// tests: short windows and the reduced CA configuration permitted.
func DevGenesis() *Genesis {
	return &Genesis{
		CommitBlocks:        3,
		RevealBlocks:        3,
		AllowTestGridConfig: true,
	}
}
