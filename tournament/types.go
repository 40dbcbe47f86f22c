// Package tournament implements the per-height tournament orchestrator:
// the Idle -> Snapshot -> Commit -> Seed -> Pair -> Reveal -> Battle ->
// Complete state machine that elects each block's champion. Adapted from
// phase-oriented consensus scaffolding (phase_timer.go,
// committee_selection.go, vrf_election.go, equivocation_detector.go,
// validator_set.go, reward_calculator.go), generalized from beacon-chain
// committee/proposer election to single-elimination CA battle brackets.
package tournament

import (
	"github.com/glider-chain/glider/ca"
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
)

// Phase is a state in the per-height tournament state machine.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseSnapshot
	PhaseCommit
	PhaseSeed
	PhasePair
	PhaseReveal
	PhaseBattle
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSnapshot:
		return "snapshot"
	case PhaseCommit:
		return "commit"
	case PhaseSeed:
		return "seed"
	case PhasePair:
		return "pair"
	case PhaseReveal:
		return "reveal"
	case PhaseBattle:
		return "battle"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// CommitMessage is a miner's sealed entry into the tournament at height h.
type CommitMessage struct {
	Miner types.Address
	Commitment types.Hash // H_b(pattern || spawn || nonce), revealed later
	Ring []types.Address
	KeyImage types.Hash
	RingSig *crypto.RingSignature
}

// acceptedCommit is a CommitMessage that passed CommitLedger.Accept, along with
// its acceptance order (used for the canonical pre-shuffle ordering).
type acceptedCommit struct {
	msg CommitMessage
	order int
}

// RevealMessage binds a miner's earlier commitment to the pattern, spawn,
// and nonce that produced it.
type RevealMessage struct {
	Miner types.Address
	Pattern ca.Pattern
	Spawn ca.Spawn
	Nonce [32]byte
}

// CommitmentHash recomputes the H_b commitment a RevealMessage should
// match against its earlier CommitMessage.Commitment.
func (r RevealMessage) CommitmentHash() types.Hash {
	var dims [16]byte
	putInt64(dims[0:8], int64(r.Pattern.Width))
	putInt64(dims[8:16], int64(r.Pattern.Height))
	var spawnBuf [16]byte
	putInt64(spawnBuf[0:8], int64(r.Spawn.X))
	putInt64(spawnBuf[8:16], int64(r.Spawn.Y))
	return crypto.Keccak256Hash(dims[:], r.Pattern.Cells, spawnBuf[:], r.Nonce[:])
}

func putInt64(b []byte, v int64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Pairing pairs two accepted commitments for a single-elimination match.
// B is nil when the participant drew a bye.
type Pairing struct {
	A *CommitMessage
	B *CommitMessage
}

// MatchResult records the resolved outcome of one Pairing, including a
// double-forfeit (both nil winner, no battle run).
type MatchResult struct {
	Pairing Pairing
	Outcome *ca.Outcome // nil on forfeit/bye
	Winner types.Address
	ByeAdvance bool // true if the winner advanced without a battle
}
