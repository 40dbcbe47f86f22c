// battle_dispatch.go runs the CA engine over every pairing in a bracket
// and records evidence from the outcome: the winner gets positive
// evidence, the loser gets participation evidence (no penalty), and a
// double-forfeit advances no one and records no evidence either way.
// Adapted from reward_calculator.go ComputeRewards loop
// (iterate participants, accumulate a per-participant delta), generalized
// from balance-weighted issuance to EBSL evidence weighting.
package tournament

import (
	"github.com/glider-chain/glider/ca"
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/trust"
)

// winEvidenceWeight and participationEvidenceWeight are the EBSL evidence
// units credited after a resolved match.
const (
	winEvidenceWeight = 2
	participationEvidenceWeight = 1
)

// DispatchPairing resolves one pairing: runs the battle if both sides
// revealed, records evidence, and returns the MatchResult.
func DispatchPairing(pairing Pairing, revealed *RevealLedger, gridSize, steps int, seed [32]byte, cfg ca.EvolveConfig, trustEngine *trust.Engine) MatchResult {
	if pairing.B == nil {
		// Bye: A advances without a battle.
		result := MatchResult{Pairing: pairing, Winner: pairing.A.Miner, ByeAdvance: true}
		trustEngine.RecordPositive(pairing.A.Miner, participationEvidenceWeight)
		return result
	}

	revealA, okA := revealed.Get(pairing.A.Miner)
	revealB, okB := revealed.Get(pairing.B.Miner)

	switch {
	case !okA && !okB:
		// Double-forfeit: no winner advances; the orchestrator records
		// one unit of negative evidence for each non-revealer (no bond slash).
		return MatchResult{Pairing: pairing}
	case !okA:
		trustEngine.RecordPositive(pairing.B.Miner, winEvidenceWeight)
		return MatchResult{Pairing: pairing, Winner: pairing.B.Miner, ByeAdvance: true}
	case !okB:
		trustEngine.RecordPositive(pairing.A.Miner, winEvidenceWeight)
		return MatchResult{Pairing: pairing, Winner: pairing.A.Miner, ByeAdvance: true}
	}

	outcome, err := ca.RunBattle(gridSize, steps, revealA.Pattern, revealB.Pattern, revealA.Spawn, revealB.Spawn, seed, cfg)
	if err != nil {
		// A battle that cannot even be set up (overlapping/out-of-bounds
		// spawns) is treated as a double forfeit: neither side advances.
		return MatchResult{Pairing: pairing}
	}

	var winner types.Address
	if outcome.Winner == ca.SideA {
		winner = pairing.A.Miner
		trustEngine.RecordPositive(pairing.A.Miner, winEvidenceWeight)
		trustEngine.RecordPositive(pairing.B.Miner, participationEvidenceWeight)
	} else {
		winner = pairing.B.Miner
		trustEngine.RecordPositive(pairing.B.Miner, winEvidenceWeight)
		trustEngine.RecordPositive(pairing.A.Miner, participationEvidenceWeight)
	}

	return MatchResult{Pairing: pairing, Outcome: outcome, Winner: winner}
}

// DispatchBracket resolves every pairing in a bracket. Each match is
// independent of the others (: "across matches is unordered"),
// so callers may run this across a worker pool; this sequential version
// is the single-worker baseline the tournament orchestrator drives.
func DispatchBracket(pairings []Pairing, revealed *RevealLedger, gridSize, steps int, seed [32]byte, cfg ca.EvolveConfig, trustEngine *trust.Engine) []MatchResult {
	results := make([]MatchResult, len(pairings))
	for i, p := range pairings {
		results[i] = DispatchPairing(p, revealed, gridSize, steps, seed, cfg, trustEngine)
	}
	return results
}

// Champion returns the unique survivor of a fully-resolved single round,
// or false if the round produced zero or more than one survivor (multi-
// round brackets, an implementation option per , are not
// handled here — the baseline is single round).
func Champion(results []MatchResult) (types.Address, bool) {
	var champ types.Address
	count := 0
	for _, r := range results {
		if r.Winner != (types.Address{}) {
			champ = r.Winner
			count++
		}
	}
	if count == 1 {
		return champ, true
	}
	return types.Address{}, false
}
