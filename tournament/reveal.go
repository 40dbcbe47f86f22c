// reveal.go implements the Reveal phase: miners disclose the pattern,
// spawn, and nonce behind their earlier commitment. A miner who does not
// reveal before the window closes forfeits (one unit of negative evidence,
// no bond slash); a reveal that violates the pattern grammar also
// forfeits. Adapted from the
// teacher's equivocation_detector.go PruneOld/timeout-driven cleanup
// pattern, generalized from pruning stale proposal records to resolving
// un-revealed commitments into forfeits once the window elapses.
package tournament

import (
	"errors"
	"sync"

	"github.com/glider-chain/glider/ca"
	"github.com/glider-chain/glider/core/types"
)

// Reveal phase errors.
var (
	ErrRevealCommitmentMismatch = errors.New("tournament: reveal does not match earlier commitment")
	ErrRevealBadPattern         = errors.New("tournament: pattern violates pattern grammar")
)

// RevealLedger tracks reveals against the commitments accepted during the
// Commit phase for one tournament height.
type RevealLedger struct {
	mu       sync.Mutex
	gridSize int
	revealed map[types.Address]RevealMessage
}

// NewRevealLedger creates an empty ledger bound to the active grid size
// (production GridSize, or TestGridSize when params.Genesis.AllowTestGridConfig).
func NewRevealLedger(gridSize int) *RevealLedger {
	return &RevealLedger{gridSize: gridSize, revealed: make(map[types.Address]RevealMessage)}
}

// Submit validates a reveal against its commitment and the pattern
// grammar, recording it on success.
func (r *RevealLedger) Submit(commit CommitMessage, reveal RevealMessage) error {
	if reveal.CommitmentHash() != commit.Commitment {
		return ErrRevealCommitmentMismatch
	}
	if err := validatePatternGrammar(reveal.Pattern, reveal.Spawn, r.gridSize); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revealed[reveal.Miner] = reveal
	return nil
}

// Get returns the reveal for miner, if any was accepted.
func (r *RevealLedger) Get(miner types.Address) (RevealMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.revealed[miner]
	return rv, ok
}

// Forfeited returns every commit-phase participant with no accepted
// reveal, in input order — these forfeit the match. The orchestrator
// records one unit of negative evidence for each; no bond is slashed for
// a missed reveal.
func Forfeited(accepted []CommitMessage, revealed *RevealLedger) []types.Address {
	var out []types.Address
	for _, c := range accepted {
		if _, ok := revealed.Get(c.Miner); !ok {
			out = append(out, c.Miner)
		}
	}
	return out
}

// validatePatternGrammar rejects a pattern/spawn combination that would be
// out of bounds or internally inconsistent (Cells length not matching
// Width*Height).
func validatePatternGrammar(p ca.Pattern, s ca.Spawn, gridSize int) error {
	if p.Width <= 0 || p.Height <= 0 {
		return ErrRevealBadPattern
	}
	if len(p.Cells) != p.Width*p.Height {
		return ErrRevealBadPattern
	}
	box := p.BoundingBox(s)
	if box.MinX < 0 || box.MinY < 0 || box.MaxX > gridSize || box.MaxY > gridSize {
		return ca.ErrPatternOutOfBounds
	}
	return nil
}
