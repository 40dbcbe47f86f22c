// equivocation.go detects a validator casting two votes with the same
// (height, round, kind) but differing block hashes, adapted from the
// teacher's consensus/finality_equivocation_detector.go FinalityEquivocationDetector,
// narrowed from its (slot, validator) key to this chain's
// (height, round, kind, validator) key since Glider tallies Prevote and
// Precommit independently rather than sharing one vote stream per slot.
package finality

import "github.com/glider-chain/glider/core/types"

// Evidence is a verifiable bundle proving a validator cast two
// conflicting votes at the same (height, round, kind).
type Evidence struct {
	Voter  types.Address
	Height uint64
	Round  uint64
	Kind   Kind
	VoteA  Vote
	VoteB  Vote
}

// Verify checks that the bundle is internally consistent: both votes
// share voter/height/round/kind, both signatures are genuine, and the
// block hashes actually differ. This is the on-chain check a node runs
// before applying SlashAction::FullAndBan to the offending validator.
func (e *Evidence) Verify() bool {
	if e.VoteA.Voter != e.VoteB.Voter || e.VoteA.Voter != e.Voter {
		return false
	}
	if e.VoteA.Height != e.VoteB.Height || e.VoteA.Round != e.VoteB.Round || e.VoteA.Kind != e.VoteB.Kind {
		return false
	}
	if e.VoteA.BlockHash == e.VoteB.BlockHash {
		return false
	}
	if e.VoteA.Verify() != nil || e.VoteB.Verify() != nil {
		return false
	}
	return true
}

type equivocationKey struct {
	height uint64
	round  uint64
	kind   Kind
	voter  types.Address
}

// EquivocationDetector remembers the first vote seen for each
// (height, round, kind, voter) and flags a second, conflicting one.
type EquivocationDetector struct {
	seen map[equivocationKey]Vote
}

// NewEquivocationDetector creates an empty detector.
func NewEquivocationDetector() *EquivocationDetector {
	return &EquivocationDetector{seen: make(map[equivocationKey]Vote)}
}

// record checks v against any prior vote from the same voter at the
// same (height, round, kind); not exported, callers go through
// Tracker.RecordVote so the vote is verified before being recorded.
func (d *EquivocationDetector) record(v *Vote) *Evidence {
	key := equivocationKey{height: v.Height, round: v.Round, kind: v.Kind, voter: v.Voter}
	prior, ok := d.seen[key]
	if !ok {
		d.seen[key] = *v
		return nil
	}
	if prior.BlockHash == v.BlockHash {
		return nil
	}
	return &Evidence{
		Voter:  v.Voter,
		Height: v.Height,
		Round:  v.Round,
		Kind:   v.Kind,
		VoteA:  prior,
		VoteB:  *v,
	}
}
