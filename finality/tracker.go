// tracker.go tallies Prevote/Precommit weight per (height, round) and
// reports when a block crosses the bonded-stake supermajority, adapted
// from consensus/finality.go WeighJustification threshold
// check and consensus/ssf_round_engine.go's per-round StakeByRoot tally,
// narrowed from epoch-boundary justification/finalization bookkeeping to
// a flat per-round, per-kind vote weight accumulator.
package finality

import (
	"errors"
	"math/big"
	"sync"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/metrics"
	"github.com/glider-chain/glider/params"
)

var (
	ErrTrackerZeroTotalStake = errors.New("finality: total bonded stake is zero")
	ErrAlreadyFinalized = errors.New("finality: height already finalized")
)

// StakeWeigher reports the bonded stake backing a validator, and the
// total bonded stake across the active set, as of a given state root.
// Concrete implementations live outside this package (state.State
// exposes bond balances); finality only depends on this contract, per
// the genesis configuration's bonded-stake quorum rule.
type StakeWeigher interface {
	Stake(addr types.Address) *big.Int
	TotalStake() *big.Int
}

type roundKey struct {
	height uint64
	round uint64
}

type kindTally struct {
	weightByBlock map[types.Hash]*big.Int
	voted map[types.Address]types.Hash // voter -> block hash already counted
}

func newKindTally() *kindTally {
	return &kindTally{
		weightByBlock: make(map[types.Hash]*big.Int),
		voted: make(map[types.Address]types.Hash),
	}
}

// Tracker accumulates Prevote and Precommit weight per (height, round)
// and exposes the prevoted/finalized status of each block it has seen
// votes for. One Tracker instance should be shared across a node's
// finality pipeline for a single chain.
type Tracker struct {
	mu sync.Mutex

	prevotes map[roundKey]*kindTally
	precommits map[roundKey]*kindTally

	// finalized records the first block hash that reached Precommit
	// supermajority at each height; a height finalizes at most once.
	finalized map[uint64]types.Hash

	equivocation *EquivocationDetector
}

// NewTracker creates an empty two-phase vote tracker.
func NewTracker() *Tracker {
	return &Tracker{
		prevotes: make(map[roundKey]*kindTally),
		precommits: make(map[roundKey]*kindTally),
		finalized: make(map[uint64]types.Hash),
		equivocation: NewEquivocationDetector(),
	}
}

// RecordVote records a vote's weight, attributed by weigher. For a
// Prevote, prevoted reports whether the block's Prevote weight is at or
// above the supermajority threshold after this vote (also on later votes
// and duplicates). For a Precommit, finalized reports whether this vote
// newly finalized the height. A vote whose
// (height, round, kind) conflicts with a prior vote from the same
// voter is rejected as equivocation and its evidence returned instead
// of being tallied.
func (t *Tracker) RecordVote(v *Vote, weigher StakeWeigher) (prevoted, finalized bool, evidence *Evidence, err error) {
	if err := v.Verify(); err != nil {
		return false, false, nil, err
	}

	total := weigher.TotalStake()
	if total == nil || total.Sign() == 0 {
		return false, false, nil, ErrTrackerZeroTotalStake
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if ev := t.equivocation.record(v); ev != nil {
		metrics.FinalityEquivocationsDetected.Inc()
		return false, false, ev, nil
	}
	metrics.FinalityVotesRecorded.Inc()

	key := roundKey{height: v.Height, round: v.Round}
	table := t.prevotes
	if v.Kind == Precommit {
		table = t.precommits
	}
	tally, ok := table[key]
	if !ok {
		tally = newKindTally()
		table[key] = tally
	}

	if prior, seen := tally.voted[v.Voter]; seen && prior == v.BlockHash {
		// Duplicate delivery of the same vote: not equivocation, not
		// additional weight.
		crossed := t.thresholdCrossed(tally, v.BlockHash, total)
		return v.Kind == Prevote && crossed, v.Kind == Precommit && crossed, nil, nil
	}
	tally.voted[v.Voter] = v.BlockHash

	weight := tally.weightByBlock[v.BlockHash]
	if weight == nil {
		weight = new(big.Int)
		tally.weightByBlock[v.BlockHash] = weight
	}
	weight.Add(weight, weigher.Stake(v.Voter))

	crossed := t.thresholdCrossed(tally, v.BlockHash, total)
	if v.Kind == Precommit && crossed {
		didFinalize := false
		if _, done := t.finalized[v.Height]; !done {
			t.finalized[v.Height] = v.BlockHash
			didFinalize = true
			metrics.FinalityHeightsFinalized.Inc()
		}
		return false, didFinalize, nil, nil
	}
	return v.Kind == Prevote && crossed, false, nil, nil
}

func (t *Tracker) thresholdCrossed(tally *kindTally, blockHash types.Hash, total *big.Int) bool {
	weight := tally.weightByBlock[blockHash]
	if weight == nil {
		return false
	}
	lhs := new(big.Int).Mul(weight, big.NewInt(params.FinalityThresholdDen))
	rhs := new(big.Int).Mul(total, big.NewInt(params.FinalityThresholdNum))
	return lhs.Cmp(rhs) >= 0
}

// FinalizedAt returns the block hash finalized at height, if any.
func (t *Tracker) FinalizedAt(height uint64) (types.Hash, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.finalized[height]
	return h, ok
}

// PrecommitWeight returns the currently tallied Precommit weight for a
// given block, for diagnostics and tests.
func (t *Tracker) PrecommitWeight(height, round uint64, blockHash types.Hash) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	tally, ok := t.precommits[roundKey{height: height, round: round}]
	if !ok {
		return big.NewInt(0)
	}
	w := tally.weightByBlock[blockHash]
	if w == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(w)
}
