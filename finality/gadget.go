// gadget.go is the finality gadget's composition root: it wires vote
// tallying (tracker.go), equivocation detection (equivocation.go), round
// timeout (round.go), and evidence-triggered slashing together behind a
// single SubmitVote/SubmitEvidence entry point, mirroring the original design's
// dist_coordinator.go pattern of a coordinator type that owns several
// narrower collaborators rather than exposing them individually.
package finality

import (
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/log"
	"github.com/glider-chain/glider/metrics"
	"github.com/glider-chain/glider/trust"
)

var logger = log.Default().Module("finality")

// Slasher applies a slash action to a validator's bond, satisfied by
// *state.State.ApplySlash.
type Slasher interface {
	ApplySlash(miner types.Address, action trust.SlashAction) error
}

// Clock reports the current wall-clock time as a Unix timestamp,
// satisfying the design's external clock collaborator (consensus
// never calls time.Now itself, matching tournament.ClockSkewTolerant's
// observer-supplied-now convention).
type Clock interface {
	Now() uint64
}

// TransportIngress is the inbound half of the finality gadget's
// peer-to-peer contract: vote and evidence submission from the network.
type TransportIngress interface {
	SubmitVote(v *Vote) error
	SubmitEvidence(ev *Evidence) (applied bool, err error)
}

// TransportEgress is the outbound half: votes this node casts and
// evidence it discovers get broadcast, fire-and-forget, idempotent at
// the receiving peer.
type TransportEgress interface {
	BroadcastVote(v *Vote)
	BroadcastEvidence(ev *Evidence)
}

// Gadget is a single chain's two-phase BFT finality state: one Tracker
// per live chain, plus the slasher evidence feeds into.
type Gadget struct {
	tracker *Tracker
	slasher Slasher
}

// NewGadget creates a finality gadget that applies evidence-triggered
// slashes through slasher. slasher may be nil in contexts (e.g. tests)
// that only want vote tallying.
func NewGadget(slasher Slasher) *Gadget {
	return &Gadget{tracker: NewTracker(), slasher: slasher}
}

// SubmitVote feeds a vote into the tracker. If it happens to conflict
// with a vote the same validator already cast for this (height, round,
// kind), the resulting evidence is verified and, when a slasher is
// configured, immediately applied as SlashAction::FullAndBan — matching
// the design Scenario 5's "bundle verifies; FullAndBan applied" sequence.
func (g *Gadget) SubmitVote(v *Vote, weigher StakeWeigher) (prevoted, finalized bool, ev *Evidence, err error) {
	prevoted, finalized, ev, err = g.tracker.RecordVote(v, weigher)
	if finalized {
		logger.Info("height finalized", "height", v.Height, "round", v.Round, "block", v.BlockHash.Hex())
	}
	if err != nil || ev == nil {
		return prevoted, finalized, ev, err
	}
	if !ev.Verify() {
		return false, false, nil, nil
	}
	if g.slasher != nil {
		if serr := g.slasher.ApplySlash(ev.Voter, trust.SlashAction{Kind: trust.ActionFullAndBan}); serr != nil {
			return false, false, ev, serr
		}
		metrics.FinalityValidatorsSlashed.Inc()
		logger.Warn("equivocation slashed", "voter", ev.Voter.Hex(), "height", ev.Height, "round", ev.Round, "kind", ev.Kind.String())
	}
	return false, false, ev, nil
}

// SubmitEvidence applies externally-gathered equivocation evidence
// (e.g. relayed from a peer rather than discovered locally). Returns
// false, nil if the evidence does not verify.
func (g *Gadget) SubmitEvidence(ev *Evidence) (applied bool, err error) {
	if !ev.Verify() {
		return false, nil
	}
	if g.slasher == nil {
		return false, nil
	}
	if err := g.slasher.ApplySlash(ev.Voter, trust.SlashAction{Kind: trust.ActionFullAndBan}); err != nil {
		return false, err
	}
	metrics.FinalityValidatorsSlashed.Inc()
	return true, nil
}

// FinalizedAt returns the block hash finalized at height, if any.
func (g *Gadget) FinalizedAt(height uint64) (types.Hash, bool) {
	return g.tracker.FinalizedAt(height)
}

// RoundExpired reports whether round has run past its timeout, counted
// from parentTimestamp and clock's current time, and no block at height
// has finalized yet. Callers use this to decide whether to advance to
// round+1 ('s "round progression").
func (g *Gadget) RoundExpired(clock Clock, height, parentTimestamp, round uint64) bool {
	if _, done := g.tracker.FinalizedAt(height); done {
		return false
	}
	return Expired(clock.Now(), RoundDeadline(parentTimestamp, round))
}
