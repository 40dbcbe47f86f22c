// commit.go implements the Commit phase ledger: ring-signature validation,
// key-image uniqueness, and equivocation evidence. Adapted from the
// teacher's equivocation_detector.go (CheckProposal's first-seen-wins
// double-submission detection, generalized from (height, round, kind)
// uniqueness to (height, key_image) uniqueness) and validator_set.go's
// active-set membership checks (used here to validate ring membership
// against the Snapshot-computed M_h).
package tournament

import (
	"errors"
	"sync"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/params"
	"github.com/glider-chain/glider/trust"
)

// Commit phase errors.
var (
	ErrCommitRingTooSmall    = errors.New("tournament: ring below MIN_RING")
	ErrCommitRingTooLarge    = errors.New("tournament: ring above MAX_RING")
	ErrCommitRingNotEligible = errors.New("tournament: ring member not in eligible set")
	ErrCommitBadSignature    = errors.New("tournament: ring signature failed verification")
	ErrCommitEquivocation    = errors.New("tournament: key image already seen this height")
)

// CommitLedger tracks accepted commitments for a single tournament height,
// rejecting ring-signature or membership failures outright and recording
// equivocation evidence (rather than rejecting outright) for a key image
// that reappears after its first acceptance.
type CommitLedger struct {
	mu        sync.Mutex
	eligible  []types.Address
	trust     *trust.Engine
	seen      map[types.Hash]struct{}
	accepted  []acceptedCommit
	nextOrder int
}

// NewCommitLedger creates an empty ledger scoped to the eligible set M_h.
func NewCommitLedger(eligible []types.Address, trustEngine *trust.Engine) *CommitLedger {
	return &CommitLedger{
		eligible: eligible,
		trust:    trustEngine,
		seen:     make(map[types.Hash]struct{}),
	}
}

// Accept validates and, if valid, records msg. A key image collision is
// not a validation failure: the first commitment wins, later ones are
// rejected, and every member of the rejected commitment's ring receives
// one unit of negative evidence (the guilty key is masked by ring
// anonymity, so all ring members share suspicion). The weight does not
// depend on the ring size, and the first commitment's ring is not charged.
func (l *CommitLedger) Accept(msg CommitMessage) error {
	if len(msg.Ring) < params.MinRing {
		return ErrCommitRingTooSmall
	}
	if len(msg.Ring) > params.MaxRing {
		return ErrCommitRingTooLarge
	}
	for _, member := range msg.Ring {
		if !Contains(l.eligible, member) {
			return ErrCommitRingNotEligible
		}
	}
	if msg.RingSig == nil || !crypto.RingVerify(commitSignedMessage(msg), msg.RingSig) {
		return ErrCommitBadSignature
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[msg.KeyImage]; dup {
		l.recordEquivocation(msg.Ring)
		return ErrCommitEquivocation
	}
	l.seen[msg.KeyImage] = struct{}{}
	l.accepted = append(l.accepted, acceptedCommit{msg: msg, order: l.nextOrder})
	l.nextOrder++
	return nil
}

// recordEquivocation records one unit of negative evidence against every
// ring member of a colliding commitment; the weight is the same for any
// ring size.
func (l *CommitLedger) recordEquivocation(ring []types.Address) {
	weight := uint64(1)
	for _, member := range ring {
		l.trust.RecordNegative(member, weight)
	}
}

// Accepted returns every accepted commitment in acceptance order.
func (l *CommitLedger) Accepted() []CommitMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]CommitMessage, len(l.accepted))
	for i, a := range l.accepted {
		out[i] = a.msg
	}
	return out
}

// commitSignedMessage is the message the ring signature is computed over:
// the sealed commitment hash, binding the signature to a specific sealed
// (pattern, spawn, nonce) without revealing it.
func commitSignedMessage(msg CommitMessage) []byte {
	return crypto.Keccak256(msg.Commitment[:])
}
