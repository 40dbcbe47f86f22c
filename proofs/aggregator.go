// aggregator.go defines the proof aggregation commitment: an ordered
// sequence of submitted proofs is folded into a single H_b digest over
// (proof_i || public_inputs_i), letting a block reference one commitment
// instead of carrying every proof's full verification result. Adapted from
// aggregator.go, narrowed from an SSZ-merkleized multi-type
// aggregate root down to the spec's flat Keccak256 digest.
package proofs

import (
	"errors"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
)

// Aggregation errors.
var (
	ErrNoProofs = errors.New("proofs: no proofs to aggregate")
	ErrNilProof = errors.New("proofs: nil aggregated proof")
)

// ProofAggregator folds submitted proofs into a single commitment and can
// later check a commitment was computed honestly over a claimed proof set.
type ProofAggregator interface {
	Aggregate(proofs []SubmittedProof) (*AggregatedProof, error)
	Verify(proof *AggregatedProof) (bool, error)
}

// SimpleAggregator computes the aggregate root as a Keccak256 (H_b)
// digest over the concatenation, in submission order, of each submitted
// proof's own Keccak256 hash of (kind || block_hash || data ||
// public_inputs).
type SimpleAggregator struct{}

// NewSimpleAggregator creates a new SimpleAggregator.
func NewSimpleAggregator() *SimpleAggregator {
	return &SimpleAggregator{}
}

// Aggregate folds proofs into a single commitment digest.
func (a *SimpleAggregator) Aggregate(proofs []SubmittedProof) (*AggregatedProof, error) {
	if len(proofs) == 0 {
		return nil, ErrNoProofs
	}
	var buf []byte
	for i := range proofs {
		buf = append(buf, hashProof(&proofs[i])[:]...)
	}
	return &AggregatedProof{
		Proofs: proofs,
		AggregateRoot: crypto.Keccak256Hash(buf),
		Valid: true,
	}, nil
}

// Verify recomputes the commitment digest and compares it to the stored
// aggregate root.
func (a *SimpleAggregator) Verify(proof *AggregatedProof) (bool, error) {
	if proof == nil {
		return false, ErrNilProof
	}
	if len(proof.Proofs) == 0 {
		return false, ErrNoProofs
	}
	var buf []byte
	for i := range proof.Proofs {
		buf = append(buf, hashProof(&proof.Proofs[i])[:]...)
	}
	return crypto.Keccak256Hash(buf) == proof.AggregateRoot, nil
}

// hashProof folds a single submitted proof into a 32-byte leaf.
func hashProof(p *SubmittedProof) types.Hash {
	var kindBuf [1]byte
	kindBuf[0] = byte(p.Kind)
	return crypto.Keccak256Hash(kindBuf[:], p.BlockHash[:], p.Data, p.PublicIn)
}
