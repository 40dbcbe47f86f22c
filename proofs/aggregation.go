// aggregation.go batches submitted proofs into sealed ProofBatches and
// verifies them via an underlying ProofAggregator. Adapted from the
// teacher's aggregation.go, narrowed from an EVM execution-proof batch to
// this chain's two-circuit SubmittedProof model, and from an SSZ-merkleized
// aggregate root to the spec's flat H_b digest (see aggregator.go).
package proofs

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Aggregation errors.
var (
	ErrBatchEmpty = errors.New("proofs: no proofs in batch")
	ErrBatchFull  = errors.New("proofs: batch is full")
)

// AggregationConfig controls batched proof aggregation behavior.
type AggregationConfig struct {
	MaxProofs            int
	VerificationTimeout  time.Duration
	ParallelVerify       bool
}

// DefaultAggregationConfig returns an AggregationConfig with sensible defaults.
func DefaultAggregationConfig() AggregationConfig {
	return AggregationConfig{
		MaxProofs:           64,
		VerificationTimeout: 5 * time.Second,
		ParallelVerify:      true,
	}
}

// ProofBatch holds a batch of submitted proofs with their aggregate
// commitment digest.
type ProofBatch struct {
	Proofs        []SubmittedProof
	AggregateHash AggregatedProofHash
	Verified      bool
	VerifiedAt    time.Time
}

// AggregatedProofHash is the H_b commitment digest over a sealed batch.
type AggregatedProofHash = [32]byte

// BatchAggregator manages batched proof collection and sealing. It wraps an
// underlying ProofAggregator for commitment computation/verification.
type BatchAggregator struct {
	mu       sync.Mutex
	config   AggregationConfig
	inner    ProofAggregator
	pending  []SubmittedProof
	batched  atomic.Uint64
	verified atomic.Uint64
	failed   atomic.Uint64
}

// NewBatchAggregator creates a BatchAggregator with the given configuration
// and underlying aggregator (defaults to SimpleAggregator if nil).
func NewBatchAggregator(config AggregationConfig, inner ProofAggregator) *BatchAggregator {
	if inner == nil {
		inner = NewSimpleAggregator()
	}
	return &BatchAggregator{
		config:  config,
		inner:   inner,
		pending: make([]SubmittedProof, 0, config.MaxProofs),
	}
}

// AddProof adds a submitted proof to the current batch.
func (ba *BatchAggregator) AddProof(p SubmittedProof) error {
	ba.mu.Lock()
	defer ba.mu.Unlock()
	if len(ba.pending) >= ba.config.MaxProofs {
		return ErrBatchFull
	}
	ba.pending = append(ba.pending, p)
	return nil
}

// AggregateBatch seals the current pending proofs into a ProofBatch.
func (ba *BatchAggregator) AggregateBatch() (*ProofBatch, error) {
	ba.mu.Lock()
	defer ba.mu.Unlock()

	if len(ba.pending) == 0 {
		return nil, ErrBatchEmpty
	}
	proofs := ba.pending
	ba.pending = make([]SubmittedProof, 0, ba.config.MaxProofs)

	agg, err := ba.inner.Aggregate(proofs)
	if err != nil {
		return nil, err
	}
	ba.batched.Add(uint64(len(proofs)))

	return &ProofBatch{Proofs: proofs, AggregateHash: agg.AggregateRoot}, nil
}

// VerifyBatch re-derives the batch's aggregate commitment and checks it
// matches the stored hash.
func (ba *BatchAggregator) VerifyBatch(batch *ProofBatch) (bool, error) {
	if batch == nil || len(batch.Proofs) == 0 {
		return false, ErrBatchEmpty
	}

	agg := &AggregatedProof{Proofs: batch.Proofs, AggregateRoot: batch.AggregateHash}
	valid, err := ba.inner.Verify(agg)
	if err != nil {
		ba.failed.Add(uint64(len(batch.Proofs)))
		return false, err
	}
	if !valid {
		ba.failed.Add(uint64(len(batch.Proofs)))
		return false, nil
	}

	batch.Verified = true
	batch.VerifiedAt = time.Now()
	ba.verified.Add(uint64(len(batch.Proofs)))
	return true, nil
}

// ValidateAggregatedProof checks that a ProofBatch is well-formed: non-nil,
// non-empty, every proof of the same circuit kind, and a non-zero hash.
func ValidateAggregatedProof(batch *ProofBatch) error {
	if batch == nil {
		return ErrBatchEmpty
	}
	if len(batch.Proofs) == 0 {
		return ErrBatchEmpty
	}
	if batch.AggregateHash == (AggregatedProofHash{}) {
		return errors.New("proofs: aggregate hash is zero")
	}
	firstKind := batch.Proofs[0].Kind
	for i, p := range batch.Proofs[1:] {
		if p.Kind != firstKind {
			return fmt.Errorf("proofs: batch proof %d has kind %d, want %d", i+1, p.Kind, firstKind)
		}
	}
	return nil
}

// Stats returns the aggregation statistics: total batched, verified, and
// failed proof counts.
func (ba *BatchAggregator) Stats() (batched, verified, failed uint64) {
	return ba.batched.Load(), ba.verified.Load(), ba.failed.Load()
}
