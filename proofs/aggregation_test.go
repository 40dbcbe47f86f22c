package proofs

import "testing"

func TestBatchAggregatorSealsAndVerifies(t *testing.T) {
	ba := NewBatchAggregator(DefaultAggregationConfig(), nil)
	for _, p := range sampleProofs() {
		if err := ba.AddProof(p); err != nil {
			t.Fatalf("AddProof failed: %v", err)
		}
	}

	batch, err := ba.AggregateBatch()
	if err != nil {
		t.Fatalf("AggregateBatch failed: %v", err)
	}
	if err := ValidateAggregatedProof(batch); err == nil {
		t.Error("expected ValidateAggregatedProof to reject mixed circuit kinds")
	}

	ok, err := ba.VerifyBatch(batch)
	if err != nil {
		t.Fatalf("VerifyBatch failed: %v", err)
	}
	if !ok {
		t.Error("expected freshly-sealed batch to verify")
	}
	if !batch.Verified {
		t.Error("expected batch.Verified to be set after a successful VerifyBatch")
	}
}

func TestBatchAggregatorRejectsFullBatch(t *testing.T) {
	ba := NewBatchAggregator(AggregationConfig{MaxProofs: 1}, nil)
	if err := ba.AddProof(sampleProofs()[0]); err != nil {
		t.Fatalf("AddProof failed: %v", err)
	}
	if err := ba.AddProof(sampleProofs()[1]); err != ErrBatchFull {
		t.Errorf("expected ErrBatchFull, got %v", err)
	}
}

func TestAggregateBatchRejectsEmptyPending(t *testing.T) {
	ba := NewBatchAggregator(DefaultAggregationConfig(), nil)
	_, err := ba.AggregateBatch()
	if err != ErrBatchEmpty {
		t.Errorf("expected ErrBatchEmpty, got %v", err)
	}
}

func TestValidateAggregatedProofRejectsZeroHash(t *testing.T) {
	batch := &ProofBatch{Proofs: sampleProofs()[:1]}
	if err := ValidateAggregatedProof(batch); err == nil {
		t.Error("expected zero-hash batch to be rejected")
	}
}
