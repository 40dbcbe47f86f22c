package proofs

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// trivialVerifyingKey builds a verifying key with zero public inputs
// (IC has only the constant term) and a proof satisfying
// e(A,B) = e(alpha,beta)*e(vk_x,gamma)*e(C,delta), constructed directly from the
// generators so the pairing equation holds by algebraic construction.
func trivialValidProof(t *testing.T) (*VerifyingKey, *Proof) {
	t.Helper()
	_, _, g1Gen, g2Gen := bn254.Generators()

	var alphaScalar, betaScalar, deltaScalar big.Int
	alphaScalar.SetInt64(7)
	betaScalar.SetInt64(11)
	deltaScalar.SetInt64(13)

	var alpha bn254.G1Affine
	alpha.ScalarMultiplication(&g1Gen, &alphaScalar)
	var beta bn254.G2Affine
	beta.ScalarMultiplication(&g2Gen, &betaScalar)
	var delta bn254.G2Affine
	delta.ScalarMultiplication(&g2Gen, &deltaScalar)
	var gamma bn254.G2Affine
	gamma.ScalarMultiplication(&g2Gen, big.NewInt(1))

	// Choose A = alpha, B = beta, C = 0*G1 (identity), IC = [identity] so
	// vk_x is the identity too: e(alpha,beta) = e(alpha,beta)*e(0,gamma)*e(0,delta).
	var zero bn254.G1Affine
	vk := &VerifyingKey{Alpha: alpha, Beta: beta, Gamma: gamma, Delta: delta, IC: []bn254.G1Affine{zero}}
	proof := &Proof{A: alpha, B: beta, C: zero}
	return vk, proof
}

func TestVerifyAcceptsConstructedValidProof(t *testing.T) {
	vk, proof := trivialValidProof(t)
	ok, err := Verify(vk, proof, nil)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Error("expected constructed proof to verify")
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	vk, proof := trivialValidProof(t)
	_, _, g1Gen, _ := bn254.Generators()
	proof.C = g1Gen // perturb C away from identity

	ok, err := Verify(vk, proof, nil)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Error("expected tampered proof to fail verification")
	}
}

func TestVerifyRejectsBadICLength(t *testing.T) {
	vk, proof := trivialValidProof(t)
	_, err := Verify(vk, proof, []*big.Int{big.NewInt(1)})
	if err != ErrProofBadICLength {
		t.Errorf("expected ErrProofBadICLength, got %v", err)
	}
}

func TestVerifyRejectsNilVerifyingKey(t *testing.T) {
	_, proof := trivialValidProof(t)
	_, err := Verify(nil, proof, nil)
	if err != ErrProofNilVerifyingKey {
		t.Errorf("expected ErrProofNilVerifyingKey, got %v", err)
	}
}

func TestProofBytesRoundTrip(t *testing.T) {
	_, proof := trivialValidProof(t)
	buf := proof.Bytes()
	if len(buf) != proofByteLen {
		t.Fatalf("expected %d bytes, got %d", proofByteLen, len(buf))
	}
	decoded, err := ProofFromBytes(buf)
	if err != nil {
		t.Fatalf("ProofFromBytes failed: %v", err)
	}
	if !decoded.A.Equal(&proof.A) || !decoded.B.Equal(&proof.B) || !decoded.C.Equal(&proof.C) {
		t.Error("decoded proof does not match original")
	}
}

func TestProofFromBytesRejectsWrongLength(t *testing.T) {
	_, err := ProofFromBytes([]byte{1, 2, 3})
	if err != ErrProofMalformed {
		t.Errorf("expected ErrProofMalformed, got %v", err)
	}
}

func TestVerifyingKeyHashDeterministic(t *testing.T) {
	vk, _ := trivialValidProof(t)
	h1 := vk.Hash()
	h2 := vk.Hash()
	if h1 != h2 {
		t.Error("verifying key hash must be deterministic")
	}
}

func TestDecodePublicInputsRejectsNonMultipleOf32(t *testing.T) {
	_, err := DecodePublicInputs([]byte{1, 2, 3})
	if err != ErrProofMalformed {
		t.Errorf("expected ErrProofMalformed, got %v", err)
	}
}

func TestPublicInputsToScalarsReducesModField(t *testing.T) {
	var max [32]byte
	for i := range max {
		max[i] = 0xff
	}
	scalars := PublicInputsToScalars(max)
	if scalars[0].Cmp(fr254Modulus()) >= 0 {
		t.Error("scalar must be reduced modulo the BN254 scalar field")
	}
}
