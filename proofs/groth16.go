// groth16.go verifies Groth16 proofs over BN254, the pairing curve this
// chain's two circuits are defined over. Adapted from the original design's
// groth16_verifier.go (manual EIP-2537-style BLS12-381 pairing check
// e(A,B) = e(alpha,beta)*e(vk_x,gamma)*e(C,delta)) retargeted onto
// gnark-crypto's ecc/bn254 package instead of hand-rolled curve
// arithmetic, and onto BN254 rather than BLS12-381: own
// BLS12-381 primitives this file called (crypto.BLS12Pairing,
// crypto.BLS12G1Mul, ...) have no BN254 equivalent in this tree, and
// gnark-crypto is already a direct dependency used for the state tree's
// Poseidon field arithmetic, so it is the natural home for pairing
// checks too rather than hand-rolling a second curve implementation.
package proofs

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/metrics"
)

// CircuitKind identifies which of the chain's two circuits a proof targets.
type CircuitKind uint8

const (
	// BattleCircuit proves a cellular-automaton battle outcome was computed
	// honestly: commitment_a, commitment_b, tournament_seed, winner_id,
	// final_energy_a, final_energy_b, mii_ab, mii_ba, ted_ab, ted_ba, seed_hash.
	BattleCircuit CircuitKind = iota
	// StateTransitionCircuit proves a state root transition is valid:
	// old_root, new_root, nullifier, commitment.
	StateTransitionCircuit
)

func (k CircuitKind) String() string {
	switch k {
	case BattleCircuit:
		return "battle"
	case StateTransitionCircuit:
		return "state_transition"
	default:
		return "unknown"
	}
}

// Groth16 verifier errors.
var (
	ErrProofNilVerifyingKey = errors.New("groth16: nil verifying key")
	ErrProofBadICLength = errors.New("groth16: IC length does not match public input count")
	ErrProofBadPublicInputs = errors.New("groth16: public input count mismatch")
	ErrProofPairingFailed = errors.New("groth16: pairing check failed")
	ErrProofMalformed = errors.New("groth16: malformed proof encoding")
	ErrProofUnknownCircuit = errors.New("groth16: unknown circuit kind")
)

// Proof is a Groth16 proof over BN254: three group elements (A, C in G1;
// B in G2).
type Proof struct {
	A bn254.G1Affine
	B bn254.G2Affine
	C bn254.G1Affine
}

// VerifyingKey is a Groth16 verifying key over BN254. IC has one entry per
// public input plus one for the constant term (IC[0]).
type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	IC []bn254.G1Affine
}

// Hash returns the H_b digest identifying this verifying key, used by
// VerifyingKeySet to pin the genesis-fixed keys for each circuit.
func (vk *VerifyingKey) Hash() types.Hash {
	var buf []byte
	appendG1 := func(p bn254.G1Affine) { b := p.Bytes(); buf = append(buf, b[:]...) }
	appendG2 := func(p bn254.G2Affine) { b := p.Bytes(); buf = append(buf, b[:]...) }
	appendG1(vk.Alpha)
	appendG2(vk.Beta)
	appendG2(vk.Gamma)
	appendG2(vk.Delta)
	for _, ic := range vk.IC {
		appendG1(ic)
	}
	return crypto.Keccak256Hash(buf)
}

// Verify checks e(A,B) = e(alpha,beta) * e(vk_x,gamma) * e(C,delta), where
// vk_x = IC[0] + sum_i public[i]*IC[i+1]. Rearranged into the single
// pairing-product-equals-one form PairingCheck computes:
//
//	e(-A,B) * e(alpha,beta) * e(vk_x,gamma) * e(C,delta) = 1
func Verify(vk *VerifyingKey, proof *Proof, publicInputs []*big.Int) (bool, error) {
	timer := metrics.NewTimer(metrics.ProofVerifyTime)
	defer timer.Stop()

	ok, err := verify(vk, proof, publicInputs)
	if err != nil || !ok {
		metrics.ProofVerifyFailures.Inc()
	}
	return ok, err
}

func verify(vk *VerifyingKey, proof *Proof, publicInputs []*big.Int) (bool, error) {
	if vk == nil {
		return false, ErrProofNilVerifyingKey
	}
	if len(vk.IC) != len(publicInputs)+1 {
		return false, ErrProofBadICLength
	}
	if proof == nil {
		return false, ErrProofMalformed
	}

	vkx, err := linearCombineG1(vk.IC, publicInputs)
	if err != nil {
		return false, err
	}

	var negA bn254.G1Affine
	negA.Neg(&proof.A)

	p := []bn254.G1Affine{negA, vk.Alpha, *vkx, proof.C}
	q := []bn254.G2Affine{proof.B, vk.Beta, vk.Gamma, vk.Delta}

	ok, err := bn254.PairingCheck(p, q)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// linearCombineG1 computes IC[0] + sum_i public[i]*IC[i+1].
func linearCombineG1(ic []bn254.G1Affine, public []*big.Int) (*bn254.G1Affine, error) {
	if len(public) != len(ic)-1 {
		return nil, ErrProofBadPublicInputs
	}
	acc := new(bn254.G1Jac).FromAffine(&ic[0])
	var term bn254.G1Jac
	for i, scalar := range public {
		if scalar == nil {
			return nil, ErrProofMalformed
		}
		term.ScalarMultiplication(new(bn254.G1Jac).FromAffine(&ic[i+1]), scalar)
		acc.AddAssign(&term)
	}
	var out bn254.G1Affine
	out.FromJacobian(acc)
	return &out, nil
}

// PublicInputsToScalars converts an ordered slice of 32-byte field elements
// (the schema-ordered public input vector for a circuit) into big.Int
// scalars reduced mod the BN254 scalar field, in the order the circuit's
// IC vector expects them.
func PublicInputsToScalars(inputs ...[32]byte) []*big.Int {
	out := make([]*big.Int, len(inputs))
	for i, in := range inputs {
		out[i] = new(big.Int).SetBytes(in[:])
		out[i].Mod(out[i], fr254Modulus())
	}
	return out
}

// proofByteLen is the fixed wire size of a serialized Proof: A (32-byte
// compressed G1) || B (64-byte compressed G2) || C (32-byte compressed G1).
const proofByteLen = 32 + 64 + 32

// Bytes serializes the proof to its fixed 128-byte compressed wire form.
func (p *Proof) Bytes() []byte {
	out := make([]byte, 0, proofByteLen)
	a := p.A.Bytes()
	b := p.B.Bytes()
	c := p.C.Bytes()
	out = append(out, a[:]...)
	out = append(out, b[:]...)
	out = append(out, c[:]...)
	return out
}

// ProofFromBytes decodes a proof from its fixed 128-byte compressed wire
// form produced by Bytes.
func ProofFromBytes(buf []byte) (*Proof, error) {
	if len(buf) != proofByteLen {
		return nil, ErrProofMalformed
	}
	var p Proof
	var aBuf [32]byte
	var bBuf [64]byte
	var cBuf [32]byte
	copy(aBuf[:], buf[0:32])
	copy(bBuf[:], buf[32:96])
	copy(cBuf[:], buf[96:128])
	if _, err := p.A.SetBytes(aBuf[:]); err != nil {
		return nil, err
	}
	if _, err := p.B.SetBytes(bBuf[:]); err != nil {
		return nil, err
	}
	if _, err := p.C.SetBytes(cBuf[:]); err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodePublicInputs splits a flat byte slice into 32-byte big-endian field
// elements, the wire form public inputs travel in over VerifiableProof.PublicIn.
func DecodePublicInputs(raw []byte) ([]*big.Int, error) {
	if len(raw)%32 != 0 {
		return nil, ErrProofMalformed
	}
	n := len(raw) / 32
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Int).SetBytes(raw[i*32 : (i+1)*32])
		out[i].Mod(out[i], fr254Modulus())
	}
	return out, nil
}

var frModulus *big.Int

func fr254Modulus() *big.Int {
	if frModulus == nil {
		frModulus, _ = new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
	}
	return frModulus
}
