// pedersen.go implements the Pedersen commitment scheme used to bind a
// validator's committed battle-grid configuration without
// revealing it until the reveal phase: Com(v, r) = v*G + r*H over BN254 G1,
// where G is the curve's standard generator and H is a second, nothing-up-
// my-sleeve generator derived by hashing G's encoding.
package crypto

import (
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

var (
	pedersenHOnce sync.Once
	pedersenH bn254.G1Affine
)

// pedersenGenH derives H = HashToCurve(domain || G) once, lazily.
func pedersenGenH() bn254.G1Affine {
	pedersenHOnce.Do(func() {
		g1, _, _, _ := bn254.Generators()
		seed := Keccak256([]byte("glider/pedersen/H"), g1.Marshal())
		p, err := bn254.HashToG1(seed, []byte("glider/pedersen/H/dst"))
		if err != nil {
			// HashToG1 failing on well-formed input indicates a library
			// misconfiguration; there is no sane commitment to fall back to.
			panic("crypto: pedersen H generation failed: " + err.Error())
		}
		pedersenH = p
	})
	return pedersenH
}

// PedersenCommitment is a point on BN254 G1.
type PedersenCommitment struct {
	X, Y big.Int
}

// Bytes returns the compressed encoding of the commitment.
func (c PedersenCommitment) Bytes() []byte {
	var p bn254.G1Affine
	p.X.SetBigInt(&c.X)
	p.Y.SetBigInt(&c.Y)
	b := p.Bytes()
	return b[:]
}

// Commit computes Com(value, blinding) = value*G + blinding*H.
func Commit(value, blinding *big.Int) PedersenCommitment {
	g1, _, _, _ := bn254.Generators()
	h := pedersenGenH()

	var vG, rH bn254.G1Jac
	var g1Jac, hJac bn254.G1Jac
	g1Jac.FromAffine(&g1)
	hJac.FromAffine(&h)

	vG.ScalarMultiplication(&g1Jac, value)
	rH.ScalarMultiplication(&hJac, blinding)

	var sum bn254.G1Jac
	sum.Set(&vG).AddAssign(&rH)

	var res bn254.G1Affine
	res.FromJacobian(&sum)

	var out PedersenCommitment
	res.X.BigInt(&out.X)
	res.Y.BigInt(&out.Y)
	return out
}

// VerifyOpening checks that commitment == Commit(value, blinding).
func VerifyOpening(commitment PedersenCommitment, value, blinding *big.Int) bool {
	recomputed := Commit(value, blinding)
	return recomputed.X.Cmp(&commitment.X) == 0 && recomputed.Y.Cmp(&commitment.Y) == 0
}

// AddCommitments homomorphically sums two commitments: Com(a,ra) +
// Com(b,rb) = Com(a+b, ra+rb).
func AddCommitments(a, b PedersenCommitment) PedersenCommitment {
	var pa, pb bn254.G1Affine
	pa.X.SetBigInt(&a.X)
	pa.Y.SetBigInt(&a.Y)
	pb.X.SetBigInt(&b.X)
	pb.Y.SetBigInt(&b.Y)

	var ja, jb, sum bn254.G1Jac
	ja.FromAffine(&pa)
	jb.FromAffine(&pb)
	sum.Set(&ja).AddAssign(&jb)

	var res bn254.G1Affine
	res.FromJacobian(&sum)

	var out PedersenCommitment
	res.X.BigInt(&out.X)
	res.Y.BigInt(&out.Y)
	return out
}
