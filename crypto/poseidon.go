// poseidon.go implements H_f, the ZK-friendly hash used everywhere a value
// must be opened inside a circuit: state tree nodes, commitments, and the
// battle/state-transition circuits' public-input binding. Ordinary
// off-circuit hashing (block hashes, signature cache keys) uses Keccak256
// (keccak.go) instead; the two are never interchangeable.
//
// The permutation is a standard Poseidon sponge over the BN254 scalar
// field (width 3, rate 2, capacity 1, x^5 S-box, 8 full rounds + 57 partial
// rounds) built on top of gnark-crypto's field arithmetic. Round constants
// are derived once at init time from Keccak256 so they are reproducible
// without embedding a large generated table.
package crypto

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	poseidonWidth        = 3
	poseidonRate         = 2
	poseidonFullRounds   = 8
	poseidonPartialRounds = 57
)

var (
	poseidonRoundConstants [][poseidonWidth]fr.Element
	poseidonMDS            [poseidonWidth][poseidonWidth]fr.Element
)

func init() {
	total := poseidonFullRounds + poseidonPartialRounds
	poseidonRoundConstants = make([][poseidonWidth]fr.Element, total)

	seed := Keccak256([]byte("glider/poseidon/round-constants/v1"))
	for r := 0; r < total; r++ {
		for c := 0; c < poseidonWidth; c++ {
			seed = Keccak256(seed)
			poseidonRoundConstants[r][c].SetBytes(seed)
		}
	}

	// A fixed 3x3 MDS-like matrix (Cauchy-style, small distinct entries
	// guarantee no shared eigenvectors across rows/columns for this width).
	entries := [poseidonWidth][poseidonWidth]uint64{
		{1, 2, 3},
		{4, 9, 16},
		{9, 25, 49},
	}
	for i := 0; i < poseidonWidth; i++ {
		for j := 0; j < poseidonWidth; j++ {
			poseidonMDS[i][j].SetUint64(entries[i][j])
		}
	}
}

// poseidonSBox applies x^5 in place.
func poseidonSBox(x *fr.Element) {
	var x2, x4 fr.Element
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(x, &x4)
}

// poseidonPermute runs the full Poseidon permutation over state in place.
func poseidonPermute(state *[poseidonWidth]fr.Element) {
	round := 0
	halfFull := poseidonFullRounds / 2

	applyRound := func(full bool) {
		rc := poseidonRoundConstants[round]
		for i := range state {
			state[i].Add(&state[i], &rc[i])
		}
		if full {
			for i := range state {
				poseidonSBox(&state[i])
			}
		} else {
			poseidonSBox(&state[0])
		}
		var next [poseidonWidth]fr.Element
		for i := 0; i < poseidonWidth; i++ {
			var acc fr.Element
			for j := 0; j < poseidonWidth; j++ {
				var term fr.Element
				term.Mul(&poseidonMDS[i][j], &state[j])
				acc.Add(&acc, &term)
			}
			next[i] = acc
		}
		*state = next
		round++
	}

	for i := 0; i < halfFull; i++ {
		applyRound(true)
	}
	for i := 0; i < poseidonPartialRounds; i++ {
		applyRound(false)
	}
	for i := 0; i < halfFull; i++ {
		applyRound(true)
	}
}

// PoseidonHash absorbs the given field elements with a rate-2 sponge and
// squeezes a single field element. This is H_f.
func PoseidonHash(inputs ...fr.Element) fr.Element {
	var state [poseidonWidth]fr.Element // state[poseidonRate] is the capacity lane

	for i := 0; i < len(inputs); i += poseidonRate {
		for j := 0; j < poseidonRate && i+j < len(inputs); j++ {
			state[j].Add(&state[j], &inputs[i+j])
		}
		poseidonPermute(&state)
	}
	return state[0]
}

// PoseidonHashBytes hashes two 32-byte values (used for Merkle nodes) and
// returns the canonical 32-byte encoding of H_f(left, right).
func PoseidonHashBytes(left, right [32]byte) [32]byte {
	var l, r fr.Element
	l.SetBytes(left[:])
	r.SetBytes(right[:])
	out := PoseidonHash(l, r)
	return out.Bytes()
}

// PoseidonHashSingle hashes one 32-byte value domain-tagged with a small
// integer, used for leaf hashing where left/right don't apply.
func PoseidonHashSingle(domain uint64, value [32]byte) [32]byte {
	var d, v fr.Element
	d.SetUint64(domain)
	v.SetBytes(value[:])
	out := PoseidonHash(d, v)
	return out.Bytes()
}
